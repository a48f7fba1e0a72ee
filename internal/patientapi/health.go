package patientapi

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// ReadinessChecker проверяет доступность clinic-api через /health/live.
type ReadinessChecker struct {
	url        string
	httpClient *http.Client
}

// NewReadinessChecker создаёт проверку готовности clinic-api.
func NewReadinessChecker(baseURL string, httpClient *http.Client) *ReadinessChecker {
	return &ReadinessChecker{
		url:        baseURL + "/health/live",
		httpClient: httpClient,
	}
}

// CheckReady возвращает "ok" или "fail".
func (c *ReadinessChecker) CheckReady() (string, string) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return "fail", err.Error()
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "fail", fmt.Sprintf("clinic-api недоступен: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "fail", fmt.Sprintf("clinic-api вернул статус %d", resp.StatusCode)
	}
	return "ok", "clinic-api доступен"
}
