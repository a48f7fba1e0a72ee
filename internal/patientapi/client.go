// Пакет patientapi - HTTP-клиент clinic-ui для clinic-api.
// Операции: регистрация, список, карточка и удаление пациентов, профиль
// пользователя. Токен доступа берётся из TokenProvider на каждый запрос.
package patientapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/bigkaa/goclinic/internal/api/dto"
	apierrors "github.com/bigkaa/goclinic/internal/api/errors"
)

// listPageSize - размер страницы при выгрузке полного списка пациентов.
const listPageSize = 500

// TokenProvider возвращает access token пользователя текущего запроса.
type TokenProvider func(ctx context.Context) (string, error)

// ErrNoToken - в контексте нет токена пользователя.
var ErrNoToken = errors.New("patientapi: токен доступа отсутствует")

// APIError - ошибка, возвращённая clinic-api.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("clinic-api %d %s: %s", e.Status, e.Code, e.Message)
}

// IsNotFound - true, если clinic-api ответил 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Client - HTTP-клиент clinic-api.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	tokenProvider TokenProvider
	logger        *slog.Logger
}

// New создаёт клиент. httpClient должен иметь Timeout: запрос без ответа
// обрывается клиентом и возвращается как ошибка.
func New(baseURL string, httpClient *http.Client, tokenProvider TokenProvider, logger *slog.Logger) *Client {
	return &Client{
		baseURL:       baseURL,
		httpClient:    httpClient,
		tokenProvider: tokenProvider,
		logger:        logger.With(slog.String("component", "patientapi")),
	}
}

// RegisterPatient - POST /api/v1/patients.
func (c *Client) RegisterPatient(ctx context.Context, in dto.PatientInput) (*dto.Patient, error) {
	var p dto.Patient
	if err := c.do(ctx, http.MethodPost, "/api/v1/patients", in, http.StatusCreated, &p); err != nil {
		return nil, fmt.Errorf("регистрация пациента: %w", err)
	}
	return &p, nil
}

// ListPatients - GET /api/v1/patients?limit=N&offset=M.
func (c *Client) ListPatients(ctx context.Context, limit, offset int) (*dto.PatientList, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	var list dto.PatientList
	if err := c.do(ctx, http.MethodGet, "/api/v1/patients?"+q.Encode(), nil, http.StatusOK, &list); err != nil {
		return nil, fmt.Errorf("список пациентов: %w", err)
	}
	return &list, nil
}

// ListAllPatients выгружает весь список пациентов постранично.
func (c *Client) ListAllPatients(ctx context.Context) ([]dto.Patient, error) {
	var all []dto.Patient
	for offset := 0; ; offset += listPageSize {
		page, err := c.ListPatients(ctx, listPageSize, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Items...)
		if len(page.Items) == 0 || len(all) >= page.Total {
			break
		}
	}
	if all == nil {
		all = []dto.Patient{}
	}
	return all, nil
}

// GetPatient - GET /api/v1/patients/{id}.
func (c *Client) GetPatient(ctx context.Context, id string) (*dto.Patient, error) {
	var p dto.Patient
	if err := c.do(ctx, http.MethodGet, "/api/v1/patients/"+url.PathEscape(id), nil, http.StatusOK, &p); err != nil {
		return nil, fmt.Errorf("карточка пациента %s: %w", id, err)
	}
	return &p, nil
}

// DeletePatient - DELETE /api/v1/patients/{id}.
func (c *Client) DeletePatient(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/v1/patients/"+url.PathEscape(id), nil, http.StatusNoContent, nil); err != nil {
		return fmt.Errorf("удаление пациента %s: %w", id, err)
	}
	return nil
}

// GetUser - GET /api/v1/users/{id}.
func (c *Client) GetUser(ctx context.Context, id string) (*dto.User, error) {
	var u dto.User
	if err := c.do(ctx, http.MethodGet, "/api/v1/users/"+url.PathEscape(id), nil, http.StatusOK, &u); err != nil {
		return nil, fmt.Errorf("профиль пользователя %s: %w", id, err)
	}
	return &u, nil
}

// do выполняет запрос с Bearer-токеном и декодирует ответ в out.
func (c *Client) do(ctx context.Context, method, path string, body any, wantStatus int, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("сериализация запроса: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("создание запроса: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	if c.tokenProvider != nil {
		token, err := c.tokenProvider(ctx)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		apiErr := decodeAPIError(resp)
		c.logger.Debug("clinic-api вернул ошибку",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", apiErr.Status),
			slog.String("code", apiErr.Code),
		)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("декодирование ответа: %w", err)
	}
	return nil
}

// decodeAPIError читает тело ошибки clinic-api. Тело не в формате API
// сохраняется в Message как есть.
func decodeAPIError(resp *http.Response) *APIError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &APIError{Status: resp.StatusCode}

	if d, ok := apierrors.Decode(bytes.NewReader(raw)); ok {
		apiErr.Code = d.Code
		apiErr.Message = d.Message
		return apiErr
	}
	apiErr.Message = string(raw)
	return apiErr
}
