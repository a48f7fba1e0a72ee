// dephealth.go - интеграция с topologymetrics SDK для мониторинга зависимостей.
//
// clinic-api мониторит PostgreSQL (pool mode) и Keycloak JWKS,
// clinic-ui - clinic-api и Keycloak. Все зависимости critical.
//
// Метрики доступны на /metrics вместе с остальными Prometheus-метриками:
//   - app_dependency_health - состояние зависимости (1 = ok, 0 = fail)
//   - app_dependency_latency_seconds - задержка проверки
package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/BigKAA/topologymetrics/sdk-go/dephealth"
	_ "github.com/BigKAA/topologymetrics/sdk-go/dephealth/checks/httpcheck" // HTTP checker
	"github.com/BigKAA/topologymetrics/sdk-go/dephealth/checks/pgcheck"
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPDependency - HTTP-зависимость для мониторинга.
type HTTPDependency struct {
	// Name - имя зависимости в метриках
	Name string
	// URL - адрес зависимости; path используется как health path
	URL string
	// HealthPath - переопределяет path из URL (опционально)
	HealthPath string
	// SkipTLSVerify - не проверять сертификат (dev-среда)
	SkipTLSVerify bool
}

// DephealthOptions - набор зависимостей сервиса.
type DephealthOptions struct {
	// ServiceID - имя вершины графа текущего приложения
	ServiceID string
	// Group - имя группы в метриках
	Group string
	// CheckInterval - интервал проверки зависимостей
	CheckInterval time.Duration
	// PostgresDB - *sql.DB из stdlib.OpenDBFromPool (nil - без PostgreSQL)
	PostgresDB *sql.DB
	// PostgresURL - URL PostgreSQL для лейблов (не для подключения)
	PostgresURL string
	// HTTP - HTTP-зависимости
	HTTP []HTTPDependency
	// Registerer - Prometheus registerer (nil - глобальный)
	Registerer prometheus.Registerer
}

// DephealthService - сервис мониторинга зависимостей через topologymetrics.
type DephealthService struct {
	dh     *dephealth.DepHealth
	logger *slog.Logger
}

// NewDephealthService создаёт сервис мониторинга зависимостей.
func NewDephealthService(opts DephealthOptions, logger *slog.Logger) (*DephealthService, error) {
	if opts.PostgresDB == nil && len(opts.HTTP) == 0 {
		return nil, errors.New("не задано ни одной зависимости")
	}

	dhOpts := []dephealth.Option{
		dephealth.WithLogger(logger),
	}
	if opts.Registerer != nil {
		dhOpts = append(dhOpts, dephealth.WithRegisterer(opts.Registerer))
	}

	if opts.PostgresDB != nil {
		dhOpts = append(dhOpts, dephealth.AddDependency("postgresql", dephealth.TypePostgres,
			pgcheck.New(pgcheck.WithDB(opts.PostgresDB)),
			dephealth.FromURL(opts.PostgresURL),
			dephealth.CheckInterval(opts.CheckInterval),
			dephealth.Critical(true),
		))
	}

	for _, dep := range opts.HTTP {
		healthPath := dep.HealthPath
		if healthPath == "" {
			healthPath = healthPathFromURL(dep.URL)
		}
		dhOpts = append(dhOpts, dephealth.HTTP(dep.Name,
			dephealth.FromURL(dep.URL),
			dephealth.WithHTTPHealthPath(healthPath),
			dephealth.CheckInterval(opts.CheckInterval),
			dephealth.Critical(true),
			dephealth.WithHTTPTLSSkipVerify(dep.SkipTLSVerify),
		))
	}

	dh, err := dephealth.New(opts.ServiceID, opts.Group, dhOpts...)
	if err != nil {
		return nil, err
	}

	return &DephealthService{
		dh:     dh,
		logger: logger.With(slog.String("component", "dephealth")),
	}, nil
}

// healthPathFromURL возвращает path URL или "/health", если path пустой.
// У Keycloak /health доступен только на management-порту, поэтому
// для JWKS проверяется сам endpoint.
func healthPathFromURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Path == "" || parsed.Path == "/" {
		return "/health"
	}
	return parsed.Path
}

// Start запускает периодическую проверку зависимостей.
func (ds *DephealthService) Start(ctx context.Context) error {
	ds.logger.Info("Мониторинг зависимостей запущен")
	return ds.dh.Start(ctx)
}

// Stop останавливает мониторинг зависимостей.
func (ds *DephealthService) Stop() {
	ds.dh.Stop()
	ds.logger.Info("Мониторинг зависимостей остановлен")
}

// Health возвращает текущее состояние зависимостей.
// Ключ - имя зависимости, значение - true если ok.
func (ds *DephealthService) Health() map[string]bool {
	return ds.dh.Health()
}
