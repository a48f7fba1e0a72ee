package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/goclinic/internal/api/handlers"
	"github.com/bigkaa/goclinic/internal/api/middleware"
)

// APIComponents - обработчики и middleware clinic-api.
type APIComponents struct {
	Handler *handlers.APIHandler
	Health  *handlers.HealthHandler
	// JWTAuth - nil отключает аутентификацию (тесты).
	JWTAuth *middleware.JWTAuth
	// Validator - nil отключает проверку по OpenAPI.
	Validator *middleware.RequestValidator
}

// NewAPIRouter собирает роутер clinic-api.
// Health и metrics проверяются Kubernetes напрямую, без JWT.
func NewAPIRouter(c APIComponents, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.RequestLogger(logger))

	r.Get("/health/live", c.Health.HealthLive)
	r.Get("/health/ready", c.Health.HealthReady)
	r.Get("/metrics", c.Health.GetMetrics)

	r.Group(func(r chi.Router) {
		if c.JWTAuth != nil {
			r.Use(skipPrefixes(c.JWTAuth.Middleware(), "/health/", "/metrics"))
		}
		if c.Validator != nil {
			r.Use(c.Validator.Middleware())
		}
		c.Handler.Routes(r)
	})

	return r
}
