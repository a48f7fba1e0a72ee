package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apihandlers "github.com/bigkaa/goclinic/internal/api/handlers"
	"github.com/bigkaa/goclinic/internal/api/middleware"
	uihandlers "github.com/bigkaa/goclinic/internal/ui/handlers"
	"github.com/bigkaa/goclinic/internal/ui/i18n"
	"github.com/bigkaa/goclinic/internal/ui/static"
)

// UIComponents - обработчики и middleware clinic-ui.
type UIComponents struct {
	Auth *uihandlers.AuthHandler
	// AuthMiddleware - проверка сессии; nil пропускает все запросы (тесты).
	AuthMiddleware func(http.Handler) http.Handler
	Home           *uihandlers.HomeHandler
	Patients       *uihandlers.PatientsHandler
	Health         *apihandlers.HealthHandler
	DefaultLang    string
}

// NewUIRouter собирает роутер clinic-ui.
func NewUIRouter(c UIComponents, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.RequestLogger(logger))

	r.Get("/health/live", c.Health.HealthLive)
	r.Get("/health/ready", c.Health.HealthReady)
	r.Get("/metrics", c.Health.GetMetrics)

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(static.FileSystem())))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/app/", http.StatusFound)
	})

	r.Route("/app", func(r chi.Router) {
		r.Use(i18n.Middleware(c.DefaultLang))

		// Публичные маршруты
		r.Get("/login", c.Auth.HandleLogin)
		r.Get("/callback", c.Auth.HandleCallback)
		r.Post("/logout", c.Auth.HandleLogout)
		r.Post("/set-language", uihandlers.HandleSetLanguage)

		// Маршруты с сессией
		r.Group(func(r chi.Router) {
			if c.AuthMiddleware != nil {
				r.Use(c.AuthMiddleware)
			}

			r.Get("/", c.Home.HandleHome)
			r.Get("/agenda", uihandlers.HandlePlaceholder("home.tile.agenda", logger))
			r.Get("/finances", uihandlers.HandlePlaceholder("home.tile.finances", logger))
			r.Get("/anamnesis", uihandlers.HandlePlaceholder("home.tile.anamnesis", logger))
			r.Get("/prescriptions", uihandlers.HandlePlaceholder("home.tile.prescriptions", logger))

			r.Get("/patients", c.Patients.HandlePage)
			r.Get("/patients/{id}", c.Patients.HandleDetail)

			r.Route("/partials", func(r chi.Router) {
				r.Get("/patients-table", c.Patients.HandleTable)
				r.Get("/patient-form", c.Patients.HandleFormOpen)
				r.Post("/patient-form", c.Patients.HandleFormSubmit)
				r.Get("/patients/{id}/confirm-delete", c.Patients.HandleConfirmDelete)
				r.Delete("/patients/{id}", c.Patients.HandleDelete)
			})
		})
	})

	return r
}
