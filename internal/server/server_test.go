package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bigkaa/goclinic/internal/api/handlers"
	"github.com/bigkaa/goclinic/internal/domain/model"
	"github.com/bigkaa/goclinic/internal/service"
	uihandlers "github.com/bigkaa/goclinic/internal/ui/handlers"
	"github.com/bigkaa/goclinic/internal/ui/i18n"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubPatients struct{}

func (stubPatients) Register(context.Context, string, model.PatientInput) (*model.Patient, error) {
	return nil, service.ErrNotFound
}

func (stubPatients) List(context.Context, string, int, int) ([]*model.Patient, int, error) {
	return nil, 0, nil
}

func (stubPatients) Get(context.Context, string, string) (*model.Patient, error) {
	return nil, service.ErrNotFound
}

func (stubPatients) Delete(context.Context, string, string) error { return service.ErrNotFound }

type stubUsers struct{}

func (stubUsers) Get(context.Context, service.Identity, string) (*model.User, error) {
	return nil, service.ErrNotFound
}

type staticChecker struct{ status string }

func (c staticChecker) CheckReady() (string, string) { return c.status, "" }

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestAPIRouter(t *testing.T) {
	router := NewAPIRouter(APIComponents{
		Handler: handlers.NewAPIHandler(stubPatients{}, stubUsers{}, testLogger()),
		Health:  handlers.NewHealthHandler("clinic-api", handlers.NamedChecker{Name: "postgresql", Checker: staticChecker{"fail"}}),
	}, testLogger())

	if rec := get(t, router, "/health/live"); rec.Code != http.StatusOK {
		t.Errorf("/health/live: %d", rec.Code)
	}
	if rec := get(t, router, "/health/ready"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("/health/ready с недоступной БД: %d, ожидается 503", rec.Code)
	}
	if rec := get(t, router, "/metrics"); rec.Code != http.StatusOK {
		t.Errorf("/metrics: %d", rec.Code)
	}
	// Без claims обработчики отвечают 401
	if rec := get(t, router, "/api/v1/patients"); rec.Code != http.StatusUnauthorized {
		t.Errorf("/api/v1/patients без токена: %d, ожидается 401", rec.Code)
	}
}

func TestSkipPrefixes(t *testing.T) {
	deny := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		})
	}
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	h := skipPrefixes(deny, "/health/", "/metrics")(ok)

	tests := map[string]int{
		"/health/live":     http.StatusOK,
		"/metrics":         http.StatusOK,
		"/api/v1/patients": http.StatusForbidden,
		"/healthz":         http.StatusForbidden,
	}
	for path, want := range tests {
		if rec := get(t, h, path); rec.Code != want {
			t.Errorf("%s: %d, ожидается %d", path, rec.Code, want)
		}
	}
}

func newTestUIRouter(t *testing.T) http.Handler {
	t.Helper()
	deny := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/app/login", http.StatusFound)
		})
	}
	return NewUIRouter(UIComponents{
		Auth:           uihandlers.NewAuthHandler(nil, nil, false, testLogger()),
		AuthMiddleware: deny,
		Home:           uihandlers.NewHomeHandler(nil, nil, testLogger()),
		Patients:       uihandlers.NewPatientsHandler(nil, nil, 0, testLogger()),
		Health:         handlers.NewHealthHandler("clinic-ui"),
		DefaultLang:    i18n.LangPT,
	}, testLogger())
}

func TestUIRouter_PublicRoutes(t *testing.T) {
	router := newTestUIRouter(t)

	if rec := get(t, router, "/health/live"); rec.Code != http.StatusOK {
		t.Errorf("/health/live: %d", rec.Code)
	}
	if rec := get(t, router, "/health/ready"); rec.Code != http.StatusOK {
		t.Errorf("/health/ready без зависимостей: %d", rec.Code)
	}

	rec := get(t, router, "/static/css/app.css")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Header().Get("Content-Type"), "text/css") {
		t.Errorf("/static/css/app.css: %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	if rec := get(t, router, "/static/js/app.js"); rec.Code != http.StatusOK {
		t.Errorf("/static/js/app.js: %d", rec.Code)
	}

	rec = get(t, router, "/")
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/app/" {
		t.Errorf("/: %d → %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestUIRouter_ProtectedRoutesRequireSession(t *testing.T) {
	router := newTestUIRouter(t)
	for _, path := range []string{
		"/app/",
		"/app/patients",
		"/app/patients/p1",
		"/app/agenda",
		"/app/prescriptions",
		"/app/partials/patients-table",
	} {
		rec := get(t, router, path)
		if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/app/login" {
			t.Errorf("%s: %d → %q, ожидается редирект на вход", path, rec.Code, rec.Header().Get("Location"))
		}
	}
}
