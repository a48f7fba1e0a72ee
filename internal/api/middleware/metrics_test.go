package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/api/v1/patients", "/api/v1/patients"},
		{"/api/v1/patients/0b7c6f2e-1111-4a1b-9c1d-2e3f4a5b6c7d", "/api/v1/patients/{id}"},
		{"/app/partials/patients/0b7c6f2e-1111-4a1b-9c1d-2e3f4a5b6c7d/confirm-delete", "/app/partials/patients/{id}/confirm-delete"},
		{"/api/v1/users/user-1", "/api/v1/users/user-1"},
	}
	for _, tt := range tests {
		if got := normalizePath(tt.in); got != tt.want {
			t.Errorf("normalizePath(%q) = %q, ожидается %q", tt.in, got, tt.want)
		}
	}
}

func TestRoutePattern_UsesChiPattern(t *testing.T) {
	var pattern string
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req)
			pattern = routePattern(req)
		})
	})
	r.Get("/api/v1/users/{id}", func(http.ResponseWriter, *http.Request) {})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/users/user-42", nil))

	if pattern != "/api/v1/users/{id}" {
		t.Errorf("routePattern = %q, ожидается /api/v1/users/{id}", pattern)
	}
}

func TestRequestLogger_LevelByStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("nope"))
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/patients/x", nil))

	out := buf.String()
	if !strings.Contains(out, "level=WARN") {
		t.Errorf("ожидается уровень WARN для 404: %s", out)
	}
	if !strings.Contains(out, "status=404") || !strings.Contains(out, "bytes=4") {
		t.Errorf("в логе нет статуса или размера: %s", out)
	}
}

func TestRequestLevel(t *testing.T) {
	tests := []struct {
		path   string
		status int
		want   slog.Level
	}{
		{"/app/patients", 200, slog.LevelInfo},
		{"/app/partials/patients-table", 404, slog.LevelWarn},
		{"/api/v1/patients", 502, slog.LevelError},
		{"/health/live", 200, slog.LevelDebug},
		{"/static/css/app.css", 200, slog.LevelDebug},
		{"/health/ready", 503, slog.LevelError},
	}
	for _, tt := range tests {
		if got := requestLevel(tt.path, tt.status); got != tt.want {
			t.Errorf("requestLevel(%q, %d) = %v, ожидается %v", tt.path, tt.status, got, tt.want)
		}
	}
}
