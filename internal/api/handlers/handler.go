// handler.go - обработчик clinic-api: пациенты и профили пользователей.
// Делегирует запросы в сервисный слой, маппит ошибки в коды API.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/oapi-codegen/runtime"

	"github.com/bigkaa/goclinic/internal/domain/model"
	"github.com/bigkaa/goclinic/internal/service"
)

// PatientService - операции с пациентами, нужные handlers.
type PatientService interface {
	Register(ctx context.Context, ownerID string, in model.PatientInput) (*model.Patient, error)
	List(ctx context.Context, ownerID string, limit, offset int) ([]*model.Patient, int, error)
	Get(ctx context.Context, ownerID, id string) (*model.Patient, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// UserService - чтение профиля пользователя.
type UserService interface {
	Get(ctx context.Context, caller service.Identity, id string) (*model.User, error)
}

// APIHandler - основной обработчик API clinic-api.
type APIHandler struct {
	patients PatientService
	users    UserService
	logger   *slog.Logger
}

// NewAPIHandler создаёт основной обработчик API.
func NewAPIHandler(patients PatientService, users UserService, logger *slog.Logger) *APIHandler {
	return &APIHandler{
		patients: patients,
		users:    users,
		logger:   logger.With(slog.String("component", "api_handler")),
	}
}

// --- Вспомогательные функции ---

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// bindPagination читает limit/offset из query (form, explode) и нормализует их.
func bindPagination(r *http.Request) (limit, offset int, err error) {
	var l, o *int
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "limit", q, &l); err != nil {
		return 0, 0, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "offset", q, &o); err != nil {
		return 0, 0, err
	}
	limit, offset = paginationDefaults(l, o)
	return limit, offset, nil
}

// paginationDefaults нормализует параметры пагинации.
func paginationDefaults(limit *int, offset *int) (int, int) {
	l := 100
	o := 0

	if limit != nil {
		l = min(max(*limit, 1), 500)
	}
	if offset != nil {
		o = max(*offset, 0)
	}
	return l, o
}
