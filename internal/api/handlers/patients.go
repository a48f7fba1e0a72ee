// patients.go - обработчики /api/v1/patients endpoints.
// Регистрация, список, карточка и удаление пациентов текущего пользователя.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/goclinic/internal/api/dto"
	apierrors "github.com/bigkaa/goclinic/internal/api/errors"
	"github.com/bigkaa/goclinic/internal/api/middleware"
	"github.com/bigkaa/goclinic/internal/domain/model"
	"github.com/bigkaa/goclinic/internal/service"
)

// RegisterPatient - POST /api/v1/patients.
func (h *APIHandler) RegisterPatient(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		apierrors.Unauthorized(w, "Отсутствуют claims в контексте")
		return
	}

	var req dto.PatientInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return
	}

	p, err := h.patients.Register(r.Context(), claims.Subject, model.PatientInput{
		Name:     req.Name,
		Age:      req.Age,
		Document: req.Document,
		Phone:    req.Phone,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			apierrors.ValidationError(w, err.Error())
		case errors.Is(err, service.ErrConflict):
			apierrors.Conflict(w, err.Error())
		default:
			h.logger.Error("Ошибка регистрации пациента", "error", err)
			apierrors.InternalError(w, "Ошибка регистрации пациента")
		}
		return
	}

	writeJSON(w, http.StatusCreated, mapPatient(p))
}

// ListPatients - GET /api/v1/patients.
func (h *APIHandler) ListPatients(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		apierrors.Unauthorized(w, "Отсутствуют claims в контексте")
		return
	}

	limit, offset, err := bindPagination(r)
	if err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}

	patients, total, err := h.patients.List(r.Context(), claims.Subject, limit, offset)
	if err != nil {
		h.logger.Error("Ошибка получения списка пациентов", "error", err)
		apierrors.InternalError(w, "Ошибка получения списка пациентов")
		return
	}

	items := make([]dto.Patient, len(patients))
	for i, p := range patients {
		items[i] = mapPatient(p)
	}

	writeJSON(w, http.StatusOK, dto.PatientList{
		Items:  items,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// GetPatient - GET /api/v1/patients/{id}.
func (h *APIHandler) GetPatient(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		apierrors.Unauthorized(w, "Отсутствуют claims в контексте")
		return
	}

	id := chi.URLParam(r, "id")
	p, err := h.patients.Get(r.Context(), claims.Subject, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			apierrors.NotFound(w, "Пациент не найден")
			return
		}
		h.logger.Error("Ошибка получения пациента", "patient_id", id, "error", err)
		apierrors.InternalError(w, "Ошибка получения пациента")
		return
	}

	writeJSON(w, http.StatusOK, mapPatient(p))
}

// DeletePatient - DELETE /api/v1/patients/{id}.
func (h *APIHandler) DeletePatient(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		apierrors.Unauthorized(w, "Отсутствуют claims в контексте")
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.patients.Delete(r.Context(), claims.Subject, id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			apierrors.NotFound(w, "Пациент не найден")
			return
		}
		h.logger.Error("Ошибка удаления пациента", "patient_id", id, "error", err)
		apierrors.InternalError(w, "Ошибка удаления пациента")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func mapPatient(p *model.Patient) dto.Patient {
	return dto.Patient{
		ID:        p.ID,
		Name:      p.Name,
		Age:       p.Age,
		Document:  p.Document,
		Phone:     p.Phone,
		CreatedAt: p.CreatedAt,
	}
}
