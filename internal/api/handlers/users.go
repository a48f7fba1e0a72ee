// users.go - обработчик /api/v1/users/{id}.
package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/goclinic/internal/api/dto"
	apierrors "github.com/bigkaa/goclinic/internal/api/errors"
	"github.com/bigkaa/goclinic/internal/api/middleware"
	"github.com/bigkaa/goclinic/internal/service"
)

// GetUser - GET /api/v1/users/{id}. Пользователь читает только свой профиль.
func (h *APIHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		apierrors.Unauthorized(w, "Отсутствуют claims в контексте")
		return
	}

	id := chi.URLParam(r, "id")
	u, err := h.users.Get(r.Context(), service.Identity{
		Subject: claims.Subject,
		Name:    claims.Name,
		Email:   claims.Email,
		CRM:     claims.CRM,
	}, id)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			apierrors.Forbidden(w, "Доступен только собственный профиль")
			return
		}
		h.logger.Error("Ошибка получения пользователя", "user_id", id, "error", err)
		apierrors.InternalError(w, "Ошибка получения пользователя")
		return
	}

	writeJSON(w, http.StatusOK, dto.User{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		CRM:   u.CRM,
	})
}
