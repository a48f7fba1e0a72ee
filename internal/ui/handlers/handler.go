// Пакет handlers - HTTP-обработчики clinic-ui.
package handlers

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/bigkaa/goclinic/internal/api/dto"
	"github.com/bigkaa/goclinic/internal/ui/auth"
	"github.com/bigkaa/goclinic/internal/ui/i18n"
	"github.com/bigkaa/goclinic/internal/ui/pages"
)

// PatientStore - операции clinic-api над пациентами (patientapi.Client).
type PatientStore interface {
	ListAllPatients(ctx context.Context) ([]dto.Patient, error)
	GetPatient(ctx context.Context, id string) (*dto.Patient, error)
	RegisterPatient(ctx context.Context, in dto.PatientInput) (*dto.Patient, error)
	DeletePatient(ctx context.Context, id string) error
}

// UserStore - профиль пользователя в clinic-api.
type UserStore interface {
	GetUser(ctx context.Context, id string) (*dto.User, error)
}

// HXTriggerPatientsChanged - событие HTMX, по которому таблица перечитывает список.
const HXTriggerPatientsChanged = "patients-changed"

func layoutFor(session *auth.SessionData, titleKey, active string) pages.LayoutData {
	return pages.LayoutData{
		TitleKey: titleKey,
		Username: session.DisplayName(),
		Active:   active,
	}
}

// render пишет HTML-компонент со статусом status.
func render(w http.ResponseWriter, r *http.Request, logger *slog.Logger, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		logger.Error("Ошибка рендеринга",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
}

// renderPage рендерит полную страницу в буфер: ошибка рендеринга
// отдаётся как 500 без частично записанного HTML.
func renderPage(w http.ResponseWriter, r *http.Request, logger *slog.Logger, c templ.Component) {
	var buf bytes.Buffer
	if err := c.Render(r.Context(), &buf); err != nil {
		logger.Error("Ошибка рендеринга страницы",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		http.Error(w, i18n.T(r.Context(), "errors.page"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// writeEmpty отвечает пустым HTML-фрагментом: htmx очищает целевой слот.
func writeEmpty(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
}
