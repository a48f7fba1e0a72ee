// patients.go - страница пациентов и её HTMX-фрагменты: таблица,
// форма создания, диалог удаления, карточка пациента.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"golang.org/x/text/language"

	"github.com/bigkaa/goclinic/internal/api/dto"
	"github.com/bigkaa/goclinic/internal/domain/document"
	"github.com/bigkaa/goclinic/internal/patientapi"
	"github.com/bigkaa/goclinic/internal/querycache"
	"github.com/bigkaa/goclinic/internal/ui/auth"
	"github.com/bigkaa/goclinic/internal/ui/errtext"
	"github.com/bigkaa/goclinic/internal/ui/forms"
	"github.com/bigkaa/goclinic/internal/ui/i18n"
	uimiddleware "github.com/bigkaa/goclinic/internal/ui/middleware"
	"github.com/bigkaa/goclinic/internal/ui/pages"
	"github.com/bigkaa/goclinic/internal/ui/table"
	"github.com/bigkaa/goclinic/internal/ui/workflow"
)

// PatientsPageSize - строк на странице таблицы пациентов.
const PatientsPageSize = 8

// PatientColumns - колонки таблицы пациентов. Колонка действий не скрывается.
func PatientColumns() []table.Column[pages.PatientRow] {
	return []table.Column[pages.PatientRow]{
		{ID: pages.ColName, Header: "patients.col.name", Value: func(r pages.PatientRow) string { return r.Name }, Hideable: true},
		{ID: pages.ColPhone, Header: "patients.col.phone", Value: func(r pages.PatientRow) string { return r.Phone }, Hideable: true},
		{ID: pages.ColDocument, Header: "patients.col.document", Value: func(r pages.PatientRow) string { return r.Document }, Hideable: true},
		{ID: pages.ColActions, Header: "patients.col.actions"},
	}
}

// PatientsHandler - обработчики страницы пациентов.
type PatientsHandler struct {
	store       PatientStore
	cache       *querycache.Cache
	patientsTTL time.Duration
	engine      *table.Engine[pages.PatientRow]
	logger      *slog.Logger
}

// NewPatientsHandler создаёт новый PatientsHandler. Список пациентов
// кэшируется на patientsTTL и помечается устаревшим после создания и удаления.
func NewPatientsHandler(store PatientStore, cache *querycache.Cache, patientsTTL time.Duration, logger *slog.Logger) *PatientsHandler {
	return &PatientsHandler{
		store:       store,
		cache:       cache,
		patientsTTL: patientsTTL,
		engine: table.NewEngine(table.Config[pages.PatientRow]{
			Columns:      PatientColumns(),
			RowID:        func(r pages.PatientRow) string { return r.ID },
			FilterColumn: pages.ColName,
			PageSize:     PatientsPageSize,
			Language:     language.BrazilianPortuguese,
		}),
		logger: logger.With(slog.String("component", "ui.patients")),
	}
}

// HandlePage обрабатывает GET /app/patients.
func (h *PatientsHandler) HandlePage(w http.ResponseWriter, r *http.Request) {
	session := uimiddleware.SessionFromContext(r.Context())
	if session == nil {
		http.Redirect(w, r, uimiddleware.LoginPath, http.StatusFound)
		return
	}

	st := table.ParseState(r.URL.Query())
	data := pages.PatientsPageData{
		Layout: layoutFor(session, "patients.title", pages.NavPatients),
		Table:  h.tableData(r.Context(), session, st),
	}
	if st.CreateOpen {
		data.Form = &pages.PatientFormData{}
	}
	renderPage(w, r, h.logger, pages.PatientsPage(data))
}

// HandleTable обрабатывает GET /app/partials/patients-table.
func (h *PatientsHandler) HandleTable(w http.ResponseWriter, r *http.Request) {
	session := uimiddleware.SessionFromContext(r.Context())
	if session == nil {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	st := table.ParseState(r.URL.Query())
	render(w, r, h.logger, http.StatusOK, pages.PatientsTable(h.tableData(r.Context(), session, st)))
}

// HandleFormOpen обрабатывает GET /app/partials/patient-form:
// открывает popover, с close=1 закрывает его.
// Состояние формы между запросами живёт в браузере: закрытие - пустой слот.
func (h *PatientsHandler) HandleFormOpen(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("close") == "1" {
		writeEmpty(w)
		return
	}
	intake := workflow.NewIntake(h.store, nil, h.logger)
	if err := intake.Open(); err != nil {
		h.logger.Error("Ошибка открытия формы", slog.String("error", err.Error()))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	render(w, r, h.logger, http.StatusOK, pages.PatientForm(pages.PatientFormData{Form: intake.Form()}))
}

// HandleFormSubmit обрабатывает POST /app/partials/patient-form.
//
// Ошибки проверки - форма с сообщениями под полями, без запроса к clinic-api.
// Ошибка clinic-api - форма с введёнными значениями и уведомление.
// Успех - пустой слот (popover закрыт), уведомление и событие patients-changed.
func (h *PatientsHandler) HandleFormSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := uimiddleware.SessionFromContext(ctx)
	if session == nil {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	intake := workflow.NewIntake(h.store, h.invalidator(session), h.logger)
	_ = intake.Open()
	if err := intake.Fill(forms.ParsePatientForm(r.PostForm)); err != nil {
		h.logger.Error("Ошибка заполнения формы", slog.String("error", err.Error()))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	patient, err := intake.Submit(ctx)
	switch {
	case errors.Is(err, workflow.ErrValidation):
		render(w, r, h.logger, http.StatusOK, pages.PatientForm(pages.PatientFormData{
			Form:   intake.Form(),
			Errors: intake.Errors(),
		}))
	case err != nil:
		h.logger.Warn("Ошибка регистрации пациента",
			slog.String("user_id", session.UserID),
			slog.String("error", err.Error()),
		)
		render(w, r, h.logger, http.StatusOK, templ.Join(
			pages.PatientForm(pages.PatientFormData{Form: intake.Form()}),
			pages.Toast(pages.ToastError, i18n.Tf(ctx, "toast.create_failed", errtext.Message(ctx, err))),
		))
	default:
		h.logger.Info("Пациент зарегистрирован",
			slog.String("user_id", session.UserID),
			slog.String("patient_id", patient.ID),
		)
		w.Header().Set("HX-Trigger", HXTriggerPatientsChanged)
		render(w, r, h.logger, http.StatusOK, pages.Toast(pages.ToastSuccess, i18n.T(ctx, "toast.created")))
	}
}

// HandleConfirmDelete обрабатывает GET /app/partials/patients/{id}/confirm-delete:
// открывает диалог удаления, с cancel=1 закрывает его без запроса к clinic-api.
func (h *PatientsHandler) HandleConfirmDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	if r.URL.Query().Get("cancel") == "1" {
		writeEmpty(w)
		return
	}

	patient, err := h.store.GetPatient(ctx, id)
	if err != nil {
		h.logger.Warn("Ошибка получения пациента для удаления",
			slog.String("patient_id", id),
			slog.String("error", err.Error()),
		)
		render(w, r, h.logger, http.StatusOK,
			pages.Toast(pages.ToastError, i18n.Tf(ctx, "toast.delete_failed", errtext.Message(ctx, err))))
		return
	}

	deletion := workflow.NewDeletion(h.store, nil, h.logger)
	if err := deletion.RequestDelete(*patient); err != nil {
		h.logger.Error("Ошибка открытия диалога удаления",
			slog.String("patient_id", id),
			slog.String("error", err.Error()),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	target := deletion.Target()
	render(w, r, h.logger, http.StatusOK, pages.ConfirmDelete(pages.ConfirmDeleteData{ID: target.ID, Name: target.Name}))
}

// HandleDelete обрабатывает DELETE /app/partials/patients/{id}.
// Запрос без confirmed=true (не из диалога подтверждения) отклоняется.
func (h *PatientsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := uimiddleware.SessionFromContext(ctx)
	if session == nil {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	id := chi.URLParam(r, "id")
	if r.FormValue("confirmed") != "true" {
		http.Error(w, "удаление требует подтверждения", http.StatusBadRequest)
		return
	}

	deletion := workflow.NewDeletion(h.store, h.invalidator(session), h.logger)
	if err := deletion.RequestDelete(dto.Patient{ID: id, Name: r.FormValue("name")}); err != nil {
		h.logger.Error("Ошибка подготовки удаления",
			slog.String("patient_id", id),
			slog.String("error", err.Error()),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if err := deletion.Confirm(ctx); err != nil {
		h.logger.Warn("Ошибка удаления пациента",
			slog.String("patient_id", id),
			slog.String("error", err.Error()),
		)
		target := deletion.Target()
		render(w, r, h.logger, http.StatusOK, templ.Join(
			pages.ConfirmDelete(pages.ConfirmDeleteData{ID: target.ID, Name: target.Name}),
			pages.Toast(pages.ToastError, i18n.Tf(ctx, "toast.delete_failed", errtext.Message(ctx, err))),
		))
		return
	}

	h.logger.Info("Пациент удалён",
		slog.String("user_id", session.UserID),
		slog.String("patient_id", id),
	)
	w.Header().Set("HX-Trigger", HXTriggerPatientsChanged)
	render(w, r, h.logger, http.StatusOK, pages.Toast(pages.ToastSuccess, i18n.T(ctx, "toast.deleted")))
}

// HandleDetail обрабатывает GET /app/patients/{id} - карточка пациента.
func (h *PatientsHandler) HandleDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := uimiddleware.SessionFromContext(ctx)
	if session == nil {
		http.Redirect(w, r, uimiddleware.LoginPath, http.StatusFound)
		return
	}
	id := chi.URLParam(r, "id")
	data := pages.PatientDetailData{Layout: layoutFor(session, "patients.title", pages.NavPatients)}

	patient, err := h.store.GetPatient(ctx, id)
	if err != nil {
		status := http.StatusBadGateway
		data.Error = i18n.Tf(ctx, "detail.load_failed", errtext.Message(ctx, err))
		if patientapi.IsNotFound(err) {
			status = http.StatusNotFound
			data.Error = i18n.T(ctx, "detail.not_found")
		} else {
			h.logger.Warn("Ошибка получения пациента",
				slog.String("patient_id", id),
				slog.String("error", err.Error()),
			)
		}
		render(w, r, h.logger, status, pages.PatientDetail(data))
		return
	}

	data.Patient = &pages.PatientRecord{
		Name:      patient.Name,
		Age:       patient.Age,
		Document:  document.Label(patient.Document),
		Phone:     maskedPhone(patient.Phone),
		CreatedAt: patient.CreatedAt,
	}
	renderPage(w, r, h.logger, pages.PatientDetail(data))
}

// tableData загружает список через кэш и применяет состояние таблицы.
// Ошибка загрузки выводится над пустой таблицей.
func (h *PatientsHandler) tableData(ctx context.Context, session *auth.SessionData, st table.State) pages.PatientsTableData {
	data := pages.PatientsTableData{AllColumns: h.engine.Columns()}

	patients, err := querycache.Fetch(ctx, h.cache, querycache.ResourcePatients, session.UserID, h.patientsTTL,
		h.store.ListAllPatients)
	if err != nil {
		h.logger.Warn("Ошибка загрузки списка пациентов",
			slog.String("user_id", session.UserID),
			slog.String("error", err.Error()),
		)
		data.LoadError = i18n.Tf(ctx, "patients.load_failed", errtext.Message(ctx, err))
	}

	rows := make([]pages.PatientRow, len(patients))
	for i, p := range patients {
		rows[i] = pages.PatientRow{
			ID:       p.ID,
			Name:     p.Name,
			Phone:    maskedPhone(p.Phone),
			Document: document.Label(p.Document),
		}
	}
	data.View = h.engine.Compute(rows, st)
	return data
}

// invalidator помечает список пациентов пользователя устаревшим.
func (h *PatientsHandler) invalidator(session *auth.SessionData) workflow.InvalidateFunc {
	userID := session.UserID
	return func(ctx context.Context) error {
		return h.cache.Invalidate(ctx, querycache.ResourcePatients, userID)
	}
}

func maskedPhone(phone *string) string {
	if phone == nil {
		return ""
	}
	return document.FormatPhone(*phone)
}
