package pages

import (
	"context"
	"io"
	"net/url"

	"github.com/a-h/templ"

	"github.com/bigkaa/goclinic/internal/ui/forms"
	"github.com/bigkaa/goclinic/internal/ui/i18n"
)

// PatientFormData - данные popover создания пациента.
type PatientFormData struct {
	Form   forms.PatientForm
	Errors forms.FieldErrors
}

type formField struct {
	name      string
	labelKey  string
	inputType string
	inputMode string
	maxLen    int
	hintKey   string
}

var patientFormFields = []formField{
	{name: forms.FieldName, labelKey: "form.name.label", inputType: "text", maxLen: forms.NameMaxLen},
	{name: forms.FieldAge, labelKey: "form.age.label", inputType: "number"},
	{name: forms.FieldDocument, labelKey: "form.document.label", inputType: "text", inputMode: "numeric", maxLen: forms.DocumentMaxLen},
	{name: forms.FieldPhone, labelKey: "form.phone.label", inputType: "tel", inputMode: "numeric", maxLen: forms.PhoneMaxLen, hintKey: "form.phone.hint"},
}

// PatientForm - popover с формой нового пациента. Кнопка отправки
// блокируется на время запроса (hx-disabled-elt).
func PatientForm(d PatientFormData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		h.raw(`<div class="popover" role="dialog" aria-labelledby="patient-form-title"><h2 id="patient-form-title">`)
		h.text(i18n.T(ctx, "form.title"))
		h.raw(`</h2><form novalidate`)
		h.attr("hx-post", FormPartialPath)
		h.raw(` hx-target="#patient-form-slot" hx-swap="innerHTML" hx-disabled-elt="find button">`)

		for _, f := range patientFormFields {
			errKey := d.Errors[f.name]
			id := "patient-" + f.name
			h.raw(`<div class="field`)
			if errKey != "" {
				h.raw(` invalid`)
			}
			h.raw(`"><label`)
			h.attr("for", id)
			h.raw(`>`)
			h.text(i18n.T(ctx, f.labelKey))
			h.raw(`</label><input`)
			h.attr("id", id)
			h.attr("name", f.name)
			h.attr("type", f.inputType)
			h.attr("value", d.Form.Value(f.name))
			if f.inputMode != "" {
				h.attr("inputmode", f.inputMode)
			}
			if f.maxLen > 0 {
				h.attr("maxlength", itoa(f.maxLen))
			}
			if errKey != "" {
				h.raw(` aria-invalid="true"`)
			}
			h.raw(`>`)
			if errKey != "" {
				h.raw(`<span class="error" role="alert"`)
				h.attr("data-error-for", f.name)
				h.raw(`>`)
				h.text(i18n.T(ctx, errKey))
				h.raw(`</span>`)
			} else if f.hintKey != "" {
				h.raw(`<span class="hint">`)
				h.text(i18n.T(ctx, f.hintKey))
				h.raw(`</span>`)
			}
			h.raw(`</div>`)
		}

		h.raw(`<div class="actions"><button type="button" class="btn" data-dismiss-on-escape`)
		h.attr("hx-get", FormPartialPath+"?close=1")
		h.raw(` hx-target="#patient-form-slot" hx-swap="innerHTML">`)
		h.text(i18n.T(ctx, "form.cancel"))
		h.raw(`</button><button type="submit" class="btn btn-primary">`)
		h.text(i18n.T(ctx, "form.submit"))
		h.raw(`</button></div></form></div>`)
		return h.err
	})
}

// ConfirmDeleteData - данные диалога удаления.
type ConfirmDeleteData struct {
	ID   string
	Name string
}

// ConfirmDelete - диалог подтверждения удаления. Запрос DELETE
// принимается сервером только с полем confirmed=true из этого диалога.
func ConfirmDelete(d ConfirmDeleteData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		base := PatientPartialDir + url.PathEscape(d.ID)

		h.raw(`<div class="dialog-backdrop"><div class="dialog" role="alertdialog" aria-modal="true" aria-labelledby="delete-title"><h2 id="delete-title">`)
		h.text(i18n.T(ctx, "delete.title"))
		h.raw(`</h2><p>`)
		h.text(i18n.Tf(ctx, "delete.text", d.Name))
		h.raw(`</p><form`)
		h.attr("hx-delete", base)
		h.raw(` hx-target="#dialog-slot" hx-swap="innerHTML" hx-disabled-elt="find button">`)
		h.raw(`<input type="hidden" name="confirmed" value="true"><input type="hidden" name="name"`)
		h.attr("value", d.Name)
		h.raw(`><div class="actions"><button type="button" class="btn" data-dismiss-on-escape`)
		h.attr("hx-get", base+"/confirm-delete?cancel=1")
		h.raw(` hx-target="#dialog-slot" hx-swap="innerHTML">`)
		h.text(i18n.T(ctx, "delete.cancel"))
		h.raw(`</button><button type="submit" class="btn btn-danger">`)
		h.text(i18n.T(ctx, "delete.confirm"))
		h.raw(`</button></div></form></div></div>`)
		return h.err
	})
}

// ToastKind - вид уведомления.
type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
)

// Toast - уведомление, добавляемое в #toasts вне основной цели HTMX (OOB).
func Toast(kind ToastKind, message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		role := "status"
		if kind == ToastError {
			role = "alert"
		}
		h.raw(`<div hx-swap-oob="beforeend:#toasts"><div`)
		h.attr("class", "toast toast-"+string(kind))
		h.attr("role", role)
		h.raw(`><span>`)
		h.text(message)
		h.raw(`</span><button type="button" class="btn-link" onclick="this.parentElement.remove()"`)
		h.attr("aria-label", i18n.T(ctx, "toast.close"))
		h.raw(`>&times;</button></div></div>`)
		return h.err
	})
}
