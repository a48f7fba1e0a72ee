package pages

import (
	"context"
	"io"
	"time"

	"github.com/a-h/templ"

	"github.com/bigkaa/goclinic/internal/ui/i18n"
)

// PatientRecord - карточка пациента для отображения.
type PatientRecord struct {
	Name string
	Age  int
	// Document - документ с маской и типом ("CPF: ...").
	Document string
	// Phone - телефон с маской; пусто - не указан.
	Phone     string
	CreatedAt time.Time
}

// PatientDetailData - данные страницы пациента.
type PatientDetailData struct {
	Layout  LayoutData
	Patient *PatientRecord
	// Error - сообщение вместо карточки.
	Error string
}

// PatientDetail - страница карточки пациента.
func PatientDetail(d PatientDetailData) templ.Component {
	return Layout(d.Layout, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		h.raw(`<p><a`)
		h.attr("href", PatientsPath)
		h.raw(`>&larr; `)
		h.text(i18n.T(ctx, "detail.back"))
		h.raw(`</a></p>`)

		if d.Patient == nil {
			h.raw(`<div class="alert" role="alert">`)
			h.text(d.Error)
			h.raw(`</div>`)
			return h.err
		}

		p := d.Patient
		phone := p.Phone
		if phone == "" {
			phone = i18n.T(ctx, "detail.phone.none")
		}

		h.raw(`<div class="record"><h1>`)
		h.text(p.Name)
		h.raw(`</h1><dl>`)
		definition(h, i18n.T(ctx, "detail.age"), i18n.Tf(ctx, "detail.age.value", p.Age))
		definition(h, i18n.T(ctx, "detail.document"), p.Document)
		definition(h, i18n.T(ctx, "detail.phone"), phone)
		if !p.CreatedAt.IsZero() {
			definition(h, i18n.T(ctx, "detail.created"), formatDate(ctx, p.CreatedAt))
		}
		h.raw(`</dl></div>`)
		return h.err
	}))
}

func definition(h *htmlWriter, term, value string) {
	h.raw(`<dt>`)
	h.text(term)
	h.raw(`</dt><dd>`)
	h.text(value)
	h.raw(`</dd>`)
}

func formatDate(ctx context.Context, t time.Time) string {
	if i18n.LangFromContext(ctx) == i18n.LangEN {
		return t.Format("2006-01-02")
	}
	return t.Format("02/01/2006")
}
