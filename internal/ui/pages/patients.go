package pages

import (
	"context"
	"io"
	"net/url"

	"github.com/a-h/templ"

	"github.com/bigkaa/goclinic/internal/ui/i18n"
	"github.com/bigkaa/goclinic/internal/ui/table"
)

// Пути страницы пациентов и её фрагментов.
const (
	PatientsPath      = "/app/patients"
	TablePartialPath  = "/app/partials/patients-table"
	FormPartialPath   = "/app/partials/patient-form"
	PatientPartialDir = "/app/partials/patients/"
)

// ID колонок таблицы пациентов.
const (
	ColName     = "name"
	ColPhone    = "phone"
	ColDocument = "document"
	ColActions  = "actions"
)

// PatientRow - строка таблицы: телефон и документ уже с маской.
type PatientRow struct {
	ID       string
	Name     string
	Phone    string
	Document string
}

// PatientsTableData - данные фрагмента таблицы.
type PatientsTableData struct {
	View table.View[PatientRow]
	// AllColumns - все колонки (для меню видимости).
	AllColumns []table.Column[PatientRow]
	// LoadError - сообщение, если список не удалось загрузить.
	LoadError string
}

// PatientsPageData - данные страницы пациентов.
type PatientsPageData struct {
	Layout LayoutData
	Table  PatientsTableData
	// Form - открытый popover создания; nil - закрыт.
	Form *PatientFormData
}

// PatientsPage - страница пациентов: поиск, кнопка создания, таблица.
func PatientsPage(d PatientsPageData) templ.Component {
	return Layout(d.Layout, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		st := d.Table.View.State

		h.raw(`<h1>`)
		h.text(i18n.T(ctx, "patients.title"))
		h.raw(`</h1><div class="toolbar"><input type="search" name="q"`)
		h.attr("value", st.Filter)
		h.attr("placeholder", i18n.T(ctx, "patients.search"))
		h.attr("aria-label", i18n.T(ctx, "patients.search"))
		h.attr("hx-get", TablePartialPath)
		h.raw(` hx-trigger="input changed delay:300ms, search" hx-target="#patients-table" hx-swap="outerHTML" hx-include="#table-state">`)

		h.raw(`<button type="button" class="btn btn-primary"`)
		h.attr("hx-get", FormPartialPath)
		h.raw(` hx-target="#patient-form-slot" hx-swap="innerHTML">`)
		h.text(i18n.T(ctx, "patients.new"))
		h.raw(`</button><div id="patient-form-slot">`)
		if d.Form != nil {
			h.component(PatientForm(*d.Form))
		}
		h.raw(`</div></div>`)

		h.component(PatientsTable(d.Table))
		return h.err
	}))
}

// PatientsTable - фрагмент таблицы. Перерисовывается целиком при любом
// изменении состояния и по событию patients-changed.
func PatientsTable(d PatientsTableData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		v := d.View
		st := v.State

		h.raw(`<div id="patients-table"`)
		h.attr("hx-get", stateURL(TablePartialPath, st))
		h.raw(` hx-trigger="patients-changed from:body" hx-swap="outerHTML">`)

		writeStateForm(h, st)
		writeColumnMenu(ctx, h, d.AllColumns, st)

		if d.LoadError != "" {
			h.raw(`<div class="alert" role="alert">`)
			h.text(d.LoadError)
			h.raw(`</div>`)
		}

		h.raw(`<table class="data"><thead><tr>`)
		writeSelectAll(ctx, h, v)
		for _, c := range v.Columns {
			writeHeader(ctx, h, c, st)
		}
		h.raw(`</tr></thead><tbody>`)

		if len(v.Rows) == 0 {
			h.raw(`<tr><td class="empty"`)
			h.attr("colspan", itoa(len(v.Columns)+1))
			h.raw(`>`)
			h.text(i18n.T(ctx, "patients.empty"))
			h.raw(`</td></tr>`)
		}
		for _, row := range v.Rows {
			writeRow(ctx, h, v.Columns, row, st)
		}
		h.raw(`</tbody></table>`)

		h.raw(`<div class="table-footer"><span>`)
		h.text(i18n.Tf(ctx, "patients.selected", v.SelectedCount, v.FilteredCount))
		h.raw(`</span><div class="pager"><span>`)
		h.text(i18n.Tf(ctx, "patients.page", st.Page+1, v.PageCount))
		h.raw(`</span>`)
		pagerButton(h, i18n.T(ctx, "patients.prev"), st.WithPage(st.Page-1), v.CanPrev())
		pagerButton(h, i18n.T(ctx, "patients.next"), st.WithPage(st.Page+1), v.CanNext())
		h.raw(`</div></div></div>`)
		return h.err
	})
}

// writeStateForm - скрытые поля состояния для запроса поиска.
// Номер страницы не передаётся: новый поиск начинается с первой страницы.
func writeStateForm(h *htmlWriter, st table.State) {
	values := st.WithPage(0).WithFilter("").Values()
	h.raw(`<form id="table-state" hidden>`)
	for _, name := range []string{table.ParamSort, table.ParamDesc, table.ParamHidden, table.ParamSel} {
		if v := values.Get(name); v != "" {
			h.raw(`<input type="hidden"`)
			h.attr("name", name)
			h.attr("value", v)
			h.raw(`>`)
		}
	}
	h.raw(`</form>`)
}

func writeColumnMenu(ctx context.Context, h *htmlWriter, cols []table.Column[PatientRow], st table.State) {
	h.raw(`<div class="toolbar"><details class="menu"><summary class="btn">`)
	h.text(i18n.T(ctx, "patients.columns"))
	h.raw(`</summary><div class="menu-items">`)
	for _, c := range cols {
		if !c.Hideable {
			continue
		}
		h.raw(`<label><input type="checkbox"`)
		h.flag("checked", !st.IsHidden(c.ID))
		stateAttrs(h, st.ToggleHidden(c.ID))
		h.raw(`> `)
		h.text(i18n.T(ctx, c.Header))
		h.raw(`</label>`)
	}
	h.raw(`</div></details></div>`)
}

func writeSelectAll(ctx context.Context, h *htmlWriter, v table.View[PatientRow]) {
	ids := make([]string, len(v.Rows))
	all := len(v.Rows) > 0
	for i, r := range v.Rows {
		ids[i] = r.ID
		all = all && v.State.IsSelected(r.ID)
	}
	h.raw(`<th data-no-nav><input type="checkbox"`)
	h.attr("aria-label", i18n.T(ctx, "patients.col.select"))
	h.flag("checked", all)
	h.flag("disabled", len(v.Rows) == 0)
	stateAttrs(h, v.State.WithSelection(ids, !all))
	h.raw(`></th>`)
}

func writeHeader(ctx context.Context, h *htmlWriter, c table.Column[PatientRow], st table.State) {
	h.raw(`<th`)
	h.attr("data-col", c.ID)
	if st.Sort.Column == c.ID {
		if st.Sort.Desc {
			h.raw(` aria-sort="descending"`)
		} else {
			h.raw(` aria-sort="ascending"`)
		}
	}
	h.raw(`>`)
	if !c.Sortable() {
		h.text(i18n.T(ctx, c.Header))
		h.raw(`</th>`)
		return
	}
	h.raw(`<button type="button" class="btn-link"`)
	stateAttrs(h, st.ToggleSort(c.ID))
	h.raw(`>`)
	h.text(i18n.T(ctx, c.Header))
	if st.Sort.Column == c.ID {
		if st.Sort.Desc {
			h.raw(` <span`)
			h.attr("title", i18n.T(ctx, "patients.sort.desc"))
			h.raw(`>&darr;</span>`)
		} else {
			h.raw(` <span`)
			h.attr("title", i18n.T(ctx, "patients.sort.asc"))
			h.raw(`>&uarr;</span>`)
		}
	}
	h.raw(`</button></th>`)
}

func writeRow(ctx context.Context, h *htmlWriter, cols []table.Column[PatientRow], row PatientRow, st table.State) {
	selected := st.IsSelected(row.ID)
	h.raw(`<tr`)
	h.attr("data-href", PatientsPath+"/"+url.PathEscape(row.ID))
	if selected {
		h.raw(` class="selected"`)
	}
	h.raw(`><td data-no-nav><input type="checkbox"`)
	h.attr("aria-label", i18n.T(ctx, "patients.col.select"))
	h.flag("checked", selected)
	stateAttrs(h, st.ToggleSelected(row.ID))
	h.raw(`></td>`)

	for _, c := range cols {
		if c.ID == ColActions {
			writeActions(ctx, h, row)
			continue
		}
		h.raw(`<td>`)
		if c.Value != nil {
			h.text(c.Value(row))
		}
		h.raw(`</td>`)
	}
	h.raw(`</tr>`)
}

// writeActions - меню действий строки. Пункт удаления останавливает
// всплытие клика, чтобы меню не закрылось до открытия диалога.
func writeActions(ctx context.Context, h *htmlWriter, row PatientRow) {
	h.raw(`<td data-no-nav><details class="menu"><summary`)
	h.attr("aria-label", i18n.T(ctx, "patients.menu"))
	h.raw(`>&hellip;</summary><div class="menu-items"><a`)
	h.attr("href", PatientsPath+"/"+url.PathEscape(row.ID))
	h.raw(`>`)
	h.text(i18n.T(ctx, "patients.menu.open"))
	h.raw(`</a><button type="button" class="btn-link danger"`)
	h.attr("hx-get", PatientPartialDir+url.PathEscape(row.ID)+"/confirm-delete")
	h.raw(` hx-target="#dialog-slot" hx-swap="innerHTML" hx-on:click="event.stopPropagation()">`)
	h.text(i18n.T(ctx, "patients.menu.delete"))
	h.raw(`</button></div></details></td>`)
}

func pagerButton(h *htmlWriter, label string, st table.State, enabled bool) {
	h.raw(`<button type="button" class="btn"`)
	h.flag("disabled", !enabled)
	if enabled {
		stateAttrs(h, st)
	}
	h.raw(`>`)
	h.text(label)
	h.raw(`</button>`)
}

// stateAttrs - атрибуты HTMX для перехода таблицы в состояние st.
// Адрес страницы обновляется, чтобы перезагрузка сохраняла состояние.
func stateAttrs(h *htmlWriter, st table.State) {
	h.attr("hx-get", stateURL(TablePartialPath, st))
	h.attr("hx-push-url", stateURL(PatientsPath, st))
	h.raw(` hx-target="#patients-table" hx-swap="outerHTML"`)
}

func stateURL(path string, st table.State) string {
	if q := st.WithCreateOpen(false).Query(); q != "" {
		return path + "?" + q
	}
	return path
}
