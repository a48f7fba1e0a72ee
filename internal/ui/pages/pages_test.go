package pages

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"github.com/bigkaa/goclinic/internal/ui/forms"
	"github.com/bigkaa/goclinic/internal/ui/i18n"
	"github.com/bigkaa/goclinic/internal/ui/table"
)

func TestMain(m *testing.M) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := i18n.LoadFromEmbedFS(i18n.Init(i18n.LangPT, logger), logger); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return buf.String()
}

func testColumns() []table.Column[PatientRow] {
	return []table.Column[PatientRow]{
		{ID: ColName, Header: "patients.col.name", Value: func(r PatientRow) string { return r.Name }, Hideable: true},
		{ID: ColPhone, Header: "patients.col.phone", Value: func(r PatientRow) string { return r.Phone }, Hideable: true},
		{ID: ColDocument, Header: "patients.col.document", Value: func(r PatientRow) string { return r.Document }, Hideable: true},
		{ID: ColActions, Header: "patients.col.actions"},
	}
}

func TestHome_Tiles(t *testing.T) {
	html := render(t, Home(HomeData{
		Layout: LayoutData{TitleKey: "home.title", Username: "dra.ana", Active: NavHome},
		Name:   "Ana <b>",
		Tiles: []Tile{
			{ID: "patients", Href: "/app/patients", TitleKey: "home.tile.patients", DescKey: "home.tile.patients.desc"},
			{ID: "prescriptions", Href: "/app/prescriptions", TitleKey: "home.tile.prescriptions", DescKey: "home.tile.prescriptions.desc"},
		},
	}))

	for _, want := range []string{"Olá, Ana &lt;b&gt;", "Prescrições", `data-tile="prescriptions"`, "dra.ana", `aria-current="page"`} {
		if !strings.Contains(html, want) {
			t.Errorf("Ожидалось %q в разметке", want)
		}
	}
	if strings.Contains(html, "Ana <b>") {
		t.Error("Имя пользователя не экранировано")
	}
}

func TestPatientsTable_Render(t *testing.T) {
	engine := table.NewEngine(table.Config[PatientRow]{
		Columns:      testColumns(),
		RowID:        func(r PatientRow) string { return r.ID },
		FilterColumn: ColName,
		PageSize:     8,
	})
	rows := []PatientRow{
		{ID: "a1", Name: "Maria", Phone: "(11) 98765-4321", Document: "CPF: 123.456.789-01"},
		{ID: "b2", Name: "João", Document: "RG: 12.345.678-9"},
	}
	st := table.State{Sort: table.SortState{Column: ColName}, Selected: []string{"a1"}, Hidden: []string{ColPhone}}
	v := engine.Compute(rows, st)

	html := render(t, PatientsTable(PatientsTableData{View: v, AllColumns: testColumns()}))

	for _, want := range []string{
		`id="patients-table"`,
		`hx-trigger="patients-changed from:body"`,
		`data-href="/app/patients/a1"`,
		"CPF: 123.456.789-01",
		"RG: 12.345.678-9",
		"1 de 2 linha(s) selecionada(s).",
		"Página 1 de 1",
		`aria-sort="ascending"`,
		`/app/partials/patients/b2/confirm-delete`,
		`hx-on:click="event.stopPropagation()"`,
		`id="table-state"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("Ожидалось %q в разметке", want)
		}
	}
	// Скрытая колонка телефона не выводится
	if strings.Contains(html, "(11) 98765-4321") || strings.Contains(html, `data-col="phone"`) {
		t.Error("Скрытая колонка phone присутствует в таблице")
	}
}

func TestPatientsTable_Empty(t *testing.T) {
	engine := table.NewEngine(table.Config[PatientRow]{Columns: testColumns(), FilterColumn: ColName, PageSize: 8})
	html := render(t, PatientsTable(PatientsTableData{
		View:       engine.Compute(nil, table.State{}),
		AllColumns: testColumns(),
		LoadError:  "falha",
	}))
	if !strings.Contains(html, "Nenhum paciente encontrado.") || !strings.Contains(html, "falha") {
		t.Error("Ожидались сообщения о пустом списке и ошибке загрузки")
	}
}

func TestPatientForm_Errors(t *testing.T) {
	html := render(t, PatientForm(PatientFormData{
		Form:   forms.PatientForm{Name: "Jo", Age: "121", Document: "1"},
		Errors: forms.FieldErrors{forms.FieldName: forms.MsgNameInvalid, forms.FieldAge: forms.MsgAgeTooHigh},
	}))
	for _, want := range []string{
		"Digite o nome completo.",
		"Idade muito alta.",
		`value="Jo"`,
		`hx-disabled-elt="find button"`,
		`maxlength="50"`,
		`maxlength="11"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("Ожидалось %q в разметке", want)
		}
	}
	if strings.Contains(html, "Documento inválido") {
		t.Error("Ошибка документа не передавалась, но выведена")
	}
}

func TestConfirmDeleteAndToast(t *testing.T) {
	html := render(t, ConfirmDelete(ConfirmDeleteData{ID: "p 1", Name: "Ana"}))
	for _, want := range []string{`hx-delete="/app/partials/patients/p%201"`, `name="confirmed" value="true"`, "excluir Ana?", "cancel=1"} {
		if !strings.Contains(html, want) {
			t.Errorf("Ожидалось %q в диалоге", want)
		}
	}

	toast := render(t, Toast(ToastError, "erro <x>"))
	if !strings.Contains(toast, `hx-swap-oob="beforeend:#toasts"`) || !strings.Contains(toast, "erro &lt;x&gt;") {
		t.Errorf("Toast: %s", toast)
	}
}

func TestPatientDetail(t *testing.T) {
	html := render(t, PatientDetail(PatientDetailData{
		Layout:  LayoutData{TitleKey: "patients.title"},
		Patient: &PatientRecord{Name: "Maria", Age: 42, Document: "CPF: 123.456.789-01"},
	}))
	for _, want := range []string{"Maria", "42 anos", "CPF: 123.456.789-01", "Não informado"} {
		if !strings.Contains(html, want) {
			t.Errorf("Ожидалось %q в карточке", want)
		}
	}
}
