package table

import (
	"fmt"
	"net/url"
	"strings"
	"testing"

	"golang.org/x/text/language"
)

type row struct {
	id    string
	name  string
	phone string
}

func newTestEngine() *Engine[row] {
	return NewEngine(Config[row]{
		Columns: []Column[row]{
			{ID: "name", Header: "name", Value: func(r row) string { return r.name }, Hideable: true},
			{ID: "phone", Header: "phone", Value: func(r row) string { return r.phone }, Hideable: true},
			{ID: "actions", Header: "actions"},
		},
		RowID:        func(r row) string { return r.id },
		FilterColumn: "name",
		PageSize:     8,
		Language:     language.BrazilianPortuguese,
	})
}

func names(rows []row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.name
	}
	return out
}

func makeRows(n int) []row {
	rows := make([]row, n)
	for i := range rows {
		rows[i] = row{id: fmt.Sprintf("id%02d", i), name: fmt.Sprintf("Paciente %02d", i)}
	}
	return rows
}

// Число отфильтрованных строк равно числу имён, содержащих подстроку без учёта регистра.
func TestCompute_FilterCountMatchesSubstring(t *testing.T) {
	rows := []row{
		{id: "1", name: "Maria Silva"},
		{id: "2", name: "MARIANA Costa"},
		{id: "3", name: "João Souza"},
		{id: "4", name: "Ana Maria"},
		{id: "5", name: "Pedro"},
	}
	e := newTestEngine()
	for _, filter := range []string{"maria", "MARIA", "a", "ão", "xyz", ""} {
		want := 0
		for _, r := range rows {
			if strings.Contains(strings.ToLower(r.name), strings.ToLower(filter)) {
				want++
			}
		}
		v := e.Compute(rows, State{Filter: filter})
		if v.FilteredCount != want {
			t.Errorf("filter %q: FilteredCount = %d, ожидали %d", filter, v.FilteredCount, want)
		}
		if v.TotalCount != len(rows) {
			t.Errorf("TotalCount = %d", v.TotalCount)
		}
	}
}

func TestCompute_SortCollation(t *testing.T) {
	rows := []row{
		{id: "1", name: "Érica"},
		{id: "2", name: "bruno"},
		{id: "3", name: "Eduardo"},
		{id: "4", name: "Álvaro"},
		{id: "5", name: "Fábio"},
	}
	e := newTestEngine()

	asc := e.Compute(rows, State{Sort: SortState{Column: "name"}})
	if got := strings.Join(names(asc.Rows), ","); got != "Álvaro,bruno,Eduardo,Érica,Fábio" {
		t.Errorf("asc = %s", got)
	}

	desc := e.Compute(rows, State{Sort: SortState{Column: "name", Desc: true}})
	if got := strings.Join(names(desc.Rows), ","); got != "Fábio,Érica,Eduardo,bruno,Álvaro" {
		t.Errorf("desc = %s", got)
	}

	// Исходный срез не меняется
	if rows[0].name != "Érica" {
		t.Error("Compute не должен менять входной срез")
	}
}

func TestCompute_Pagination(t *testing.T) {
	e := newTestEngine()
	rows := makeRows(20)

	v := e.Compute(rows, State{})
	if v.PageCount != 3 || len(v.Rows) != 8 || v.CanPrev() || !v.CanNext() {
		t.Errorf("стр.1: PageCount=%d rows=%d", v.PageCount, len(v.Rows))
	}

	v = e.Compute(rows, State{Page: 2})
	if len(v.Rows) != 4 || v.Rows[0].id != "id16" || v.CanNext() || !v.CanPrev() {
		t.Errorf("стр.3: rows=%d first=%v", len(v.Rows), v.Rows)
	}

	// Страница за пределами ограничивается последней
	v = e.Compute(rows, State{Page: 10})
	if v.State.Page != 2 {
		t.Errorf("Page = %d, ожидали 2", v.State.Page)
	}

	empty := e.Compute(nil, State{Page: 3})
	if empty.PageCount != 1 || empty.State.Page != 0 || len(empty.Rows) != 0 {
		t.Errorf("Пустая таблица: %+v", empty)
	}
}

func TestCompute_VisibilityActionsNeverHidden(t *testing.T) {
	e := newTestEngine()
	v := e.Compute(makeRows(1), State{Hidden: []string{"phone", "actions", "unknown"}})

	var ids []string
	for _, c := range v.Columns {
		ids = append(ids, c.ID)
	}
	if got := strings.Join(ids, ","); got != "name,actions" {
		t.Errorf("Видимые колонки = %s", got)
	}
	if got := strings.Join(v.State.Hidden, ","); got != "phone" {
		t.Errorf("Нормализованные скрытые = %s", got)
	}
}

func TestCompute_SelectionCountsFilteredRows(t *testing.T) {
	e := newTestEngine()
	rows := []row{{id: "1", name: "Ana"}, {id: "2", name: "Bruno"}, {id: "3", name: "Carla"}}

	v := e.Compute(rows, State{Selected: []string{"1", "2"}})
	if v.SelectedCount != 2 {
		t.Errorf("SelectedCount = %d", v.SelectedCount)
	}
	v = e.Compute(rows, State{Selected: []string{"1", "2"}, Filter: "bru"})
	if v.SelectedCount != 1 || v.FilteredCount != 1 {
		t.Errorf("С фильтром: selected=%d filtered=%d", v.SelectedCount, v.FilteredCount)
	}
}

func TestCompute_IgnoresUnsortableColumn(t *testing.T) {
	e := newTestEngine()
	v := e.Compute(makeRows(2), State{Sort: SortState{Column: "actions"}})
	if v.State.Sort.Column != "" {
		t.Errorf("Сортировка по колонке без данных должна сбрасываться: %+v", v.State.Sort)
	}
}

func TestState_RoundTripAndDefaults(t *testing.T) {
	st := State{
		Sort:       SortState{Column: "name", Desc: true},
		Filter:     "ma",
		Page:       2,
		Hidden:     []string{"phone"},
		Selected:   []string{"a", "b"},
		CreateOpen: true,
	}
	q, _ := url.ParseQuery(st.Query())
	got := ParseState(q)
	if got.Sort != st.Sort || got.Filter != st.Filter || got.Page != st.Page || !got.CreateOpen ||
		strings.Join(got.Hidden, ",") != "phone" || strings.Join(got.Selected, ",") != "a,b" {
		t.Errorf("ParseState(Query()) = %+v", got)
	}

	if (State{}).Query() != "" {
		t.Errorf("Пустое состояние кодируется как %q", (State{}).Query())
	}

	bad := ParseState(url.Values{"page": {"-3"}, "sel": {",a,,a,"}})
	if bad.Page != 0 || strings.Join(bad.Selected, ",") != "a" {
		t.Errorf("Некорректные значения: %+v", bad)
	}
}

func TestState_Transitions(t *testing.T) {
	st := State{Page: 3}

	s1 := st.ToggleSort("name")
	if s1.Sort != (SortState{Column: "name"}) || s1.Page != 0 {
		t.Errorf("1-й клик: %+v", s1)
	}
	s2 := s1.ToggleSort("name")
	if !s2.Sort.Desc {
		t.Errorf("2-й клик: %+v", s2)
	}
	if s3 := s2.ToggleSort("name"); s3.Sort.Column != "" {
		t.Errorf("3-й клик: %+v", s3)
	}
	if s := s2.ToggleSort("phone"); s.Sort != (SortState{Column: "phone"}) {
		t.Errorf("Другая колонка: %+v", s)
	}

	if s := st.WithFilter("x"); s.Filter != "x" || s.Page != 0 {
		t.Errorf("WithFilter: %+v", s)
	}

	sel := st.ToggleSelected("a").ToggleSelected("b").ToggleSelected("a")
	if strings.Join(sel.Selected, ",") != "b" {
		t.Errorf("ToggleSelected: %v", sel.Selected)
	}
	all := sel.WithSelection([]string{"a", "b", "c"}, true)
	if strings.Join(all.Selected, ",") != "b,a,c" {
		t.Errorf("WithSelection(on): %v", all.Selected)
	}
	if none := all.WithSelection([]string{"a", "c"}, false); strings.Join(none.Selected, ",") != "b" {
		t.Errorf("WithSelection(off): %v", none.Selected)
	}
	// Исходное состояние не меняется
	if strings.Join(sel.Selected, ",") != "b" {
		t.Errorf("Производные состояния делят память: %v", sel.Selected)
	}

	if h := st.ToggleHidden("phone"); !h.IsHidden("phone") || h.ToggleHidden("phone").IsHidden("phone") {
		t.Error("ToggleHidden не переключает видимость")
	}
}
