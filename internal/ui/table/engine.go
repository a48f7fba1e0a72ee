// Пакет table - обобщённая модель таблицы: фильтр, сортировка,
// постраничный вывод, видимость колонок и выделение строк.
// Все операции выполняются над уже загруженным списком строк.
package table

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Column описывает колонку таблицы.
type Column[T any] struct {
	// ID - идентификатор колонки в состоянии (sort, hide).
	ID string
	// Header - ключ заголовка колонки.
	Header string
	// Value - значение ячейки для сортировки и фильтра. nil - колонка без данных.
	Value func(T) string
	// Hideable - колонку можно скрыть.
	Hideable bool
}

// Sortable - колонка связана с данными.
func (c Column[T]) Sortable() bool {
	return c.Value != nil
}

// Config - настройка Engine.
type Config[T any] struct {
	Columns []Column[T]
	// RowID - стабильный идентификатор строки (для выделения).
	RowID func(T) string
	// FilterColumn - колонка, по которой работает фильтр.
	FilterColumn string
	PageSize     int
	// Language - язык сравнения строк при сортировке.
	Language language.Tag
}

// Engine вычисляет представление таблицы по строкам и состоянию.
// Engine не хранит состояние и безопасен для конкурентного использования.
type Engine[T any] struct {
	cfg Config[T]
}

// NewEngine создаёт Engine. PageSize <= 0 заменяется на 10.
func NewEngine[T any](cfg Config[T]) *Engine[T] {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}
	return &Engine[T]{cfg: cfg}
}

// PageSize - размер страницы.
func (e *Engine[T]) PageSize() int {
	return e.cfg.PageSize
}

// Columns - все колонки в порядке объявления.
func (e *Engine[T]) Columns() []Column[T] {
	return e.cfg.Columns
}

// View - вычисленное представление.
type View[T any] struct {
	// Columns - видимые колонки.
	Columns []Column[T]
	// Rows - строки текущей страницы.
	Rows []T
	// TotalCount - строк до фильтрации.
	TotalCount int
	// FilteredCount - строк после фильтрации.
	FilteredCount int
	// SelectedCount - выделенных строк среди отфильтрованных.
	SelectedCount int
	PageCount     int
	// State - нормализованное состояние (неизвестные колонки отброшены,
	// страница ограничена PageCount).
	State State
}

// CanPrev - есть ли предыдущая страница.
func (v View[T]) CanPrev() bool { return v.State.Page > 0 }

// CanNext - есть ли следующая страница.
func (v View[T]) CanNext() bool { return v.State.Page+1 < v.PageCount }

// Compute применяет фильтр, сортировку и постраничный вывод.
func (e *Engine[T]) Compute(rows []T, st State) View[T] {
	st = e.normalize(st)

	filtered := e.filter(rows, st.Filter)
	e.sort(filtered, st.Sort)

	pageCount := max((len(filtered)+e.cfg.PageSize-1)/e.cfg.PageSize, 1)
	st.Page = min(st.Page, pageCount-1)

	start := st.Page * e.cfg.PageSize
	end := min(start+e.cfg.PageSize, len(filtered))

	selected := 0
	if e.cfg.RowID != nil {
		for _, r := range filtered {
			if st.IsSelected(e.cfg.RowID(r)) {
				selected++
			}
		}
	}

	visible := make([]Column[T], 0, len(e.cfg.Columns))
	for _, c := range e.cfg.Columns {
		if !c.Hideable || !st.IsHidden(c.ID) {
			visible = append(visible, c)
		}
	}

	return View[T]{
		Columns:       visible,
		Rows:          filtered[start:end],
		TotalCount:    len(rows),
		FilteredCount: len(filtered),
		SelectedCount: selected,
		PageCount:     pageCount,
		State:         st,
	}
}

// normalize отбрасывает ссылки на несуществующие или неподходящие колонки.
func (e *Engine[T]) normalize(st State) State {
	st = st.clone()
	if c, ok := e.column(st.Sort.Column); !ok || !c.Sortable() {
		st.Sort = SortState{}
	}
	st.Hidden = slices.DeleteFunc(st.Hidden, func(id string) bool {
		c, ok := e.column(id)
		return !ok || !c.Hideable
	})
	return st
}

func (e *Engine[T]) column(id string) (Column[T], bool) {
	for _, c := range e.cfg.Columns {
		if c.ID == id {
			return c, true
		}
	}
	return Column[T]{}, false
}

// filter - регистронезависимое вхождение подстроки в значение колонки фильтра.
func (e *Engine[T]) filter(rows []T, filter string) []T {
	out := slices.Clone(rows)
	if filter == "" {
		return out
	}
	c, ok := e.column(e.cfg.FilterColumn)
	if !ok || c.Value == nil {
		return out
	}
	needle := strings.ToLower(filter)
	return slices.DeleteFunc(out, func(r T) bool {
		return !strings.Contains(strings.ToLower(c.Value(r)), needle)
	})
}

// sort - устойчивая сортировка с учётом правил языка.
// collate.Collator не потокобезопасен, поэтому создаётся на каждый вызов.
func (e *Engine[T]) sort(rows []T, s SortState) {
	c, ok := e.column(s.Column)
	if !ok || c.Value == nil {
		return
	}
	col := collate.New(e.cfg.Language, collate.IgnoreCase)
	slices.SortStableFunc(rows, func(a, b T) int {
		cmp := col.CompareString(c.Value(a), c.Value(b))
		if s.Desc {
			return -cmp
		}
		return cmp
	})
}
