package table

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// Параметры состояния таблицы в query string.
const (
	ParamSort   = "sort"
	ParamDesc   = "desc"
	ParamFilter = "q"
	ParamPage   = "page"
	ParamHidden = "hide"
	ParamSel    = "sel"
	ParamNew    = "new"
)

// SortState - сортировка по одной колонке.
type SortState struct {
	Column string
	Desc   bool
}

// State - локальное состояние представления. Не хранится на сервере:
// передаётся в каждом запросе через query string.
type State struct {
	Sort SortState
	// Filter - подстрока поиска по колонке фильтра.
	Filter string
	// Page - номер страницы, с нуля.
	Page     int
	Hidden   []string
	Selected []string
	// CreateOpen - открыт ли popover создания записи.
	CreateOpen bool
}

// ParseState читает состояние из query string. Некорректные значения
// заменяются значениями по умолчанию.
func ParseState(q url.Values) State {
	st := State{
		Sort: SortState{
			Column: q.Get(ParamSort),
			Desc:   q.Get(ParamDesc) == "1",
		},
		Filter:     q.Get(ParamFilter),
		Hidden:     splitList(q.Get(ParamHidden)),
		Selected:   splitList(q.Get(ParamSel)),
		CreateOpen: q.Get(ParamNew) == "1",
	}
	if p, err := strconv.Atoi(q.Get(ParamPage)); err == nil && p > 1 {
		st.Page = p - 1
	}
	return st
}

// Values кодирует состояние в query string. Значения по умолчанию не пишутся.
func (s State) Values() url.Values {
	q := url.Values{}
	if s.Sort.Column != "" {
		q.Set(ParamSort, s.Sort.Column)
		if s.Sort.Desc {
			q.Set(ParamDesc, "1")
		}
	}
	if s.Filter != "" {
		q.Set(ParamFilter, s.Filter)
	}
	if s.Page > 0 {
		q.Set(ParamPage, strconv.Itoa(s.Page+1))
	}
	if len(s.Hidden) > 0 {
		q.Set(ParamHidden, strings.Join(s.Hidden, ","))
	}
	if len(s.Selected) > 0 {
		q.Set(ParamSel, strings.Join(s.Selected, ","))
	}
	if s.CreateOpen {
		q.Set(ParamNew, "1")
	}
	return q
}

// Query - Values().Encode().
func (s State) Query() string {
	return s.Values().Encode()
}

// clone копирует срезы, чтобы производные состояния не делили память.
func (s State) clone() State {
	s.Hidden = slices.Clone(s.Hidden)
	s.Selected = slices.Clone(s.Selected)
	return s
}

// ToggleSort: нет сортировки → по возрастанию → по убыванию → нет сортировки.
// Смена сортировки возвращает на первую страницу.
func (s State) ToggleSort(column string) State {
	n := s.clone()
	switch {
	case n.Sort.Column != column:
		n.Sort = SortState{Column: column}
	case !n.Sort.Desc:
		n.Sort.Desc = true
	default:
		n.Sort = SortState{}
	}
	n.Page = 0
	return n
}

// WithFilter меняет фильтр и возвращает на первую страницу.
func (s State) WithFilter(filter string) State {
	n := s.clone()
	n.Filter = filter
	n.Page = 0
	return n
}

// WithPage переходит на страницу (с нуля).
func (s State) WithPage(page int) State {
	n := s.clone()
	n.Page = max(page, 0)
	return n
}

// ToggleHidden скрывает или показывает колонку.
func (s State) ToggleHidden(column string) State {
	n := s.clone()
	n.Hidden = toggle(n.Hidden, column)
	return n
}

// ToggleSelected выделяет строку или снимает выделение.
func (s State) ToggleSelected(rowID string) State {
	n := s.clone()
	n.Selected = toggle(n.Selected, rowID)
	return n
}

// WithSelection выделяет (on) или снимает выделение с набора строк.
func (s State) WithSelection(rowIDs []string, on bool) State {
	n := s.clone()
	for _, id := range rowIDs {
		has := slices.Contains(n.Selected, id)
		if on && !has {
			n.Selected = append(n.Selected, id)
		}
		if !on && has {
			n.Selected = slices.DeleteFunc(n.Selected, func(v string) bool { return v == id })
		}
	}
	return n
}

// WithCreateOpen открывает или закрывает popover создания.
func (s State) WithCreateOpen(open bool) State {
	n := s.clone()
	n.CreateOpen = open
	return n
}

// IsHidden - скрыта ли колонка.
func (s State) IsHidden(column string) bool {
	return slices.Contains(s.Hidden, column)
}

// IsSelected - выделена ли строка.
func (s State) IsSelected(rowID string) bool {
	return slices.Contains(s.Selected, rowID)
}

func toggle(list []string, v string) []string {
	if slices.Contains(list, v) {
		return slices.DeleteFunc(list, func(x string) bool { return x == v })
	}
	return append(list, v)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" && !slices.Contains(out, part) {
			out = append(out, part)
		}
	}
	return out
}
