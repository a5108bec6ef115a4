// Пакет query — состояние запроса списка записей журнала:
// страница, сортировка, фильтры по колонкам.
//
// Состояние кодируется в двух формах: параметры запроса к backend'у
// (BackendParams) и адресная строка браузера для shareable-ссылок
// (EncodeURL / DecodeURL). Декодирование адресной строки снисходительно:
// испорченные значения заменяются значениями по умолчанию, ошибок нет.
package query

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
)

// Filters — фильтры по колонкам списка. Закрытый набор ключей:
// значения вне перечисления игнорируются при любом декодировании.
// Пустые и состоящие из пробелов значения считаются отсутствующими.
type Filters struct {
	Condition          string `json:"Condition,omitempty"`
	Order              string `json:"Order,omitempty"`
	DateOfRegistration string `json:"DateOfRegistration,omitempty"`
	ObjectType         string `json:"ObjectType,omitempty"`
	ObjectNumber       string `json:"ObjectNumber,omitempty"`
	Place              string `json:"Place,omitempty"`
	Connection         string `json:"Connection,omitempty"`
	Description        string `json:"Description,omitempty"`
	MessageAuthor      string `json:"MessageAuthor,omitempty"`
	Responsible        string `json:"Responsible,omitempty"`
	CompletionTerm     string `json:"CompletionTerm,omitempty"`
	TechnicalManager   string `json:"TechnicalManager,omitempty"`
	DateOfAcception    string `json:"DateOfAcception,omitempty"`
	AcceptionAuthor    string `json:"AcceptionAuthor,omitempty"`
	DateOfCompletion   string `json:"DateOfCompletion,omitempty"`
	CompletionAuthor   string `json:"CompletionAuthor,omitempty"`
	ConfirmationAuthor string `json:"ConfirmationAuthor,omitempty"`
	DateOfConfirmation string `json:"DateOfConfirmation,omitempty"`
	Substation         string `json:"Substation,omitempty"`
}

// filterFields — фиксированный порядок обхода полей фильтра.
// Порядок определяет детерминированность BackendParams и EncodeURL.
func (f *Filters) filterFields() []struct {
	key   string
	value *string
} {
	return []struct {
		key   string
		value *string
	}{
		{"Condition", &f.Condition},
		{"Order", &f.Order},
		{"DateOfRegistration", &f.DateOfRegistration},
		{"ObjectType", &f.ObjectType},
		{"ObjectNumber", &f.ObjectNumber},
		{"Place", &f.Place},
		{"Connection", &f.Connection},
		{"Description", &f.Description},
		{"MessageAuthor", &f.MessageAuthor},
		{"Responsible", &f.Responsible},
		{"CompletionTerm", &f.CompletionTerm},
		{"TechnicalManager", &f.TechnicalManager},
		{"DateOfAcception", &f.DateOfAcception},
		{"AcceptionAuthor", &f.AcceptionAuthor},
		{"DateOfCompletion", &f.DateOfCompletion},
		{"CompletionAuthor", &f.CompletionAuthor},
		{"ConfirmationAuthor", &f.ConfirmationAuthor},
		{"DateOfConfirmation", &f.DateOfConfirmation},
		{"Substation", &f.Substation},
	}
}

// Clean обрезает пробелы и обнуляет пустые значения.
func (f Filters) Clean() Filters {
	for _, fld := range f.filterFields() {
		*fld.value = strings.TrimSpace(*fld.value)
	}
	return f
}

// IsZero сообщает, пуст ли набор фильтров.
func (f Filters) IsZero() bool {
	return f == Filters{}
}

// Get возвращает значение фильтра по имени колонки.
// Для неизвестного ключа возвращается пустая строка.
func (f Filters) Get(key string) string {
	for _, fld := range f.filterFields() {
		if fld.key == key {
			return *fld.value
		}
	}
	return ""
}

// Set устанавливает значение фильтра по имени колонки.
// Неизвестные ключи молча игнорируются, возвращается false.
func (f *Filters) Set(key, value string) bool {
	for _, fld := range f.filterFields() {
		if fld.key == key {
			*fld.value = value
			return true
		}
	}
	return false
}

// sortableColumns — закрытый набор колонок, допустимых в сортировке.
// Совпадает с набором колонок фильтра.
var sortableColumns = func() map[string]bool {
	cols := make(map[string]bool)
	for _, fld := range (&Filters{}).filterFields() {
		cols[fld.key] = true
	}
	return cols
}()

// IsSortable сообщает, входит ли column в набор сортируемых колонок.
func IsSortable(column string) bool {
	return sortableColumns[column]
}

// State — полное состояние запроса списка.
type State struct {
	Page         int     // Номер страницы, нумерация с 1
	SortBy       string  // Имя колонки сортировки, пусто — порядок backend'а
	Ascending    bool    // Направление сортировки
	ItemsPerPage int     // Размер страницы
	Filters      Filters // Активные фильтры
}

// New возвращает начальное состояние: первая страница,
// сортировка и фильтры не заданы.
func New(pageSize int) State {
	return State{Page: 1, ItemsPerPage: pageSize}
}

// SetPage переходит на страницу p. Значения меньше 1 приводятся к 1.
// Сортировка и фильтры сохраняются.
func (s *State) SetPage(p int) {
	if p < 1 {
		p = 1
	}
	s.Page = p
}

// SetSort устанавливает сортировку по колонке column.
// Повторный выбор той же колонки меняет направление на противоположное.
// Колонка вне сортируемого набора игнорируется, прежняя сортировка
// сохраняется. Текущая страница сохраняется.
func (s *State) SetSort(column string) {
	if !IsSortable(column) {
		return
	}
	if s.SortBy == column {
		s.Ascending = !s.Ascending
		return
	}
	s.SortBy = column
	s.Ascending = true
}

// ApplyFilters заменяет набор фильтров очищенной копией f
// и возвращает состояние на первую страницу.
func (s *State) ApplyFilters(f Filters) {
	s.Filters = f.Clean()
	s.Page = 1
}

// ResetFilters сбрасывает все фильтры и возвращает на первую страницу.
func (s *State) ResetFilters() {
	s.Filters = Filters{}
	s.Page = 1
}

// BackendParams строит параметры запроса GET /api/Journals:
// page, ItemsPerPage, при активной сортировке ColumnName и IsAscending,
// непустые фильтры россыпью под именами своих колонок.
func (s State) BackendParams() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(s.Page))
	v.Set("ItemsPerPage", strconv.Itoa(s.ItemsPerPage))
	if s.SortBy != "" {
		v.Set("ColumnName", s.SortBy)
		v.Set("IsAscending", strconv.FormatBool(s.Ascending))
	}
	for _, fld := range s.Filters.filterFields() {
		if *fld.value != "" {
			v.Set(fld.key, *fld.value)
		}
	}
	return v
}

// EncodeURL кодирует состояние в параметры адресной строки браузера:
// page, sortBy, order (asc|desc), filters (JSON). Значения по умолчанию
// опускаются, чтобы ссылка оставалась короткой.
func (s State) EncodeURL() url.Values {
	v := url.Values{}
	if s.Page > 1 {
		v.Set("page", strconv.Itoa(s.Page))
	}
	if s.SortBy != "" {
		v.Set("sortBy", s.SortBy)
		order := "asc"
		if !s.Ascending {
			order = "desc"
		}
		v.Set("order", order)
	}
	if !s.Filters.IsZero() {
		// Marshal Filters не может вернуть ошибку: только строковые поля.
		raw, _ := json.Marshal(s.Filters)
		v.Set("filters", string(raw))
	}
	return v
}

// DecodeURL восстанавливает состояние из адресной строки.
// Снисходительный разбор: нечисловая или меньшая 1 страница — первая,
// несортируемая колонка — сортировка не задана, order, отличный от desc, —
// по возрастанию, испорченный JSON фильтров или неизвестные ключи —
// пустые фильтры. Ошибок не возвращает.
func DecodeURL(v url.Values, pageSize int) State {
	s := New(pageSize)

	if p, err := strconv.Atoi(v.Get("page")); err == nil && p >= 1 {
		s.Page = p
	}

	if col := v.Get("sortBy"); IsSortable(col) {
		s.SortBy = col
		s.Ascending = v.Get("order") != "desc"
	}

	if raw := v.Get("filters"); raw != "" {
		var f Filters
		if err := json.Unmarshal([]byte(raw), &f); err == nil {
			s.Filters = f.Clean()
		}
	}

	return s
}
