package query

import (
	"net/url"
	"testing"
)

// TestApplyFilters_ResetsPage проверяет, что смена фильтров
// возвращает на первую страницу.
func TestApplyFilters_ResetsPage(t *testing.T) {
	s := New(10)
	s.SetPage(5)

	s.ApplyFilters(Filters{Substation: "ПС Північна"})

	if s.Page != 1 {
		t.Errorf("Page после ApplyFilters: ожидалось 1, получено %d", s.Page)
	}
	if s.Filters.Substation != "ПС Північна" {
		t.Errorf("Filters.Substation: ожидалось %q, получено %q", "ПС Північна", s.Filters.Substation)
	}
}

// TestApplyFilters_DropsEmpty проверяет, что пустые и пробельные
// значения фильтров отбрасываются.
func TestApplyFilters_DropsEmpty(t *testing.T) {
	s := New(10)
	s.ApplyFilters(Filters{
		Condition:   "Внесений",
		Description: "   ",
		Place:       "",
	})

	if s.Filters.IsZero() {
		t.Error("Filters: набор не должен быть пустым, Condition задан")
	}
	if s.Filters.Description != "" {
		t.Errorf("Description: пробельное значение должно быть отброшено, получено %q", s.Filters.Description)
	}
	params := s.BackendParams()
	if params.Has("Description") || params.Has("Place") {
		t.Error("BackendParams: пустые фильтры не должны попадать в параметры")
	}
	if params.Get("Condition") != "Внесений" {
		t.Errorf("BackendParams: Condition ожидалось %q, получено %q", "Внесений", params.Get("Condition"))
	}
}

// TestSetSort_KeepsPage проверяет, что смена сортировки
// не сбрасывает текущую страницу.
func TestSetSort_KeepsPage(t *testing.T) {
	s := New(10)
	s.SetPage(3)

	s.SetSort("DateOfRegistration")
	if s.Page != 3 {
		t.Errorf("Page после SetSort: ожидалось 3, получено %d", s.Page)
	}
	if !s.Ascending {
		t.Error("первый выбор колонки: ожидалась сортировка по возрастанию")
	}

	// Повторный выбор той же колонки меняет направление
	s.SetSort("DateOfRegistration")
	if s.Ascending {
		t.Error("повторный выбор колонки: ожидалась сортировка по убыванию")
	}
	if s.Page != 3 {
		t.Errorf("Page после повторного SetSort: ожидалось 3, получено %d", s.Page)
	}
}

// TestSetSort_UnknownColumn проверяет, что колонка вне сортируемого
// набора игнорируется и прежняя сортировка сохраняется.
func TestSetSort_UnknownColumn(t *testing.T) {
	s := New(10)
	s.SetSort("ObjectNumber")

	s.SetSort("NoSuchColumn")

	if s.SortBy != "ObjectNumber" {
		t.Errorf("SortBy: ожидалось %q, получено %q", "ObjectNumber", s.SortBy)
	}
	if !s.Ascending {
		t.Error("направление сортировки не должно меняться")
	}
	if got := s.BackendParams().Get("ColumnName"); got != "ObjectNumber" {
		t.Errorf("ColumnName: ожидалось %q, получено %q", "ObjectNumber", got)
	}

	// Повтор неизвестной колонки не переключает направление
	s.SetSort("NoSuchColumn")
	if !s.Ascending {
		t.Error("неизвестная колонка не должна переключать направление")
	}
}

// TestIsSortable проверяет границы сортируемого набора колонок.
func TestIsSortable(t *testing.T) {
	if !IsSortable("DateOfRegistration") {
		t.Error("DateOfRegistration должна быть сортируемой")
	}
	if IsSortable("") || IsSortable("Bogus") {
		t.Error("пустая и неизвестная колонки не должны быть сортируемыми")
	}
}

// TestSetPage_Clamps проверяет приведение номера страницы к допустимому.
func TestSetPage_Clamps(t *testing.T) {
	s := New(10)
	s.SetPage(0)
	if s.Page != 1 {
		t.Errorf("SetPage(0): ожидалось 1, получено %d", s.Page)
	}
	s.SetPage(-7)
	if s.Page != 1 {
		t.Errorf("SetPage(-7): ожидалось 1, получено %d", s.Page)
	}
}

// TestBackendParams проверяет форму параметров запроса к backend'у.
func TestBackendParams(t *testing.T) {
	s := New(25)
	s.SetPage(2)
	s.SetSort("Condition")
	s.SetSort("Condition") // по убыванию
	s.Filters.Set("Responsible", "Петренко")

	params := s.BackendParams()

	tests := []struct{ key, want string }{
		{"page", "2"},
		{"ItemsPerPage", "25"},
		{"ColumnName", "Condition"},
		{"IsAscending", "false"},
		{"Responsible", "Петренко"},
	}
	for _, tt := range tests {
		if got := params.Get(tt.key); got != tt.want {
			t.Errorf("BackendParams[%s]: ожидалось %q, получено %q", tt.key, tt.want, got)
		}
	}
}

// TestBackendParams_NoSort проверяет, что без сортировки
// ColumnName и IsAscending не передаются.
func TestBackendParams_NoSort(t *testing.T) {
	params := New(10).BackendParams()
	if params.Has("ColumnName") || params.Has("IsAscending") {
		t.Error("без сортировки ColumnName и IsAscending не должны передаваться")
	}
}

// TestEncodeDecodeURL проверяет круговую кодировку адресной строки.
func TestEncodeDecodeURL(t *testing.T) {
	s := New(10)
	s.SetPage(4)
	s.SetSort("Substation")
	s.ApplyFilters(Filters{Condition: "Усунутий", ObjectNumber: "12"})
	s.SetPage(4)

	got := DecodeURL(s.EncodeURL(), 10)

	if got.Page != 4 {
		t.Errorf("Page: ожидалось 4, получено %d", got.Page)
	}
	if got.SortBy != "Substation" || !got.Ascending {
		t.Errorf("сортировка: ожидалось Substation asc, получено %q asc=%v", got.SortBy, got.Ascending)
	}
	if got.Filters.Condition != "Усунутий" || got.Filters.ObjectNumber != "12" {
		t.Errorf("фильтры после декодирования: получено %+v", got.Filters)
	}
}

// TestEncodeURL_OmitsDefaults проверяет, что значения по умолчанию
// не попадают в адресную строку.
func TestEncodeURL_OmitsDefaults(t *testing.T) {
	v := New(10).EncodeURL()
	if len(v) != 0 {
		t.Errorf("EncodeURL для начального состояния: ожидалась пустая строка, получено %v", v)
	}
}

// TestDecodeURL_Lenient проверяет снисходительный разбор испорченных значений.
func TestDecodeURL_Lenient(t *testing.T) {
	tests := []struct {
		name   string
		values url.Values
		check  func(t *testing.T, s State)
	}{
		{
			name:   "нечисловая страница",
			values: url.Values{"page": {"abc"}},
			check: func(t *testing.T, s State) {
				if s.Page != 1 {
					t.Errorf("Page: ожидалось 1, получено %d", s.Page)
				}
			},
		},
		{
			name:   "нулевая страница",
			values: url.Values{"page": {"0"}},
			check: func(t *testing.T, s State) {
				if s.Page != 1 {
					t.Errorf("Page: ожидалось 1, получено %d", s.Page)
				}
			},
		},
		{
			name:   "неизвестный order считается asc",
			values: url.Values{"sortBy": {"Place"}, "order": {"descending"}},
			check: func(t *testing.T, s State) {
				if !s.Ascending {
					t.Error("order≠desc должен давать сортировку по возрастанию")
				}
			},
		},
		{
			name:   "несортируемая колонка отбрасывается",
			values: url.Values{"sortBy": {"Bogus"}, "order": {"desc"}},
			check: func(t *testing.T, s State) {
				if s.SortBy != "" {
					t.Errorf("SortBy: сортировка должна остаться незаданной, получено %q", s.SortBy)
				}
				if s.BackendParams().Has("ColumnName") {
					t.Error("ColumnName не должен попадать в параметры backend'а")
				}
			},
		},
		{
			name:   "испорченный JSON фильтров",
			values: url.Values{"filters": {"{Condition:"}},
			check: func(t *testing.T, s State) {
				if !s.Filters.IsZero() {
					t.Errorf("испорченные фильтры должны давать пустой набор, получено %+v", s.Filters)
				}
			},
		},
		{
			name:   "неизвестные ключи фильтров игнорируются",
			values: url.Values{"filters": {`{"Unknown":"x","Place":"КРУ-10"}`}},
			check: func(t *testing.T, s State) {
				if s.Filters.Place != "КРУ-10" {
					t.Errorf("Place: ожидалось %q, получено %q", "КРУ-10", s.Filters.Place)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, DecodeURL(tt.values, 10))
		})
	}
}

// TestFilters_SetUnknownKey проверяет игнорирование неизвестных колонок.
func TestFilters_SetUnknownKey(t *testing.T) {
	var f Filters
	if f.Set("Unknown", "x") {
		t.Error("Set неизвестного ключа должен вернуть false")
	}
	if !f.IsZero() {
		t.Errorf("набор должен остаться пустым, получено %+v", f)
	}
	if f.Get("Unknown") != "" {
		t.Error("Get неизвестного ключа должен вернуть пустую строку")
	}
}
