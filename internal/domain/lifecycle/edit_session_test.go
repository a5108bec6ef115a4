package lifecycle

import (
	"reflect"
	"testing"
)

// TestEditSession_TouchedOnceStaysTouched проверяет, что возврат поля
// к исходному значению не снимает отметку «тронуто».
func TestEditSession_TouchedOnceStaysTouched(t *testing.T) {
	s := NewEditSession(42)

	s.SetDescription("изменено")
	s.SetDescription("исходный текст")

	if !s.IsTouched("description") {
		t.Error("description: поле должно оставаться тронутым")
	}

	p := s.Patch()
	if p.Description == nil || *p.Description != "исходный текст" {
		t.Errorf("Patch().Description: ожидалось %q, получено %v", "исходный текст", p.Description)
	}
}

// TestEditSession_PatchContainsOnlyTouched проверяет, что patch содержит
// ровно тронутые поля.
func TestEditSession_PatchContainsOnlyTouched(t *testing.T) {
	s := NewEditSession(7)

	s.SetConnection("Л-110 кВ")
	s.SetResponsibleID(15)

	want := []string{"connection", "responsibleId"}
	if got := s.TouchedFields(); !reflect.DeepEqual(got, want) {
		t.Errorf("TouchedFields: ожидалось %v, получено %v", want, got)
	}

	p := s.Patch()
	if p.Connection == nil || *p.Connection != "Л-110 кВ" {
		t.Errorf("Patch().Connection: ожидалось %q, получено %v", "Л-110 кВ", p.Connection)
	}
	if p.ResponsibleID == nil || *p.ResponsibleID != 15 {
		t.Errorf("Patch().ResponsibleID: ожидалось 15, получено %v", p.ResponsibleID)
	}
	if p.Description != nil {
		t.Error("Patch().Description: нетронутое поле должно быть nil")
	}
	if p.Condition != nil {
		t.Error("Patch().Condition: нетронутое поле должно быть nil")
	}
}

// TestEditSession_Empty проверяет сеанс без изменений.
func TestEditSession_Empty(t *testing.T) {
	s := NewEditSession(1)

	if s.HasChanges() {
		t.Error("HasChanges: ожидалось false для нового сеанса")
	}
	if p := s.Patch(); !p.IsEmpty() {
		t.Errorf("Patch: ожидался пустой patch, получено %+v", p)
	}
	if fields := s.TouchedFields(); len(fields) != 0 {
		t.Errorf("TouchedFields: ожидался пустой набор, получено %v", fields)
	}
}

// TestEditSession_Reset проверяет сброс сеанса.
func TestEditSession_Reset(t *testing.T) {
	s := NewEditSession(3)
	s.SetOrder(2)
	s.SetPlaceID(9)

	s.Reset()

	if s.HasChanges() {
		t.Error("HasChanges после Reset: ожидалось false")
	}
	if p := s.Patch(); !p.IsEmpty() {
		t.Errorf("Patch после Reset: ожидался пустой patch, получено %+v", p)
	}
	if s.JournalID() != 3 {
		t.Errorf("JournalID после Reset: ожидалось 3, получено %d", s.JournalID())
	}
}
