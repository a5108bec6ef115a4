package lifecycle

import (
	"sort"

	"github.com/oapi-codegen/runtime/types"

	"github.com/tanyaprikhodko/journal-of-defects/internal/domain/model"
)

// EditSession — сеанс редактирования записи журнала.
//
// Отслеживает, какие поля пользователь трогал. Однажды тронутое поле
// остаётся тронутым до конца сеанса, даже если значение вернули к исходному:
// сравнение с исходным значением не выполняется. Patch содержит
// ровно тронутые поля и ничего кроме них.
type EditSession struct {
	journalID int
	touched   map[string]bool
	patch     model.JournalPatch
}

// NewEditSession создаёт сеанс редактирования записи journalID.
func NewEditSession(journalID int) *EditSession {
	return &EditSession{
		journalID: journalID,
		touched:   make(map[string]bool),
	}
}

// JournalID возвращает идентификатор редактируемой записи.
func (s *EditSession) JournalID() int {
	return s.journalID
}

// IsTouched сообщает, трогал ли пользователь поле.
func (s *EditSession) IsTouched(field string) bool {
	return s.touched[field]
}

// TouchedFields возвращает имена тронутых полей в лексикографическом порядке.
func (s *EditSession) TouchedFields() []string {
	fields := make([]string, 0, len(s.touched))
	for f := range s.touched {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// HasChanges сообщает, тронуто ли хотя бы одно поле.
func (s *EditSession) HasChanges() bool {
	return len(s.touched) > 0
}

// Patch возвращает частичное обновление из тронутых полей.
func (s *EditSession) Patch() model.JournalPatch {
	return s.patch
}

// Reset сбрасывает сеанс: все поля снова считаются нетронутыми.
func (s *EditSession) Reset() {
	s.touched = make(map[string]bool)
	s.patch = model.JournalPatch{}
}

func (s *EditSession) SetCondition(v string) {
	s.touched["condition"] = true
	s.patch.Condition = &v
}

func (s *EditSession) SetOrder(v int) {
	s.touched["order"] = true
	s.patch.Order = &v
}

func (s *EditSession) SetObjectTypeID(v int) {
	s.touched["objectTypeId"] = true
	s.patch.ObjectTypeID = &v
}

func (s *EditSession) SetObjectNumber(v int) {
	s.touched["objectNumber"] = true
	s.patch.ObjectNumber = &v
}

func (s *EditSession) SetPlaceID(v int) {
	s.touched["placeId"] = true
	s.patch.PlaceID = &v
}

func (s *EditSession) SetSubstationID(v int) {
	s.touched["substationId"] = true
	s.patch.SubstationID = &v
}

func (s *EditSession) SetSubstationRegionID(v string) {
	s.touched["substationRegionId"] = true
	s.patch.SubstationRegionID = &v
}

func (s *EditSession) SetConnection(v string) {
	s.touched["connection"] = true
	s.patch.Connection = &v
}

func (s *EditSession) SetDescription(v string) {
	s.touched["description"] = true
	s.patch.Description = &v
}

func (s *EditSession) SetMessageAuthorID(v int) {
	s.touched["messageAuthorId"] = true
	s.patch.MessageAuthorID = &v
}

func (s *EditSession) SetTechnicalManagerID(v int) {
	s.touched["technicalManagerId"] = true
	s.patch.TechnicalManagerID = &v
}

func (s *EditSession) SetResponsibleID(v int) {
	s.touched["responsibleId"] = true
	s.patch.ResponsibleID = &v
}

func (s *EditSession) SetAcceptedByID(v int) {
	s.touched["acceptedById"] = true
	s.patch.AcceptedByID = &v
}

func (s *EditSession) SetCompletedByID(v int) {
	s.touched["completedById"] = true
	s.patch.CompletedByID = &v
}

func (s *EditSession) SetConfirmedByID(v int) {
	s.touched["confirmedById"] = true
	s.patch.ConfirmedByID = &v
}

func (s *EditSession) SetRegistrationDate(v types.Date) {
	s.touched["registrationDate"] = true
	s.patch.RegistrationDate = &v
}

func (s *EditSession) SetCompletionTerm(v types.Date) {
	s.touched["completionTerm"] = true
	s.patch.CompletionTerm = &v
}

func (s *EditSession) SetAcceptionDate(v types.Date) {
	s.touched["acceptionDate"] = true
	s.patch.AcceptionDate = &v
}

func (s *EditSession) SetCompletionDate(v types.Date) {
	s.touched["completionDate"] = true
	s.patch.CompletionDate = &v
}

func (s *EditSession) SetConfirmationDate(v types.Date) {
	s.touched["confirmationDate"] = true
	s.patch.ConfirmationDate = &v
}

func (s *EditSession) SetRedirectRegionID(v string) {
	s.touched["redirectRegionId"] = true
	s.patch.RedirectRegionID = &v
}
