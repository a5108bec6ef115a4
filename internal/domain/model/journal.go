// Пакет model — доменные модели журнала дефектов.
// Формы JSON соответствуют REST API backend'а (camelCase).
package model

import (
	"github.com/oapi-codegen/runtime/types"
)

// Person — ссылка на пользователя в полях записи журнала.
// Никогда не встраивается как владеемый объект: backend хранит только id,
// отображаемые поля приходят в ответах на чтение.
type Person struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Login string `json:"login"`
	Rank  string `json:"rank"`
}

// Journal — запись журнала дефектов (ответ GET /api/Journals/{id}).
// Поля-акторы и даты заполняются по мере продвижения записи по жизненному циклу.
type Journal struct {
	ID        int    `json:"id"`
	Condition string `json:"condition"`
	Order     *int   `json:"order,omitempty"`

	// Классификация дефекта
	ObjectType       string `json:"objectType"`
	ObjectTypeID     *int   `json:"objectTypeId,omitempty"`
	ObjectNumber     *int   `json:"objectNumber,omitempty"`
	Place            string `json:"place"`
	PlaceID          *int   `json:"placeId,omitempty"`
	Substation       string `json:"substation"`
	SubstationID     *int   `json:"substationId,omitempty"`
	SubstationRegion string `json:"substationRegion"`
	// Идентификатор РЕМ (региона) — backend отдаёт строкой
	SubstationRegionID string `json:"substationRegionId"`
	Connection         string `json:"connection"`
	Description        string `json:"description"`

	// Акторы жизненного цикла (nil до наступления соответствующего шага)
	MessageAuthor    *Person `json:"messageAuthor,omitempty"`
	TechnicalManager *Person `json:"technicalManager,omitempty"`
	Responsible      *Person `json:"responsible,omitempty"`
	AcceptedBy       *Person `json:"acceptedBy,omitempty"`
	CompletedBy      *Person `json:"completedBy,omitempty"`
	ConfirmedBy      *Person `json:"confirmedBy,omitempty"`

	// Календарные даты жизненного цикла (nil до наступления шага)
	RegistrationDate *types.Date `json:"registrationDate,omitempty"`
	CompletionTerm   *types.Date `json:"completionTerm,omitempty"`
	AcceptionDate    *types.Date `json:"acceptionDate,omitempty"`
	CompletionDate   *types.Date `json:"completionDate,omitempty"`
	ConfirmationDate *types.Date `json:"confirmationDate,omitempty"`

	// Целевой РЕМ при передаче записи в другое подразделение
	RedirectRegionID *string `json:"redirectRegionId,omitempty"`
}

// JournalPatch — частичное обновление записи журнала.
// Каждое поле — указатель: nil означает «поле не тронуто, не отправлять».
// Ссылочные поля передают id, а не отображаемый объект.
type JournalPatch struct {
	Condition          *string     `json:"condition,omitempty"`
	Order              *int        `json:"order,omitempty"`
	ObjectTypeID       *int        `json:"objectTypeId,omitempty"`
	ObjectNumber       *int        `json:"objectNumber,omitempty"`
	PlaceID            *int        `json:"placeId,omitempty"`
	SubstationID       *int        `json:"substationId,omitempty"`
	SubstationRegionID *string     `json:"substationRegionId,omitempty"`
	Connection         *string     `json:"connection,omitempty"`
	Description        *string     `json:"description,omitempty"`
	MessageAuthorID    *int        `json:"messageAuthorId,omitempty"`
	TechnicalManagerID *int        `json:"technicalManagerId,omitempty"`
	ResponsibleID      *int        `json:"responsibleId,omitempty"`
	AcceptedByID       *int        `json:"acceptedById,omitempty"`
	CompletedByID      *int        `json:"completedById,omitempty"`
	ConfirmedByID      *int        `json:"confirmedById,omitempty"`
	RegistrationDate   *types.Date `json:"registrationDate,omitempty"`
	CompletionTerm     *types.Date `json:"completionTerm,omitempty"`
	AcceptionDate      *types.Date `json:"acceptionDate,omitempty"`
	CompletionDate     *types.Date `json:"completionDate,omitempty"`
	ConfirmationDate   *types.Date `json:"confirmationDate,omitempty"`
	RedirectRegionID   *string     `json:"redirectRegionId,omitempty"`
}

// IsEmpty сообщает, не содержит ли patch ни одного поля.
func (p *JournalPatch) IsEmpty() bool {
	return *p == JournalPatch{}
}
