package model

// LookupItem — элемент справочника (типы объектов, места, РЕМ, роли).
// Backend отдаёт справочники в единой форме {id, name}.
type LookupItem struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Region — РЕМ (регион): организационная единица, которой принадлежат
// и пользователи, и записи журнала. Идентификатор строковый.
type Region struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Substation — группа подстанций одного РЕМ
// (ответ GET /api/Lookups/substations).
type Substation struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Substations []LookupItem `json:"substations"`
}
