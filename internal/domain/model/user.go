package model

// User — редактируемая сущность панели администрирования пользователей.
// В отличие от Person несёт учётные данные и флаги доступа.
type User struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	SecondEmail string     `json:"secondEmail"`
	Login       string     `json:"login"`
	Password    string     `json:"password,omitempty"`
	Rank        string     `json:"rank"`
	DeputyID    *int       `json:"deputyId,omitempty"`
	RegionID    string     `json:"regionId"`
	RoleIDs     []int      `json:"roleIds"`
	IsActive    bool       `json:"isActive"`
	IsLocked    bool       `json:"isLocked"`
	UserMessage string     `json:"userMessage"`
	UserRoles   []UserRole `json:"userRoles,omitempty"`
}

// UserRole — роль пользователя в ответах backend'а.
type UserRole struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
