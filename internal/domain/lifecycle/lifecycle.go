// Пакет lifecycle — жизненный цикл записи журнала дефектов.
//
// Основная цепочка состояний:
//
//	Внесений → Прийнятий до виконання → Усунутий →
//	Прийнятий в експлуатацію → Розглянутий технічним керівником
//
// Боковая ветка: Протермінований — достижим только из первых двух состояний
// (пропущенный срок усунення), из состояний 3-5 недостижим.
//
// Переход допустим, только если целевое состояние входит в фиксированный
// набор преемников текущего И роль действующего пользователя входит
// в набор ролей, авторизованных для этого конкретного перехода.
package lifecycle

import "fmt"

// Condition — состояние записи журнала дефектов.
type Condition string

const (
	// ConditionFiled — «Внесений», начальное состояние.
	ConditionFiled Condition = "Внесений"
	// ConditionAccepted — «Прийнятий до виконання».
	ConditionAccepted Condition = "Прийнятий до виконання"
	// ConditionResolved — «Усунутий».
	ConditionResolved Condition = "Усунутий"
	// ConditionInOperation — «Прийнятий в експлуатацію».
	ConditionInOperation Condition = "Прийнятий в експлуатацію"
	// ConditionReviewed — «Розглянутий технічним керівником», конечное состояние.
	ConditionReviewed Condition = "Розглянутий технічним керівником"
	// ConditionOverdue — «Протермінований», боковая ветка (пропущенный срок).
	ConditionOverdue Condition = "Протермінований"
)

// Role — роль пользователя в закрытом перечислении.
// Членство проверяется по таблице, а не сравнением подстрок.
type Role string

const (
	RoleExecutor         Role = "Виконавець"
	RoleDispatcher       Role = "Диспетчер"
	RoleSeniorDispatcher Role = "Старший Диспетчер"
	RoleAdministrator    Role = "Адміністратор"
	RoleTechnicalManager Role = "Технічний керівник"
)

// allConditions — все состояния в порядке штатного продвижения.
var allConditions = []Condition{
	ConditionFiled,
	ConditionAccepted,
	ConditionResolved,
	ConditionInOperation,
	ConditionReviewed,
	ConditionOverdue,
}

// allRoles — все роли закрытого перечисления.
var allRoles = map[Role]bool{
	RoleExecutor:         true,
	RoleDispatcher:       true,
	RoleSeniorDispatcher: true,
	RoleAdministrator:    true,
	RoleTechnicalManager: true,
}

// validTransitions — матрица допустимых переходов.
// Ключ — текущее состояние, значение — упорядоченный набор преемников.
var validTransitions = map[Condition][]Condition{
	ConditionFiled:       {ConditionAccepted, ConditionOverdue},
	ConditionAccepted:    {ConditionResolved, ConditionOverdue},
	ConditionResolved:    {ConditionInOperation},
	ConditionInOperation: {ConditionReviewed},
	ConditionReviewed:    {}, // Конечное состояние
	ConditionOverdue:     {}, // Боковая ветка — переходы запрещены
}

// transition — пара (из, в) для ключа таблицы авторизации.
type transition struct {
	from, to Condition
}

// transitionRoles — роли, авторизованные для каждого конкретного перехода.
var transitionRoles = map[transition]map[Role]bool{
	{ConditionFiled, ConditionAccepted}:       {RoleExecutor: true, RoleAdministrator: true},
	{ConditionAccepted, ConditionResolved}:    {RoleExecutor: true, RoleAdministrator: true},
	{ConditionResolved, ConditionInOperation}: {RoleDispatcher: true, RoleSeniorDispatcher: true, RoleAdministrator: true},
	{ConditionInOperation, ConditionReviewed}: {RoleDispatcher: true, RoleSeniorDispatcher: true, RoleAdministrator: true},
	{ConditionFiled, ConditionOverdue}:        {RoleDispatcher: true, RoleSeniorDispatcher: true, RoleAdministrator: true},
	{ConditionAccepted, ConditionOverdue}:     {RoleDispatcher: true, RoleSeniorDispatcher: true, RoleAdministrator: true},
}

// init валидирует согласованность таблиц при старте:
// каждый допустимый переход обязан иметь непустой набор ролей,
// и наоборот — таблица ролей не должна содержать недопустимых переходов.
func init() {
	for from, tos := range validTransitions {
		for _, to := range tos {
			roles, ok := transitionRoles[transition{from, to}]
			if !ok || len(roles) == 0 {
				panic(fmt.Sprintf("lifecycle: переход %s → %s без набора ролей", from, to))
			}
		}
	}
	for tr := range transitionRoles {
		if !containsCondition(validTransitions[tr.from], tr.to) {
			panic(fmt.Sprintf("lifecycle: роли заданы для недопустимого перехода %s → %s", tr.from, tr.to))
		}
	}
}

// Conditions возвращает все состояния в порядке штатного продвижения.
func Conditions() []Condition {
	out := make([]Condition, len(allConditions))
	copy(out, allConditions)
	return out
}

// IsValidCondition проверяет, является ли строка допустимым состоянием.
func IsValidCondition(c Condition) bool {
	switch c {
	case ConditionFiled, ConditionAccepted, ConditionResolved,
		ConditionInOperation, ConditionReviewed, ConditionOverdue:
		return true
	default:
		return false
	}
}

// ParseCondition преобразует строку в Condition.
// Возвращает ошибку для недопустимых значений.
func ParseCondition(s string) (Condition, error) {
	c := Condition(s)
	if !IsValidCondition(c) {
		return "", fmt.Errorf("недопустимое состояние записи: %q", s)
	}
	return c, nil
}

// ParseRole преобразует строку в Role.
// Возвращает ошибку для значений вне закрытого перечисления.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !allRoles[r] {
		return "", fmt.Errorf("недопустимая роль: %q", s)
	}
	return r, nil
}

// ParseRoles преобразует набор строк в роли, молча пропуская неизвестные.
// Backend может со временем добавлять роли, не участвующие в переходах.
func ParseRoles(ss []string) []Role {
	roles := make([]Role, 0, len(ss))
	for _, s := range ss {
		if r, err := ParseRole(s); err == nil {
			roles = append(roles, r)
		}
	}
	return roles
}

// LegalNextStatuses возвращает состояния, в которые пользователь с указанными
// ролями вправе перевести запись из current: фиксированный набор преемников,
// пересечённый с авторизацией каждого конкретного перехода.
// Порядок — как в validTransitions. Для неизвестного состояния — пустой набор.
func LegalNextStatuses(current Condition, roles []Role) []Condition {
	successors := validTransitions[current]
	out := make([]Condition, 0, len(successors))
	for _, next := range successors {
		if roleAuthorized(transition{current, next}, roles) {
			out = append(out, next)
		}
	}
	return out
}

// CanTransition проверяет допустимость перехода current → target
// для пользователя с указанными ролями.
func CanTransition(current, target Condition, roles []Role) bool {
	if !containsCondition(validTransitions[current], target) {
		return false
	}
	return roleAuthorized(transition{current, target}, roles)
}

// Transition валидирует переход current → target.
//
// Ошибки (*TransitionError):
//   - INVALID_TRANSITION — целевое состояние не входит в набор преемников
//   - ROLE_NOT_AUTHORIZED — ни одна из ролей не авторизована для перехода
func Transition(current, target Condition, roles []Role) error {
	if !IsValidCondition(target) {
		return &TransitionError{
			Code:    "INVALID_TRANSITION",
			Message: fmt.Sprintf("недопустимое целевое состояние: %q", target),
		}
	}

	if !containsCondition(validTransitions[current], target) {
		return &TransitionError{
			Code:    "INVALID_TRANSITION",
			Message: fmt.Sprintf("переход %s → %s недопустим", current, target),
		}
	}

	if !roleAuthorized(transition{current, target}, roles) {
		return &TransitionError{
			Code:    "ROLE_NOT_AUTHORIZED",
			Message: fmt.Sprintf("переход %s → %s не разрешён для ролей пользователя", current, target),
		}
	}

	return nil
}

// TransitionError — ошибка перехода между состояниями.
type TransitionError struct {
	Code    string // Машиночитаемый код (INVALID_TRANSITION, ROLE_NOT_AUTHORIZED)
	Message string // Человекочитаемое описание
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// roleAuthorized проверяет, авторизована ли хотя бы одна роль для перехода.
func roleAuthorized(tr transition, roles []Role) bool {
	authorized, ok := transitionRoles[tr]
	if !ok {
		return false
	}
	for _, r := range roles {
		if authorized[r] {
			return true
		}
	}
	return false
}

// containsCondition проверяет вхождение состояния в срез.
func containsCondition(cs []Condition, c Condition) bool {
	for _, x := range cs {
		if x == c {
			return true
		}
	}
	return false
}
