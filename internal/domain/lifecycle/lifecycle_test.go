package lifecycle

import (
	"errors"
	"reflect"
	"testing"
)

// TestParseCondition проверяет разбор состояний.
func TestParseCondition(t *testing.T) {
	tests := []struct {
		in      string
		want    Condition
		wantErr bool
	}{
		{"Внесений", ConditionFiled, false},
		{"Прийнятий до виконання", ConditionAccepted, false},
		{"Усунутий", ConditionResolved, false},
		{"Прийнятий в експлуатацію", ConditionInOperation, false},
		{"Розглянутий технічним керівником", ConditionReviewed, false},
		{"Протермінований", ConditionOverdue, false},
		{"внесений", "", true},
		{"Closed", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseCondition(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseCondition(%q): ожидалась ошибка", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseCondition(%q): неожиданная ошибка: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseCondition(%q): ожидалось %q, получено %q", tt.in, tt.want, got)
		}
	}
}

// TestParseRoles проверяет, что неизвестные роли молча пропускаются.
func TestParseRoles(t *testing.T) {
	got := ParseRoles([]string{"Диспетчер", "Оператор", "Адміністратор", ""})
	want := []Role{RoleDispatcher, RoleAdministrator}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseRoles: ожидалось %v, получено %v", want, got)
	}
}

// TestLegalNextStatuses_Matrix проверяет полную матрицу преемников
// для каждой комбинации состояния и роли.
func TestLegalNextStatuses_Matrix(t *testing.T) {
	tests := []struct {
		name    string
		current Condition
		roles   []Role
		want    []Condition
	}{
		{
			name:    "внесений, виконавець: только принятие к исполнению",
			current: ConditionFiled,
			roles:   []Role{RoleExecutor},
			want:    []Condition{ConditionAccepted},
		},
		{
			name:    "внесений, диспетчер: только протермінований",
			current: ConditionFiled,
			roles:   []Role{RoleDispatcher},
			want:    []Condition{ConditionOverdue},
		},
		{
			name:    "внесений, адміністратор: оба преемника",
			current: ConditionFiled,
			roles:   []Role{RoleAdministrator},
			want:    []Condition{ConditionAccepted, ConditionOverdue},
		},
		{
			name:    "внесений, технічний керівник: ничего",
			current: ConditionFiled,
			roles:   []Role{RoleTechnicalManager},
			want:    []Condition{},
		},
		{
			name:    "прийнятий до виконання, виконавець: усунення",
			current: ConditionAccepted,
			roles:   []Role{RoleExecutor},
			want:    []Condition{ConditionResolved},
		},
		{
			name:    "прийнятий до виконання, старший диспетчер: протермінований",
			current: ConditionAccepted,
			roles:   []Role{RoleSeniorDispatcher},
			want:    []Condition{ConditionOverdue},
		},
		{
			name:    "усунутий, виконавець: ничего",
			current: ConditionResolved,
			roles:   []Role{RoleExecutor},
			want:    []Condition{},
		},
		{
			name:    "усунутий, диспетчер: прийняття в експлуатацію",
			current: ConditionResolved,
			roles:   []Role{RoleDispatcher},
			want:    []Condition{ConditionInOperation},
		},
		{
			name:    "прийнятий в експлуатацію, старший диспетчер: розгляд",
			current: ConditionInOperation,
			roles:   []Role{RoleSeniorDispatcher},
			want:    []Condition{ConditionReviewed},
		},
		{
			name:    "розглянутий: конечное состояние",
			current: ConditionReviewed,
			roles:   []Role{RoleAdministrator},
			want:    []Condition{},
		},
		{
			name:    "протермінований: боковая ветка без выхода",
			current: ConditionOverdue,
			roles:   []Role{RoleAdministrator},
			want:    []Condition{},
		},
		{
			name:    "несколько ролей объединяют разрешения",
			current: ConditionFiled,
			roles:   []Role{RoleExecutor, RoleDispatcher},
			want:    []Condition{ConditionAccepted, ConditionOverdue},
		},
		{
			name:    "без ролей: ничего",
			current: ConditionFiled,
			roles:   nil,
			want:    []Condition{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LegalNextStatuses(tt.current, tt.roles)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("LegalNextStatuses(%q, %v): ожидалось %v, получено %v",
					tt.current, tt.roles, tt.want, got)
			}
		})
	}
}

// TestLegalNextStatuses_OverdueOnlyFromFirstTwo проверяет, что
// протермінований достижим только из первых двух состояний.
func TestLegalNextStatuses_OverdueOnlyFromFirstTwo(t *testing.T) {
	allRoles := []Role{RoleExecutor, RoleDispatcher, RoleSeniorDispatcher, RoleAdministrator, RoleTechnicalManager}
	fromOverdue := map[Condition]bool{ConditionFiled: true, ConditionAccepted: true}

	for _, c := range Conditions() {
		reachable := false
		for _, next := range LegalNextStatuses(c, allRoles) {
			if next == ConditionOverdue {
				reachable = true
			}
		}
		if reachable != fromOverdue[c] {
			t.Errorf("из %q протермінований достижим=%v, ожидалось %v", c, reachable, fromOverdue[c])
		}
	}
}

// TestTransition_Errors проверяет коды ошибок перехода.
func TestTransition_Errors(t *testing.T) {
	tests := []struct {
		name     string
		current  Condition
		target   Condition
		roles    []Role
		wantCode string
	}{
		{
			name:     "пропуск шага цепочки",
			current:  ConditionFiled,
			target:   ConditionResolved,
			roles:    []Role{RoleAdministrator},
			wantCode: "INVALID_TRANSITION",
		},
		{
			name:     "переход назад",
			current:  ConditionResolved,
			target:   ConditionAccepted,
			roles:    []Role{RoleAdministrator},
			wantCode: "INVALID_TRANSITION",
		},
		{
			name:     "выход из конечного состояния",
			current:  ConditionReviewed,
			target:   ConditionFiled,
			roles:    []Role{RoleAdministrator},
			wantCode: "INVALID_TRANSITION",
		},
		{
			name:     "недопустимое целевое состояние",
			current:  ConditionFiled,
			target:   Condition("Закритий"),
			roles:    []Role{RoleAdministrator},
			wantCode: "INVALID_TRANSITION",
		},
		{
			name:     "переход допустим, но роль не авторизована",
			current:  ConditionResolved,
			target:   ConditionInOperation,
			roles:    []Role{RoleExecutor},
			wantCode: "ROLE_NOT_AUTHORIZED",
		},
		{
			name:     "переход допустим, ролей нет",
			current:  ConditionFiled,
			target:   ConditionAccepted,
			roles:    nil,
			wantCode: "ROLE_NOT_AUTHORIZED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Transition(tt.current, tt.target, tt.roles)
			if err == nil {
				t.Fatalf("Transition(%q, %q, %v): ожидалась ошибка", tt.current, tt.target, tt.roles)
			}
			var te *TransitionError
			if !errors.As(err, &te) {
				t.Fatalf("ожидался *TransitionError, получен %T", err)
			}
			if te.Code != tt.wantCode {
				t.Errorf("ожидался код %q, получен %q", tt.wantCode, te.Code)
			}
		})
	}
}

// TestTransition_FullChain проходит основную цепочку до конца.
func TestTransition_FullChain(t *testing.T) {
	steps := []struct {
		from, to Condition
		roles    []Role
	}{
		{ConditionFiled, ConditionAccepted, []Role{RoleExecutor}},
		{ConditionAccepted, ConditionResolved, []Role{RoleExecutor}},
		{ConditionResolved, ConditionInOperation, []Role{RoleDispatcher}},
		{ConditionInOperation, ConditionReviewed, []Role{RoleSeniorDispatcher}},
	}

	for _, st := range steps {
		if err := Transition(st.from, st.to, st.roles); err != nil {
			t.Errorf("Transition(%q, %q, %v): неожиданная ошибка: %v", st.from, st.to, st.roles, err)
		}
		if !CanTransition(st.from, st.to, st.roles) {
			t.Errorf("CanTransition(%q, %q, %v): ожидалось true", st.from, st.to, st.roles)
		}
	}
}
