package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tanyaprikhodko/journal-of-defects/internal/domain/model"
	"github.com/tanyaprikhodko/journal-of-defects/internal/jmclient"
)

func testUserService(t *testing.T, handler http.HandlerFunc) *UserService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewUserService(jmclient.New(srv.URL, 5*time.Second, testLogger()), testLogger())
}

// TestCreateUser_Validation проверяет обязательные поля нового пользователя.
func TestCreateUser_Validation(t *testing.T) {
	s := testUserService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("backend не должен вызываться")
	})
	ctx := context.Background()

	tests := []struct {
		name string
		user model.User
		want string
	}{
		{
			name: "без логина",
			user: model.User{Name: "Іванов", Password: "p", RegionID: "1"},
			want: "логин",
		},
		{
			name: "без пароля",
			user: model.User{Name: "Іванов", Login: "ivanov", RegionID: "1"},
			want: "пароль",
		},
		{
			name: "без РЕМ",
			user: model.User{Name: "Іванов", Login: "ivanov", Password: "p"},
			want: "РЕМ",
		},
		{
			name: "некорректный email",
			user: model.User{Name: "Іванов", Login: "ivanov", Password: "p", RegionID: "1", Email: "не-адреса"},
			want: "email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Create(ctx, "t", tt.user)
			if !IsValidation(err) {
				t.Fatalf("ожидалась ошибка проверки, получено %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("текст ошибки %q должен упоминать %q", err.Error(), tt.want)
			}
		})
	}
}

// TestUpdateUser_PasswordOptional проверяет, что при обновлении
// пустой пароль допустим.
func TestUpdateUser_PasswordOptional(t *testing.T) {
	s := testUserService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": 5, "login": "ivanov"}`))
	})

	u := model.User{Name: "Іванов", Login: "ivanov", RegionID: "1"}
	updated, err := s.Update(context.Background(), "t", 5, u)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if updated.ID != 5 {
		t.Errorf("ID: получено %d", updated.ID)
	}
}
