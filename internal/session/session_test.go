package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestManager_RoundTrip проверяет шифрование и дешифрование сессии.
func TestManager_RoundTrip(t *testing.T) {
	m, err := NewManager("ключ-конфигурации", false)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	data := &Data{
		AccessToken:  "at-1",
		RefreshToken: "rt-1",
		ExpiresAt:    time.Now().Add(time.Hour).Unix(),
		Principal: &Principal{
			ID:    7,
			Name:  "Петренко Іван",
			Login: "petrenko",
			Roles: []string{"Диспетчер"},
		},
	}

	encrypted, err := m.Encrypt(data)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	got, err := m.Decrypt(encrypted)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if got.AccessToken != "at-1" || got.Principal.Login != "petrenko" {
		t.Errorf("после дешифрования: получено %+v", got)
	}
	if len(got.Principal.Roles) != 1 || got.Principal.Roles[0] != "Диспетчер" {
		t.Errorf("роли: получено %v", got.Principal.Roles)
	}
}

// TestManager_DecryptTampered проверяет отказ на испорченных данных.
func TestManager_DecryptTampered(t *testing.T) {
	m, _ := NewManager("key", false)

	encrypted, _ := m.Encrypt(&Data{AccessToken: "at"})
	tampered := "A" + encrypted[1:]

	if _, err := m.Decrypt(tampered); err == nil {
		t.Error("Decrypt испорченных данных: ожидалась ошибка")
	}
}

// TestManager_DifferentKeys проверяет, что чужим ключом сессию не прочитать.
func TestManager_DifferentKeys(t *testing.T) {
	m1, _ := NewManager("key-one", false)
	m2, _ := NewManager("key-two", false)

	encrypted, _ := m1.Encrypt(&Data{AccessToken: "at"})
	if _, err := m2.Decrypt(encrypted); err == nil {
		t.Error("Decrypt чужим ключом: ожидалась ошибка")
	}
}

// TestManager_FromRequest проверяет извлечение сессии из cookie.
func TestManager_FromRequest(t *testing.T) {
	m, _ := NewManager("key", false)

	// Без cookie — nil без ошибки
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	data, err := m.FromRequest(r)
	if err != nil || data != nil {
		t.Errorf("без cookie: ожидалось nil, nil, получено %v, %v", data, err)
	}

	// Полный цикл через SetCookie
	w := httptest.NewRecorder()
	if err := m.SetCookie(w, &Data{AccessToken: "at-2", ExpiresAt: time.Now().Add(time.Hour).Unix()}); err != nil {
		t.Fatalf("SetCookie: %v", err)
	}

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}

	data, err = m.FromRequest(r)
	if err != nil {
		t.Fatalf("FromRequest: %v", err)
	}
	if data == nil || data.AccessToken != "at-2" {
		t.Errorf("сессия из cookie: получено %+v", data)
	}
}

// TestData_IsExpired проверяет буфер в 30 секунд до истечения.
func TestData_IsExpired(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt int64
		want      bool
	}{
		{"истёк час назад", time.Now().Add(-time.Hour).Unix(), true},
		{"истекает через 10 секунд", time.Now().Add(10 * time.Second).Unix(), true},
		{"истекает через 5 минут", time.Now().Add(5 * time.Minute).Unix(), false},
	}

	for _, tt := range tests {
		d := &Data{ExpiresAt: tt.expiresAt}
		if got := d.IsExpired(); got != tt.want {
			t.Errorf("%s: IsExpired() = %v, ожидалось %v", tt.name, got, tt.want)
		}
	}
}
