package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tanyaprikhodko/journal-of-defects/internal/config"
	"github.com/tanyaprikhodko/journal-of-defects/internal/jmclient"
	"github.com/tanyaprikhodko/journal-of-defects/internal/service"
	"github.com/tanyaprikhodko/journal-of-defects/internal/session"
	"github.com/tanyaprikhodko/journal-of-defects/internal/ui/handlers"
	"github.com/tanyaprikhodko/journal-of-defects/internal/ui/i18n"
	uimiddleware "github.com/tanyaprikhodko/journal-of-defects/internal/ui/middleware"
)

// signAccessToken собирает access token с claims в формате backend'а.
func signAccessToken(t *testing.T) string {
	t.Helper()
	claims := jwt.MapClaims{
		"http://schemas.xmlsoap.org/ws/2005/05/identity/claims/nameidentifier": "7",
		"http://schemas.xmlsoap.org/ws/2005/05/identity/claims/name":           "Тестовий Користувач",
		"http://schemas.microsoft.com/ws/2008/06/identity/claims/role":         []any{"Диспетчер"},
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("подпись токена: %v", err)
	}
	return s
}

// newFakeBackend поднимает заглушку REST API журнала.
func newFakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/Authentication/login", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Login    string `json:"login"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{"errors": []string{"невірний пароль"}})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"accessToken":  signAccessToken(t),
			"refreshToken": "refresh-1",
		})
	})

	mux.HandleFunc("GET /api/Journals", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"journals": []map[string]any{
				{"id": 1, "condition": "Внесений", "description": "Пошкоджена ізоляція"},
			},
			"totalPages":  1,
			"currentPage": 1,
		})
	})

	return httptest.NewServer(mux)
}

// newTestServer собирает сервер поверх заглушки backend'а.
func newTestServer(t *testing.T, backendURL string) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

	bundle := i18n.Init(logger)
	if err := i18n.LoadFromEmbedFS(bundle, logger); err != nil {
		t.Fatalf("загрузка переводов: %v", err)
	}

	sessions, err := session.NewManager("", false)
	if err != nil {
		t.Fatalf("менеджер сессий: %v", err)
	}

	client := jmclient.New(backendURL, 5*time.Second, logger)
	journalSvc := service.NewJournalService(client, 10, logger)
	commentSvc := service.NewCommentService(client, logger)
	lookupSvc := service.NewLookupService(client, 16, time.Minute, logger)
	userSvc := service.NewUserService(client, logger)

	h := Handlers{
		Auth:     handlers.NewAuthHandler(client, sessions, journalSvc, logger),
		Journals: handlers.NewJournalHandler(journalSvc, lookupSvc, userSvc, 10, logger),
		Comments: handlers.NewCommentHandler(commentSvc, logger),
		Users:    handlers.NewUserHandler(userSvc, lookupSvc, logger),
		Health:   handlers.NewHealthHandler(nil, nil),
	}

	cfg := &config.Config{Port: 8080, ShutdownTimeout: time.Second}
	sessionAuth := uimiddleware.NewSessionAuth(sessions, client, nil, logger)
	return New(cfg, logger, h, sessionAuth).Handler()
}

// TestLoginFlow проверяет вход, установку cookie и доступ к списку записей.
func TestLoginFlow(t *testing.T) {
	backend := newFakeBackend(t)
	defer backend.Close()
	srv := newTestServer(t, backend.URL)

	form := url.Values{"login": {"dispatcher"}, "password": {"secret"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("код ответа: ожидалось 302, получено %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/journals" {
		t.Errorf("Location: ожидалось /journals, получено %q", loc)
	}

	cookies := rec.Result().Cookies()
	var sessionCookie *http.Cookie
	for _, c := range cookies {
		if c.Name == session.CookieName {
			sessionCookie = c
		}
	}
	if sessionCookie == nil {
		t.Fatal("сессионная cookie не установлена")
	}

	req = httptest.NewRequest(http.MethodGet, "/journals", nil)
	req.AddCookie(sessionCookie)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("код ответа: ожидалось 200, получено %d", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, "Пошкоджена ізоляція") {
		t.Error("в списке нет записи журнала")
	}
}

// TestLoginFlow_BadPassword проверяет повторный показ формы входа.
func TestLoginFlow_BadPassword(t *testing.T) {
	backend := newFakeBackend(t)
	defer backend.Close()
	srv := newTestServer(t, backend.URL)

	form := url.Values{"login": {"dispatcher"}, "password": {"wrong"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("код ответа: ожидалось 401, получено %d", rec.Code)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("cookie не должна устанавливаться при неудачном входе")
	}
}

// TestUnauthenticatedRedirect проверяет redirect на /login без сессии.
func TestUnauthenticatedRedirect(t *testing.T) {
	backend := newFakeBackend(t)
	defer backend.Close()
	srv := newTestServer(t, backend.URL)

	req := httptest.NewRequest(http.MethodGet, "/journals", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("код ответа: ожидалось 302, получено %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location: ожидалось /login, получено %q", loc)
	}
}

// TestUnauthenticatedHTMX проверяет HX-Redirect вместо 302 для HTMX-запросов.
func TestUnauthenticatedHTMX(t *testing.T) {
	backend := newFakeBackend(t)
	defer backend.Close()
	srv := newTestServer(t, backend.URL)

	req := httptest.NewRequest(http.MethodGet, "/journals/partial?page=2", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("код ответа: ожидалось 401, получено %d", rec.Code)
	}
	if hx := rec.Header().Get("HX-Redirect"); hx != "/login" {
		t.Errorf("HX-Redirect: ожидалось /login, получено %q", hx)
	}
}

// TestHealthLive проверяет liveness probe без аутентификации.
func TestHealthLive(t *testing.T) {
	backend := newFakeBackend(t)
	defer backend.Close()
	srv := newTestServer(t, backend.URL)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("код ответа: ожидалось 200, получено %d", rec.Code)
	}
	var resp struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("разбор ответа: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("status: ожидалось ok, получено %q", resp.Status)
	}
}

// TestSetLanguage проверяет установку cookie языка.
func TestSetLanguage(t *testing.T) {
	backend := newFakeBackend(t)
	defer backend.Close()
	srv := newTestServer(t, backend.URL)

	// Маршрут за middleware сессии, сначала входим
	loginForm := url.Values{"login": {"dispatcher"}, "password": {"secret"}}
	loginReq := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(loginForm.Encode()))
	loginReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	loginRec := httptest.NewRecorder()
	srv.ServeHTTP(loginRec, loginReq)

	form := url.Values{"lang": {"en"}}
	req := httptest.NewRequest(http.MethodPost, "/set-language", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range loginRec.Result().Cookies() {
		if c.Name == session.CookieName {
			req.AddCookie(c)
		}
	}

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("код ответа: ожидалось 303, получено %d", rec.Code)
	}
	var langCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == i18n.LangCookieName {
			langCookie = c
		}
	}
	if langCookie == nil {
		t.Fatal("cookie языка не установлена")
	}
	if langCookie.Value != "en" {
		t.Errorf("lang: ожидалось en, получено %q", langCookie.Value)
	}
}
