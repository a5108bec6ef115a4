// Пакет middleware — HTTP middleware UI журнала дефектов.
// auth.go — проверка сессии (cookie-based), авто-refresh токенов backend'а.
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/tanyaprikhodko/journal-of-defects/internal/jmclient"
	"github.com/tanyaprikhodko/journal-of-defects/internal/session"
)

// contextKey — тип для ключей контекста UI (избегаем коллизий).
type contextKey string

const (
	// ContextKeySession — данные сессии в контексте запроса.
	ContextKeySession contextKey = "ui_session"
)

// SessionAuth — middleware проверки аутентификации пользователей UI.
// Извлекает сессию из зашифрованного cookie, при необходимости обновляет
// access token через backend, redirect на /login при отсутствии сессии.
type SessionAuth struct {
	sessions  *session.Manager
	client    *jmclient.Client
	validator *session.Validator // nil — подпись токена не проверяется
	logger    *slog.Logger
}

// NewSessionAuth создаёт middleware проверки сессии.
// validator может быть nil: тогда подпись access token не проверяется.
func NewSessionAuth(
	sessions *session.Manager,
	client *jmclient.Client,
	validator *session.Validator,
	logger *slog.Logger,
) *SessionAuth {
	return &SessionAuth{
		sessions:  sessions,
		client:    client,
		validator: validator,
		logger:    logger.With(slog.String("component", "session_auth")),
	}
}

// Middleware возвращает HTTP middleware проверки сессии.
// Применяется ко всем маршрутам, кроме /login, /health/*, /metrics, /static/*.
func (sa *SessionAuth) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Извлекаем сессию из cookie
			data, err := sa.sessions.FromRequest(r)
			if err != nil {
				sa.logger.Debug("Ошибка чтения сессии",
					slog.String("error", err.Error()),
					slog.String("remote_addr", r.RemoteAddr),
				)
				// Повреждённый cookie — очищаем и redirect на login
				sa.sessions.ClearCookie(w)
				redirectToLogin(w, r)
				return
			}

			// 2. Сессия отсутствует или без principal — redirect на login
			if data == nil || data.Principal == nil {
				redirectToLogin(w, r)
				return
			}

			// 3. Проверяем срок действия access token
			if data.IsExpired() {
				refreshed, refreshErr := sa.refreshSession(r.Context(), data)
				if refreshErr != nil {
					sa.logger.Info("Не удалось обновить сессию, redirect на login",
						slog.String("login", data.Principal.Login),
						slog.String("error", refreshErr.Error()),
					)
					sa.sessions.ClearCookie(w)
					redirectToLogin(w, r)
					return
				}

				if err := sa.sessions.SetCookie(w, refreshed); err != nil {
					sa.logger.Error("Ошибка обновления session cookie",
						slog.String("error", err.Error()),
					)
					sa.sessions.ClearCookie(w)
					redirectToLogin(w, r)
					return
				}

				data = refreshed
				sa.logger.Debug("Сессия обновлена через refresh token",
					slog.String("login", data.Principal.Login),
				)
			}

			// 4. Опциональная криптографическая проверка подписи
			if sa.validator != nil {
				if err := sa.validator.Validate(data.AccessToken); err != nil {
					sa.logger.Warn("Подпись access token не прошла проверку",
						slog.String("login", data.Principal.Login),
						slog.String("error", err.Error()),
					)
					sa.sessions.ClearCookie(w)
					redirectToLogin(w, r)
					return
				}
			}

			// 5. Помещаем сессию в контекст
			ctx := context.WithValue(r.Context(), ContextKeySession, data)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// refreshSession обновляет пару токенов через backend и заново
// извлекает principal из нового access token.
func (sa *SessionAuth) refreshSession(ctx context.Context, data *session.Data) (*session.Data, error) {
	pair, err := sa.client.Refresh(ctx, data.AccessToken, data.RefreshToken)
	if err != nil {
		return nil, err
	}

	principal, expiresAt, err := session.PrincipalFromToken(pair.AccessToken)
	if err != nil {
		return nil, err
	}

	return &session.Data{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    expiresAt,
		Principal:    principal,
	}, nil
}

// redirectToLogin отправляет на страницу входа. Частичные запросы
// (HTMX) получают заголовок HX-Redirect вместо HTTP redirect:
// браузер должен сменить страницу целиком, а не вставить форму входа
// во фрагмент.
func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/login")
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

// SessionFromContext извлекает данные сессии из контекста запроса.
// Возвращает nil, если запрос не прошёл через SessionAuth middleware.
func SessionFromContext(ctx context.Context) *session.Data {
	data, ok := ctx.Value(ContextKeySession).(*session.Data)
	if !ok {
		return nil
	}
	return data
}
