// auth.go — вход по логину и паролю через backend журнала.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/tanyaprikhodko/journal-of-defects/internal/jmclient"
	"github.com/tanyaprikhodko/journal-of-defects/internal/service"
	"github.com/tanyaprikhodko/journal-of-defects/internal/session"
	"github.com/tanyaprikhodko/journal-of-defects/internal/ui/pages"
)

// AuthHandler — обработчики входа и выхода.
type AuthHandler struct {
	client   *jmclient.Client
	sessions *session.Manager
	journals *service.JournalService
	logger   *slog.Logger
}

// NewAuthHandler создаёт новый AuthHandler.
func NewAuthHandler(
	client *jmclient.Client,
	sessions *session.Manager,
	journals *service.JournalService,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		client:   client,
		sessions: sessions,
		journals: journals,
		logger:   logger.With(slog.String("component", "ui.auth")),
	}
}

// HandleLoginPage обрабатывает GET /login.
func (h *AuthHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	if data := sessionData(r); data != nil {
		http.Redirect(w, r, "/journals", http.StatusFound)
		return
	}
	render(w, r, h.logger, pages.Login(""))
}

// HandleLogin обрабатывает POST /login: обменивает логин и пароль
// на пару токенов и устанавливает зашифрованную сессионную cookie.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	login := r.PostFormValue("login")
	password := r.PostFormValue("password")

	tokens, err := h.client.Login(r.Context(), login, password)
	if err != nil {
		h.logger.Warn("Неудачная попытка входа",
			slog.String("login", login),
			slog.String("error", err.Error()),
		)
		w.WriteHeader(http.StatusUnauthorized)
		render(w, r, h.logger, pages.Login("login.failed"))
		return
	}

	principal, expiresAt, err := session.PrincipalFromToken(tokens.AccessToken)
	if err != nil {
		h.logger.Error("Не удалось разобрать access token",
			slog.String("login", login),
			slog.String("error", err.Error()),
		)
		render(w, r, h.logger, pages.Login("login.failed"))
		return
	}

	data := &session.Data{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    expiresAt,
		Principal:    principal,
	}
	if err := h.sessions.SetCookie(w, data); err != nil {
		h.logger.Error("Ошибка установки сессионной cookie", slog.String("error", err.Error()))
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	h.logger.Info("Пользователь вошёл в систему",
		slog.Int("user_id", principal.ID),
		slog.String("login", principal.Login),
	)
	http.Redirect(w, r, "/journals", http.StatusFound)
}

// HandleLogout обрабатывает POST /logout: сбрасывает cookie
// и состояние списка пользователя.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if data := sessionData(r); data != nil && data.Principal != nil {
		h.journals.DropView(data.Principal.ID)
	}
	h.sessions.ClearCookie(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}
