// Пакет handlers — HTTP-обработчики веб-интерфейса журнала дефектов.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/tanyaprikhodko/journal-of-defects/internal/service"
	"github.com/tanyaprikhodko/journal-of-defects/internal/session"
	"github.com/tanyaprikhodko/journal-of-defects/internal/ui/i18n"
	uimiddleware "github.com/tanyaprikhodko/journal-of-defects/internal/ui/middleware"
)

// render пишет компонент с заголовком text/html.
func render(w http.ResponseWriter, r *http.Request, logger *slog.Logger, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		logger.Error("Ошибка рендеринга страницы",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
}

// sessionData извлекает сессию из контекста запроса.
// nil не ожидается за пределами исключённых из middleware маршрутов.
func sessionData(r *http.Request) *session.Data {
	return uimiddleware.SessionFromContext(r.Context())
}

// idParam читает числовой параметр маршрута chi.
func idParam(r *http.Request, name string) (int, error) {
	return strconv.Atoi(chi.URLParam(r, name))
}

// parseOptionalInt разбирает необязательное числовое значение формы.
// Пустая строка возвращает (0, false, nil).
func parseOptionalInt(raw string) (int, bool, error) {
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

// parsePage разбирает номер страницы из параметра запроса.
func parsePage(raw string) (int, bool, error) {
	return parseOptionalInt(raw)
}

// journalPath возвращает путь карточки записи.
func journalPath(id int) string {
	return "/journals/" + strconv.Itoa(id)
}

// splitTouched разбирает список тронутых полей из скрытого поля формы.
func splitTouched(raw string) []string {
	if raw == "" {
		return nil
	}
	var fields []string
	for _, f := range strings.Split(raw, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

// errorKey сопоставляет ошибку сервисного слоя ключу локализации.
func errorKey(err error) string {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return "error.not_found"
	case errors.Is(err, service.ErrSessionExpired):
		return "session.expired"
	case errors.Is(err, service.ErrEmptyComment):
		return "comments.empty_error"
	case errors.Is(err, service.ErrNoChanges):
		return "journal.no_changes"
	case errors.Is(err, service.ErrForbidden):
		return "error.forbidden"
	case errors.Is(err, service.ErrValidation):
		return "error.validation"
	case errors.Is(err, service.ErrConflict):
		return "error.conflict"
	case errors.Is(err, service.ErrBackendUnavailable):
		return "error.unavailable"
	default:
		return "error.backend"
	}
}

// localizeError переводит ошибку сервисного слоя в текст для пользователя.
func localizeError(ctx context.Context, err error) string {
	return i18n.T(ctx, errorKey(err))
}

// redirectSessionExpired отправляет пользователя на страницу входа
// при протухшей сессии. Возвращает true, если redirect выполнен.
func redirectSessionExpired(w http.ResponseWriter, r *http.Request, err error) bool {
	if !errors.Is(err, service.ErrSessionExpired) {
		return false
	}
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/login")
		w.WriteHeader(http.StatusUnauthorized)
		return true
	}
	http.Redirect(w, r, "/login", http.StatusFound)
	return true
}
