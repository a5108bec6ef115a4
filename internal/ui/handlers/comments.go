// comments.go — лента комментариев записи журнала.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/tanyaprikhodko/journal-of-defects/internal/service"
	"github.com/tanyaprikhodko/journal-of-defects/internal/ui/pages"
)

// CommentHandler — обработчики ленты комментариев.
type CommentHandler struct {
	comments *service.CommentService
	logger   *slog.Logger
}

// NewCommentHandler создаёт новый CommentHandler.
func NewCommentHandler(comments *service.CommentService, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{
		comments: comments,
		logger:   logger.With(slog.String("component", "ui.comments")),
	}
}

// HandleList обрабатывает GET /journals/{id}/comments — HTMX-фрагмент ленты.
func (h *CommentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	data := sessionData(r)
	id, err := idParam(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	view := pages.CommentsView{JournalID: id}
	view.Comments, err = h.comments.ListFor(r.Context(), data.AccessToken, id)
	if err != nil {
		if redirectSessionExpired(w, r, err) {
			return
		}
		h.logger.Error("Ошибка загрузки комментариев",
			slog.Int("journal_id", id),
			slog.String("error", err.Error()),
		)
		view.Error = localizeError(r.Context(), err)
	}
	render(w, r, h.logger, pages.Comments(view))
}

// HandleAdd обрабатывает POST /journals/{id}/comments — добавление комментария.
// Пустой текст отклоняется без обращения к backend'у, фрагмент
// перерисовывается с сообщением об ошибке.
func (h *CommentHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	data := sessionData(r)
	id, err := idParam(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	view := pages.CommentsView{JournalID: id}
	_, err = h.comments.Append(r.Context(), data.AccessToken, data.Principal, id, r.PostFormValue("body"))
	if err != nil {
		if redirectSessionExpired(w, r, err) {
			return
		}
		if !errors.Is(err, service.ErrEmptyComment) {
			h.logger.Error("Ошибка добавления комментария",
				slog.Int("journal_id", id),
				slog.String("error", err.Error()),
			)
		}
		view.Error = localizeError(r.Context(), err)
	}

	comments, listErr := h.comments.ListFor(r.Context(), data.AccessToken, id)
	if listErr != nil {
		if redirectSessionExpired(w, r, listErr) {
			return
		}
		if view.Error == "" {
			view.Error = localizeError(r.Context(), listErr)
		}
	}
	view.Comments = comments
	render(w, r, h.logger, pages.Comments(view))
}
