package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/tanyaprikhodko/journal-of-defects/internal/domain/model"
	"github.com/tanyaprikhodko/journal-of-defects/internal/jmclient"
	"github.com/tanyaprikhodko/journal-of-defects/internal/session"
)

// CommentService — лента комментариев записи журнала.
type CommentService struct {
	client *jmclient.Client
	logger *slog.Logger
}

// NewCommentService создаёт сервис комментариев.
func NewCommentService(client *jmclient.Client, logger *slog.Logger) *CommentService {
	return &CommentService{
		client: client,
		logger: logger.With(slog.String("component", "comment_service")),
	}
}

// ListFor возвращает комментарии записи журнала в порядке backend'а.
func (s *CommentService) ListFor(ctx context.Context, token string, journalID int) ([]model.Comment, error) {
	comments, err := s.client.ListComments(ctx, token, journalID)
	if err != nil {
		return nil, mapRemoteError(err)
	}
	return comments, nil
}

// Append добавляет комментарий к записи журнала от имени principal.
// Тело обрезается по краям, пустой после обрезки комментарий
// отклоняется с ErrEmptyComment без обращения к backend'у.
func (s *CommentService) Append(ctx context.Context, token string, principal *session.Principal, journalID int, body string) (*model.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyComment
	}

	comment, err := s.client.AddComment(ctx, token, model.CommentRequest{
		Body:      body,
		AuthorID:  principal.ID,
		JournalID: journalID,
	})
	if err != nil {
		return nil, mapRemoteError(err)
	}

	s.logger.Info("Комментарий добавлен",
		slog.Int("journal_id", journalID),
		slog.Int("author_id", principal.ID),
	)
	return comment, nil
}
