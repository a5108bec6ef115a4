package model

import "time"

// Comment — комментарий к записи журнала (ответ backend'а).
// С точки зрения клиента — append-only: правка и удаление не поддерживаются,
// флаг IsEdited информационный и приходит только от backend'а.
type Comment struct {
	ID           int       `json:"id"`
	AuthorID     int       `json:"authorId"`
	AuthorName   string    `json:"authorName"`
	JournalID    int       `json:"journalId"`
	Body         string    `json:"body"`
	CreationDate time.Time `json:"creationDate"`
	IsEdited     bool      `json:"isEdited"`
}

// CommentRequest — тело POST /api/Comments.
type CommentRequest struct {
	Body      string `json:"body"`
	AuthorID  int    `json:"authorId"`
	JournalID int    `json:"journalId"`
}
