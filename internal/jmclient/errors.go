package jmclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// RemoteError — ошибка backend'а (статус вне 2xx).
// Messages содержит разобранные сообщения из тела ответа:
// backend отдаёт либо {"errors": [...]}, либо {"message": "..."},
// либо простой текст.
type RemoteError struct {
	StatusCode int
	Messages   []string
}

func (e *RemoteError) Error() string {
	if len(e.Messages) == 0 {
		return fmt.Sprintf("backend вернул статус %d", e.StatusCode)
	}
	return fmt.Sprintf("backend вернул статус %d: %s", e.StatusCode, strings.Join(e.Messages, "; "))
}

// IsNotFound сообщает, означает ли ошибка отсутствие ресурса.
func (e *RemoteError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsUnauthorized сообщает, означает ли ошибка истёкший или
// недействительный токен.
func (e *RemoteError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// IsForbidden сообщает, отказал ли backend в правах на операцию.
func (e *RemoteError) IsForbidden() bool {
	return e.StatusCode == http.StatusForbidden
}

// IsValidation сообщает, отклонил ли backend данные запроса.
func (e *RemoteError) IsValidation() bool {
	return e.StatusCode == http.StatusBadRequest ||
		e.StatusCode == http.StatusUnprocessableEntity
}

// IsConflict сообщает, конфликтует ли запрос с текущим состоянием ресурса.
func (e *RemoteError) IsConflict() bool {
	return e.StatusCode == http.StatusConflict
}

// IsUnavailable сообщает, недоступен ли backend (статусы 5xx).
func (e *RemoteError) IsUnavailable() bool {
	return e.StatusCode >= http.StatusInternalServerError
}

// errorBody — известные формы тела ошибки backend'а.
type errorBody struct {
	Errors  []string `json:"errors"`
	Message string   `json:"message"`
}

// newRemoteError разбирает тело ответа с ошибочным статусом.
// Ограничиваем чтение: backend не должен заставить нас буферизовать мегабайты.
func newRemoteError(resp *http.Response) *RemoteError {
	re := &RemoteError{StatusCode: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil || len(raw) == 0 {
		return re
	}

	var eb errorBody
	if err := json.Unmarshal(raw, &eb); err == nil {
		if len(eb.Errors) > 0 {
			re.Messages = eb.Errors
			return re
		}
		if eb.Message != "" {
			re.Messages = []string{eb.Message}
			return re
		}
	}

	if text := strings.TrimSpace(string(raw)); text != "" {
		re.Messages = []string{text}
	}
	return re
}
