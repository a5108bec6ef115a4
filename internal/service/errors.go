// Пакет service — бизнес-логика UI журнала дефектов поверх
// HTTP-клиента backend'а: состояние списка, жизненный цикл записей,
// комментарии, справочники, администрирование пользователей.
package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tanyaprikhodko/journal-of-defects/internal/jmclient"
)

// Сигнальные ошибки бизнес-логики.
var (
	// ErrNotFound — запрошенный ресурс отсутствует на backend'е.
	ErrNotFound = errors.New("ресурс не найден")
	// ErrSessionExpired — токены сессии недействительны, требуется повторный вход.
	ErrSessionExpired = errors.New("сессия истекла")
	// ErrEmptyComment — тело комментария пусто или состоит из пробелов.
	ErrEmptyComment = errors.New("пустой комментарий")
	// ErrNoChanges — сеанс редактирования без единого тронутого поля.
	ErrNoChanges = errors.New("нет изменений для сохранения")
	// ErrForbidden — backend отказал в правах на операцию.
	ErrForbidden = errors.New("операция запрещена")
	// ErrValidation — backend отклонил данные запроса.
	ErrValidation = errors.New("данные не прошли проверку")
	// ErrConflict — запрос конфликтует с текущим состоянием ресурса.
	ErrConflict = errors.New("конфликт с текущим состоянием ресурса")
	// ErrBackendUnavailable — backend недоступен или отвечает 5xx.
	ErrBackendUnavailable = errors.New("backend недоступен")
)

// mapRemoteError переводит известные статусы backend'а
// в сигнальные ошибки, остальные ошибки возвращает как есть.
func mapRemoteError(err error) error {
	var re *jmclient.RemoteError
	if errors.As(err, &re) {
		switch {
		case re.IsNotFound():
			return ErrNotFound
		case re.IsUnauthorized():
			return ErrSessionExpired
		case re.IsForbidden():
			return ErrForbidden
		case re.IsConflict():
			return ErrConflict
		case re.IsValidation():
			if len(re.Messages) == 0 {
				return ErrValidation
			}
			// Сообщения backend'а сохраняются для показа в форме
			return fmt.Errorf("%w: %s", ErrValidation, strings.Join(re.Messages, "; "))
		case re.IsUnavailable():
			return ErrBackendUnavailable
		}
	}
	return err
}
