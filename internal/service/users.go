package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tanyaprikhodko/journal-of-defects/internal/domain/model"
	"github.com/tanyaprikhodko/journal-of-defects/internal/jmclient"
)

// UserService — администрирование пользователей: список по РЕМ,
// карточка, создание, обновление, удаление.
type UserService struct {
	client *jmclient.Client
	logger *slog.Logger
}

// NewUserService создаёт сервис пользователей.
func NewUserService(client *jmclient.Client, logger *slog.Logger) *UserService {
	return &UserService{
		client: client,
		logger: logger.With(slog.String("component", "user_service")),
	}
}

// List возвращает пользователей, опционально фильтруя по РЕМ.
// Пустой regionID — все подразделения.
func (s *UserService) List(ctx context.Context, token, regionID string) ([]model.User, error) {
	users, err := s.client.ListUsers(ctx, token, regionID)
	if err != nil {
		return nil, mapRemoteError(err)
	}
	return users, nil
}

// Get возвращает пользователя по идентификатору.
func (s *UserService) Get(ctx context.Context, token string, id int) (*model.User, error) {
	u, err := s.client.GetUser(ctx, token, id)
	if err != nil {
		return nil, mapRemoteError(err)
	}
	return u, nil
}

// Create создаёт пользователя. Для нового пользователя пароль обязателен.
func (s *UserService) Create(ctx context.Context, token string, u model.User) (*model.User, error) {
	if err := validateUser(&u, true); err != nil {
		return nil, err
	}

	created, err := s.client.CreateUser(ctx, token, u)
	if err != nil {
		return nil, mapRemoteError(err)
	}

	s.logger.Info("Пользователь создан",
		slog.Int("user_id", created.ID),
		slog.String("login", created.Login),
	)
	return created, nil
}

// Update обновляет пользователя. Пустой пароль означает
// «оставить прежний» и не передаётся на backend.
func (s *UserService) Update(ctx context.Context, token string, id int, u model.User) (*model.User, error) {
	if err := validateUser(&u, false); err != nil {
		return nil, err
	}

	updated, err := s.client.UpdateUser(ctx, token, id, u)
	if err != nil {
		return nil, mapRemoteError(err)
	}

	s.logger.Info("Пользователь обновлён", slog.Int("user_id", id))
	return updated, nil
}

// Delete удаляет пользователя.
func (s *UserService) Delete(ctx context.Context, token string, id int) error {
	if err := s.client.DeleteUser(ctx, token, id); err != nil {
		return mapRemoteError(err)
	}
	s.logger.Info("Пользователь удалён", slog.Int("user_id", id))
	return nil
}

// validateUser проверяет обязательные поля перед отправкой на backend.
func validateUser(u *model.User, requirePassword bool) error {
	var problems []string

	u.Login = strings.TrimSpace(u.Login)
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.TrimSpace(u.Email)

	if u.Login == "" {
		problems = append(problems, "логин обязателен")
	}
	if u.Name == "" {
		problems = append(problems, "имя обязательно")
	}
	if requirePassword && u.Password == "" {
		problems = append(problems, "пароль обязателен для нового пользователя")
	}
	if u.RegionID == "" {
		problems = append(problems, "РЕМ обязателен")
	}
	if u.Email != "" && !strings.Contains(u.Email, "@") {
		problems = append(problems, "некорректный email")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrUserValidation, strings.Join(problems, ", "))
	}
	return nil
}

// ErrUserValidation — данные пользователя не прошли проверку.
var ErrUserValidation = errors.New("данные пользователя не прошли проверку")

// IsValidation сообщает, является ли ошибка ошибкой проверки данных,
// локальной или полученной от backend'а.
func IsValidation(err error) bool {
	return errors.Is(err, ErrUserValidation) || errors.Is(err, ErrValidation)
}
