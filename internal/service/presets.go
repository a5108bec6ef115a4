package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/tanyaprikhodko/journal-of-defects/internal/query"
	"github.com/tanyaprikhodko/journal-of-defects/internal/repository"
)

// ErrPresetName — имя пресета пусто или занято.
var ErrPresetName = errors.New("недопустимое имя пресета")

// PresetService — именованные пресеты фильтров списка.
// Состояние запроса сериализуется в JSON и хранится в локальном
// PostgreSQL. Сервис опционален: без настроенной базы недоступен.
type PresetService struct {
	repo   repository.FilterPresetRepository
	logger *slog.Logger
}

// NewPresetService создаёт сервис пресетов фильтров.
func NewPresetService(repo repository.FilterPresetRepository, logger *slog.Logger) *PresetService {
	return &PresetService{
		repo:   repo,
		logger: logger.With(slog.String("component", "preset_service")),
	}
}

// List возвращает пресеты пользователя.
func (s *PresetService) List(ctx context.Context, userID int) ([]repository.FilterPreset, error) {
	return s.repo.ListForUser(ctx, userID)
}

// Save сохраняет текущее состояние запроса под именем name.
// Страница в пресет не входит: пресет — это фильтры и сортировка.
func (s *PresetService) Save(ctx context.Context, userID int, name string, st query.State) (*repository.FilterPreset, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrPresetName
	}

	st.Page = 1
	raw, err := json.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("сериализация состояния запроса: %w", err)
	}

	preset := &repository.FilterPreset{
		UserID: userID,
		Name:   name,
		State:  string(raw),
	}
	if err := s.repo.Create(ctx, preset); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: имя %q уже занято", ErrPresetName, name)
		}
		return nil, err
	}

	s.logger.Info("Пресет фильтров сохранён",
		slog.Int("user_id", userID),
		slog.String("name", name),
	)
	return preset, nil
}

// Apply возвращает состояние запроса из пресета пользователя.
// Чужой пресет недоступен и неотличим от отсутствующего.
func (s *PresetService) Apply(ctx context.Context, id uuid.UUID, userID int, pageSize int) (query.State, error) {
	preset, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return query.State{}, ErrNotFound
		}
		return query.State{}, err
	}
	if preset.UserID != userID {
		return query.State{}, ErrNotFound
	}

	st := query.New(pageSize)
	if err := json.Unmarshal([]byte(preset.State), &st); err != nil {
		return query.State{}, fmt.Errorf("десериализация пресета %s: %w", id, err)
	}
	st.Page = 1
	if st.ItemsPerPage <= 0 {
		st.ItemsPerPage = pageSize
	}
	return st, nil
}

// Delete удаляет пресет пользователя.
func (s *PresetService) Delete(ctx context.Context, id uuid.UUID, userID int) error {
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	s.logger.Info("Пресет фильтров удалён",
		slog.Int("user_id", userID),
		slog.String("preset_id", id.String()),
	)
	return nil
}
