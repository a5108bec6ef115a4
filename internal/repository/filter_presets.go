package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// FilterPreset — сохранённый набор фильтров списка записей журнала.
// State хранит сериализованное состояние запроса (JSON) и
// непрозрачен для слоя хранения.
type FilterPreset struct {
	// Идентификатор пресета
	ID uuid.UUID
	// Владелец пресета (идентификатор пользователя backend'а)
	UserID int
	// Отображаемое имя, уникально в пределах пользователя
	Name string
	// Состояние запроса списка (JSON)
	State string
	// Время создания
	CreatedAt time.Time
	// Время последнего обновления
	UpdatedAt time.Time
}

// FilterPresetRepository — интерфейс таблицы filter_presets.
type FilterPresetRepository interface {
	// ListForUser возвращает пресеты пользователя, отсортированные по имени.
	ListForUser(ctx context.Context, userID int) ([]FilterPreset, error)
	// Get возвращает пресет по идентификатору. Если не найден — ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*FilterPreset, error)
	// Create сохраняет новый пресет. Дубликат имени у того же
	// пользователя — ErrConflict.
	Create(ctx context.Context, p *FilterPreset) error
	// Update обновляет имя и состояние пресета.
	Update(ctx context.Context, p *FilterPreset) error
	// Delete удаляет пресет пользователя. Чужой или отсутствующий
	// пресет — ErrNotFound.
	Delete(ctx context.Context, id uuid.UUID, userID int) error
}

// filterPresetRepo — реализация FilterPresetRepository.
type filterPresetRepo struct {
	db DBTX
}

// NewFilterPresetRepository создаёт репозиторий пресетов фильтров.
func NewFilterPresetRepository(db DBTX) FilterPresetRepository {
	return &filterPresetRepo{db: db}
}

// ListForUser возвращает пресеты пользователя, отсортированные по имени.
func (r *filterPresetRepo) ListForUser(ctx context.Context, userID int) ([]FilterPreset, error) {
	query := `
		SELECT id, user_id, name, state, created_at, updated_at
		FROM filter_presets
		WHERE user_id = $1
		ORDER BY name`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения пресетов пользователя %d: %w", userID, err)
	}
	defer rows.Close()

	var presets []FilterPreset
	for rows.Next() {
		var p FilterPreset
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.State, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования пресета: %w", err)
		}
		presets = append(presets, p)
	}
	return presets, rows.Err()
}

// Get возвращает пресет по идентификатору.
func (r *filterPresetRepo) Get(ctx context.Context, id uuid.UUID) (*FilterPreset, error) {
	query := `
		SELECT id, user_id, name, state, created_at, updated_at
		FROM filter_presets
		WHERE id = $1`

	p := &FilterPreset{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.UserID, &p.Name, &p.State, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения пресета %s: %w", id, err)
	}
	return p, nil
}

// Create сохраняет новый пресет.
func (r *filterPresetRepo) Create(ctx context.Context, p *FilterPreset) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	query := `
		INSERT INTO filter_presets (id, user_id, name, state)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query, p.ID, p.UserID, p.Name, p.State).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("ошибка создания пресета %q: %w", p.Name, err)
	}
	return nil
}

// Update обновляет имя и состояние пресета.
func (r *filterPresetRepo) Update(ctx context.Context, p *FilterPreset) error {
	query := `
		UPDATE filter_presets
		SET name = $1, state = $2, updated_at = NOW()
		WHERE id = $3 AND user_id = $4`

	tag, err := r.db.Exec(ctx, query, p.Name, p.State, p.ID, p.UserID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("ошибка обновления пресета %s: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete удаляет пресет пользователя.
func (r *filterPresetRepo) Delete(ctx context.Context, id uuid.UUID, userID int) error {
	query := `DELETE FROM filter_presets WHERE id = $1 AND user_id = $2`

	tag, err := r.db.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("ошибка удаления пресета %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
