package repository

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/tanyaprikhodko/journal-of-defects/internal/config"
	"github.com/tanyaprikhodko/journal-of-defects/internal/database"
)

// setupTestDB запускает PostgreSQL контейнер, применяет миграции.
// Возвращает pgxpool.Pool, очистка через t.Cleanup.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("Пропуск интеграционного теста: TEST_INTEGRATION не установлена")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"docker.io/postgres:17-alpine",
		postgres.WithDatabase("journal_test"),
		postgres.WithUsername("journal"),
		postgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Не удалось запустить PostgreSQL контейнер: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Ошибка остановки контейнера: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Не удалось получить host контейнера: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Не удалось получить port контейнера: %v", err)
	}

	// Настраиваем env для config.Load()
	os.Setenv("JD_BACKEND_URL", "http://localhost:9090")
	os.Setenv("JD_DB_HOST", host)
	os.Setenv("JD_DB_PORT", port.Port())
	os.Setenv("JD_DB_NAME", "journal_test")
	os.Setenv("JD_DB_USER", "journal")
	os.Setenv("JD_DB_PASSWORD", "test-password")
	os.Setenv("JD_DB_SSL_MODE", "disable")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	if err := database.Migrate(cfg, logger); err != nil {
		t.Fatalf("Ошибка миграций: %v", err)
	}

	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("Ошибка подключения: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	return pool
}

// TestFilterPresetCRUD проверяет полный цикл работы с пресетами фильтров.
func TestFilterPresetCRUD(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewFilterPresetRepository(pool)

	preset := &FilterPreset{
		UserID: 7,
		Name:   "Протерміновані по Північному РЕМ",
		State:  `{"Filters":{"Condition":"Протермінований","Substation":"ПС Північна"}}`,
	}

	// Create
	if err := repo.Create(ctx, preset); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if preset.ID == uuid.Nil {
		t.Fatal("Create: идентификатор должен быть присвоен")
	}
	if preset.CreatedAt.IsZero() {
		t.Error("Create: created_at должен быть заполнен")
	}

	// Дубликат имени у того же пользователя
	dup := &FilterPreset{UserID: 7, Name: preset.Name, State: `{}`}
	if err := repo.Create(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Errorf("Create дубликата: ожидалось ErrConflict, получено %v", err)
	}

	// То же имя у другого пользователя допустимо
	other := &FilterPreset{UserID: 8, Name: preset.Name, State: `{}`}
	if err := repo.Create(ctx, other); err != nil {
		t.Errorf("Create для другого пользователя: %v", err)
	}

	// Get
	got, err := repo.Get(ctx, preset.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != preset.Name || got.UserID != 7 {
		t.Errorf("Get: получено %+v", got)
	}

	// ListForUser
	presets, err := repo.ListForUser(ctx, 7)
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(presets) != 1 {
		t.Errorf("ListForUser: ожидался 1 пресет, получено %d", len(presets))
	}

	// Update
	got.Name = "Протерміновані (всі РЕМ)"
	got.State = `{"Filters":{"Condition":"Протермінований"}}`
	if err := repo.Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	updated, _ := repo.Get(ctx, got.ID)
	if updated.Name != "Протерміновані (всі РЕМ)" {
		t.Errorf("Update: имя не обновлено, получено %q", updated.Name)
	}

	// Delete чужим пользователем
	if err := repo.Delete(ctx, preset.ID, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete чужого пресета: ожидалось ErrNotFound, получено %v", err)
	}

	// Delete владельцем
	if err := repo.Delete(ctx, preset.ID, 7); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.Get(ctx, preset.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get после Delete: ожидалось ErrNotFound, получено %v", err)
	}
}
