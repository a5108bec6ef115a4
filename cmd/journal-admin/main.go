// Точка входа веб-интерфейса журнала дефектов.
// Загружает конфигурацию, инициализирует локализацию и сессии,
// создаёт клиент backend'а и сервисный слой, опционально подключает
// PostgreSQL для пресетов фильтров, запускает мониторинг зависимостей
// и HTTP-сервер с graceful shutdown.
package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/stdlib"

	"github.com/tanyaprikhodko/journal-of-defects/internal/config"
	"github.com/tanyaprikhodko/journal-of-defects/internal/database"
	"github.com/tanyaprikhodko/journal-of-defects/internal/jmclient"
	"github.com/tanyaprikhodko/journal-of-defects/internal/repository"
	"github.com/tanyaprikhodko/journal-of-defects/internal/server"
	"github.com/tanyaprikhodko/journal-of-defects/internal/service"
	"github.com/tanyaprikhodko/journal-of-defects/internal/session"
	uihandlers "github.com/tanyaprikhodko/journal-of-defects/internal/ui/handlers"
	"github.com/tanyaprikhodko/journal-of-defects/internal/ui/i18n"
	uimiddleware "github.com/tanyaprikhodko/journal-of-defects/internal/ui/middleware"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Веб-интерфейс журнала дефектов запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
	)

	// 3. Локализация (украинский по умолчанию, английский дополнительно)
	bundle := i18n.Init(logger)
	if err := i18n.LoadFromEmbedFS(bundle, logger); err != nil {
		logger.Error("Ошибка загрузки переводов", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Менеджер сессионных cookie
	if cfg.SessionKey == "" {
		logger.Warn("JD_SESSION_KEY не задан, сессии не переживут перезапуск")
	}
	sessions, err := session.NewManager(cfg.SessionKey, cfg.SecureCookies)
	if err != nil {
		logger.Error("Ошибка создания менеджера сессий", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	// 5. Опциональная проверка подписи access token через JWKS
	var validator *session.Validator
	if cfg.JWKSURL != "" {
		validator, err = session.NewValidator(ctx, cfg.JWKSURL, logger)
		if err != nil {
			logger.Error("Ошибка инициализации JWKS",
				slog.String("jwks_url", cfg.JWKSURL),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
		logger.Info("Проверка подписи токенов включена", slog.String("jwks_url", cfg.JWKSURL))
	}

	// 6. Клиент backend'а журнала
	client := jmclient.New(cfg.BackendURL, cfg.BackendTimeout, logger)

	// 7. Сервисный слой
	journalSvc := service.NewJournalService(client, cfg.PageSize, logger)
	commentSvc := service.NewCommentService(client, logger)
	lookupSvc := service.NewLookupService(client, cfg.LookupCacheSize, cfg.LookupCacheTTL, logger)
	userSvc := service.NewUserService(client, logger)

	// 8. Опциональный PostgreSQL для пресетов фильтров
	var (
		presetSvc *service.PresetService
		dbChecker uihandlers.ReadinessChecker
		pgDB      *sql.DB
		pgDSN     string
	)
	if cfg.PresetsEnabled() {
		logger.Info("Применение миграций БД...")
		if err := database.Migrate(cfg, logger); err != nil {
			logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
			os.Exit(1)
		}

		pool, err := database.Connect(ctx, cfg, logger)
		if err != nil {
			logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer pool.Close()

		// Адаптер pgxpool → *sql.DB для мониторинга зависимостей:
		// проверка здоровья идёт через существующий пул соединений
		pgDB = stdlib.OpenDBFromPool(pool)
		defer pgDB.Close()
		pgDSN = cfg.DatabaseDSN()

		presetRepo := repository.NewFilterPresetRepository(pool)
		presetSvc = service.NewPresetService(presetRepo, logger)
		dbChecker = database.NewReadinessChecker(pool)
		logger.Info("Пресеты фильтров включены", slog.String("db_host", cfg.DBHost))
	} else {
		logger.Info("JD_DB_HOST не задан, пресеты фильтров отключены")
	}

	// 9. Мониторинг зависимостей (topologymetrics)
	dhSvc, err := service.NewDephealthService(
		"journal-admin",
		cfg.DephealthGroup,
		cfg.BackendURL,
		pgDB,
		pgDSN,
		cfg.DephealthCheckInterval,
		logger,
	)
	if err != nil {
		logger.Error("Ошибка инициализации мониторинга зависимостей", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := dhSvc.Start(ctx); err != nil {
		logger.Error("Ошибка запуска мониторинга зависимостей", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dhSvc.Stop()

	// 10. HTTP-обработчики
	h := server.Handlers{
		Auth:     uihandlers.NewAuthHandler(client, sessions, journalSvc, logger),
		Journals: uihandlers.NewJournalHandler(journalSvc, lookupSvc, userSvc, cfg.PageSize, logger),
		Comments: uihandlers.NewCommentHandler(commentSvc, logger),
		Users:    uihandlers.NewUserHandler(userSvc, lookupSvc, logger),
		Health:   uihandlers.NewHealthHandler(dbChecker, dhSvc),
	}
	if presetSvc != nil {
		h.Presets = uihandlers.NewPresetHandler(presetSvc, journalSvc, cfg.PageSize, logger)
		h.Journals.EnablePresets()
	}

	// 11. Middleware проверки сессии
	sessionAuth := uimiddleware.NewSessionAuth(sessions, client, validator, logger)

	// 12. HTTP-сервер с graceful shutdown
	srv := server.New(cfg, logger, h, sessionAuth)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
