// Пакет server — HTTP-сервер веб-интерфейса журнала дефектов
// с graceful shutdown. Без TLS: терминация на reverse proxy.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tanyaprikhodko/journal-of-defects/internal/config"
	"github.com/tanyaprikhodko/journal-of-defects/internal/ui/handlers"
	"github.com/tanyaprikhodko/journal-of-defects/internal/ui/i18n"
	uimiddleware "github.com/tanyaprikhodko/journal-of-defects/internal/ui/middleware"
	"github.com/tanyaprikhodko/journal-of-defects/internal/ui/static"
)

// Handlers — набор обработчиков, регистрируемых сервером.
// Presets может быть nil: тогда маршруты пресетов не регистрируются.
type Handlers struct {
	Auth     *handlers.AuthHandler
	Journals *handlers.JournalHandler
	Comments *handlers.CommentHandler
	Users    *handlers.UserHandler
	Health   *handlers.HealthHandler
	Presets  *handlers.PresetHandler
}

// Server — HTTP-сервер веб-интерфейса.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// New создаёт новый HTTP-сервер с настроенными routes и middleware.
// sessionAuth может быть nil для тестирования без аутентификации.
func New(cfg *config.Config, logger *slog.Logger, h Handlers, sessionAuth *uimiddleware.SessionAuth) *Server {
	router := chi.NewRouter()

	// Глобальные middleware (применяются ко ВСЕМ маршрутам)
	router.Use(uimiddleware.MetricsMiddleware())
	router.Use(uimiddleware.RequestLogger(logger))
	router.Use(i18n.Middleware())

	// Проверка сессии с исключениями для публичных endpoints.
	// Health и metrics опрашиваются мониторингом напрямую.
	if sessionAuth != nil {
		router.Use(sessionAuthWithExclusions(sessionAuth,
			"/login", "/health/", "/metrics", "/static/"))
	}

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/journals", http.StatusFound)
	})

	router.Get("/login", h.Auth.HandleLoginPage)
	router.Post("/login", h.Auth.HandleLogin)
	router.Post("/logout", h.Auth.HandleLogout)
	router.Post("/set-language", handlers.HandleSetLanguage)

	router.Route("/journals", func(r chi.Router) {
		r.Get("/", h.Journals.HandleList)
		r.Get("/partial", h.Journals.HandlePartial)
		r.Post("/filters", h.Journals.HandleFilters)
		r.Post("/filters/reset", h.Journals.HandleFiltersReset)
		r.Get("/new", h.Journals.HandleNew)
		r.Post("/", h.Journals.HandleCreate)
		r.Get("/{id}", h.Journals.HandleDetail)
		r.Post("/{id}", h.Journals.HandleUpdate)
		r.Post("/{id}/delete", h.Journals.HandleDelete)
		r.Post("/{id}/transition", h.Journals.HandleTransition)
		r.Get("/{id}/comments", h.Comments.HandleList)
		r.Post("/{id}/comments", h.Comments.HandleAdd)
	})

	router.Route("/users", func(r chi.Router) {
		r.Get("/", h.Users.HandleList)
		r.Get("/new", h.Users.HandleNew)
		r.Post("/", h.Users.HandleCreate)
		r.Get("/{id}", h.Users.HandleEdit)
		r.Post("/{id}", h.Users.HandleUpdate)
		r.Post("/{id}/delete", h.Users.HandleDelete)
	})

	if h.Presets != nil {
		router.Route("/presets", func(r chi.Router) {
			r.Get("/", h.Presets.HandleList)
			r.Post("/", h.Presets.HandleSave)
			r.Post("/{id}/apply", h.Presets.HandleApply)
			r.Post("/{id}/delete", h.Presets.HandleDelete)
		})
	}

	router.Get("/health/live", h.Health.HealthLive)
	router.Get("/health/ready", h.Health.HealthReady)
	router.Get("/metrics", h.Health.GetMetrics)

	router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(static.FileSystem())))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
		cfg:        cfg,
	}
}

// sessionAuthWithExclusions оборачивает SessionAuth.Middleware(),
// пропуская указанные пути без проверки сессии.
func sessionAuthWithExclusions(sessionAuth *uimiddleware.SessionAuth, excludePrefixes ...string) func(http.Handler) http.Handler {
	authMiddleware := sessionAuth.Middleware()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, prefix := range excludePrefixes {
				if strings.HasPrefix(r.URL.Path, prefix) {
					next.ServeHTTP(w, r)
					return
				}
			}
			authMiddleware(next).ServeHTTP(w, r)
		})
	}
}

// Handler возвращает корневой http.Handler сервера.
// Используется в тестах для запросов через httptest.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM).
// При получении сигнала выполняется graceful shutdown.
func (s *Server) Run() error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", s.httpServer.Addr),
		)

		err := s.httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		s.logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
