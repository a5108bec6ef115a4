// Пакет config — загрузка и валидация конфигурации админ-модуля
// журнала дефектов из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации админ-модуля.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- Backend журнала дефектов ---

	// Базовый URL REST API backend'а (например, https://journal.oblenergo.ua)
	BackendURL string
	// Таймаут HTTP-запросов к backend'у
	BackendTimeout time.Duration
	// URL JWKS endpoint для проверки подписи access token (опционально;
	// если не задан — токен считается непрозрачным, валидация на backend'е)
	JWKSURL string

	// --- Сессии UI ---

	// Ключ шифрования session cookie (base64 или произвольная строка).
	// Пустое значение — случайный ключ, непостоянный между рестартами.
	SessionKey string
	// Secure flag для cookies (true за HTTPS-терминатором)
	SecureCookies bool

	// --- Таблица журнала ---

	// Размер страницы таблицы журнала (ItemsPerPage в запросах к backend'у)
	PageSize int

	// --- Кэш справочников ---

	// Максимальное количество записей LRU-кэша справочников
	LookupCacheSize int
	// TTL записи кэша справочников
	LookupCacheTTL time.Duration

	// --- PostgreSQL (локальное хранилище пресетов фильтров, опционально) ---

	// Хост PostgreSQL; пустое значение отключает хранилище пресетов
	DBHost string
	// Порт PostgreSQL
	DBPort int
	// Имя базы данных
	DBName string
	// Имя пользователя PostgreSQL
	DBUser string
	// Пароль пользователя PostgreSQL
	DBPassword string
	// Режим SSL: disable, require, verify-ca, verify-full
	DBSSLMode string

	// --- Мониторинг зависимостей ---

	// Интервал проверки зависимостей topologymetrics
	DephealthCheckInterval time.Duration
	// Имя группы в метриках dephealth
	DephealthGroup string

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения, валидирует
// обязательные поля и возвращает Config или ошибку.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// JD_PORT — порт HTTP-сервера (по умолчанию 8080)
	cfg.Port, err = getEnvInt("JD_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("JD_PORT: %w", err)
	}
	if cfg.Port < 1024 || cfg.Port > 65535 {
		return nil, fmt.Errorf("JD_PORT: значение %d вне допустимого диапазона 1024-65535", cfg.Port)
	}

	// JD_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("JD_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("JD_LOG_LEVEL: %w", err)
	}

	// JD_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("JD_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("JD_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// --- Backend ---

	// JD_BACKEND_URL — обязательный
	cfg.BackendURL, err = getEnvRequired("JD_BACKEND_URL")
	if err != nil {
		return nil, err
	}
	// Убираем trailing slash
	cfg.BackendURL = strings.TrimRight(cfg.BackendURL, "/")

	// JD_BACKEND_TIMEOUT — таймаут запросов к backend'у (по умолчанию 30s)
	cfg.BackendTimeout, err = getEnvDuration("JD_BACKEND_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("JD_BACKEND_TIMEOUT: %w", err)
	}

	// JD_JWKS_URL — опциональная валидация подписи токена
	cfg.JWKSURL = getEnvDefault("JD_JWKS_URL", "")

	// --- Сессии ---

	// JD_SESSION_KEY — ключ шифрования session cookie (опционально)
	cfg.SessionKey = getEnvDefault("JD_SESSION_KEY", "")

	// JD_SECURE_COOKIES — Secure flag для cookies (по умолчанию false)
	cfg.SecureCookies, err = getEnvBool("JD_SECURE_COOKIES", false)
	if err != nil {
		return nil, fmt.Errorf("JD_SECURE_COOKIES: %w", err)
	}

	// --- Таблица ---

	// JD_PAGE_SIZE — размер страницы журнала (по умолчанию 10)
	cfg.PageSize, err = getEnvInt("JD_PAGE_SIZE", 10)
	if err != nil {
		return nil, fmt.Errorf("JD_PAGE_SIZE: %w", err)
	}
	if cfg.PageSize < 1 || cfg.PageSize > 100 {
		return nil, fmt.Errorf("JD_PAGE_SIZE: значение %d вне допустимого диапазона 1-100", cfg.PageSize)
	}

	// --- Кэш справочников ---

	// JD_LOOKUP_CACHE_SIZE — размер LRU-кэша (по умолчанию 256)
	cfg.LookupCacheSize, err = getEnvInt("JD_LOOKUP_CACHE_SIZE", 256)
	if err != nil {
		return nil, fmt.Errorf("JD_LOOKUP_CACHE_SIZE: %w", err)
	}
	if cfg.LookupCacheSize < 1 {
		return nil, fmt.Errorf("JD_LOOKUP_CACHE_SIZE: значение %d должно быть положительным", cfg.LookupCacheSize)
	}

	// JD_LOOKUP_CACHE_TTL — TTL записи кэша (по умолчанию 5m)
	cfg.LookupCacheTTL, err = getEnvDuration("JD_LOOKUP_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("JD_LOOKUP_CACHE_TTL: %w", err)
	}

	// --- PostgreSQL (опционально) ---

	// JD_DB_HOST — пустое значение отключает хранилище пресетов фильтров
	cfg.DBHost = getEnvDefault("JD_DB_HOST", "")

	if cfg.DBHost != "" {
		// JD_DB_PORT — порт PostgreSQL (по умолчанию 5432)
		cfg.DBPort, err = getEnvInt("JD_DB_PORT", 5432)
		if err != nil {
			return nil, fmt.Errorf("JD_DB_PORT: %w", err)
		}

		// JD_DB_NAME — обязательный при заданном JD_DB_HOST
		cfg.DBName, err = getEnvRequired("JD_DB_NAME")
		if err != nil {
			return nil, err
		}

		// JD_DB_USER — обязательный при заданном JD_DB_HOST
		cfg.DBUser, err = getEnvRequired("JD_DB_USER")
		if err != nil {
			return nil, err
		}

		// JD_DB_PASSWORD — обязательный при заданном JD_DB_HOST
		cfg.DBPassword, err = getEnvRequired("JD_DB_PASSWORD")
		if err != nil {
			return nil, err
		}

		// JD_DB_SSL_MODE — режим SSL (по умолчанию disable)
		cfg.DBSSLMode = getEnvDefault("JD_DB_SSL_MODE", "disable")
		validSSLModes := map[string]bool{
			"disable": true, "require": true, "verify-ca": true, "verify-full": true,
		}
		if !validSSLModes[cfg.DBSSLMode] {
			return nil, fmt.Errorf("JD_DB_SSL_MODE: недопустимое значение %q, допустимые: disable, require, verify-ca, verify-full", cfg.DBSSLMode)
		}
	}

	// --- Мониторинг зависимостей ---

	// JD_DEPHEALTH_CHECK_INTERVAL — интервал проверки зависимостей (по умолчанию 15s)
	cfg.DephealthCheckInterval, err = getEnvDuration("JD_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("JD_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// JD_DEPHEALTH_GROUP — имя группы (по умолчанию "journal")
	cfg.DephealthGroup = getEnvDefault("JD_DEPHEALTH_GROUP", "journal")

	// --- Graceful shutdown ---

	// JD_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 5s)
	cfg.ShutdownTimeout, err = getEnvDuration("JD_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("JD_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// PresetsEnabled сообщает, настроено ли локальное хранилище пресетов фильтров.
func (c *Config) PresetsEnabled() bool {
	return c.DBHost != ""
}

// DatabaseDSN возвращает строку подключения к PostgreSQL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode,
	)
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvBool возвращает булево значение переменной окружения или значение по умолчанию.
func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное булево значение: %q", val)
	}
	return b, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
