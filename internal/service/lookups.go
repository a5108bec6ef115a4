package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tanyaprikhodko/journal-of-defects/internal/domain/model"
	"github.com/tanyaprikhodko/journal-of-defects/internal/jmclient"
)

// Prometheus-метрики кэша справочников.
var (
	lookupCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jd_lookup_cache_hits_total",
		Help: "Общее количество попаданий в LRU-кэш справочников.",
	})
	lookupCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jd_lookup_cache_misses_total",
		Help: "Общее количество промахов LRU-кэша справочников.",
	})
)

// LookupService — справочники backend'а (РЕМ, типы объектов, места,
// подстанции, роли) с LRU-кэшем и TTL. Справочники меняются редко
// и общие для всех пользователей, кэш один на экземпляр.
type LookupService struct {
	client *jmclient.Client
	cache  *expirable.LRU[string, any]
	logger *slog.Logger
}

// NewLookupService создаёт сервис справочников.
// maxSize — максимальное количество справочников в кэше,
// ttl — время жизни записи после добавления.
func NewLookupService(client *jmclient.Client, maxSize int, ttl time.Duration, logger *slog.Logger) *LookupService {
	return &LookupService{
		client: client,
		cache:  expirable.NewLRU[string, any](maxSize, nil, ttl),
		logger: logger.With(slog.String("component", "lookup_service")),
	}
}

// Invalidate сбрасывает кэш справочников.
func (s *LookupService) Invalidate() {
	s.cache.Purge()
	s.logger.Info("Кэш справочников сброшен")
}

// Regions возвращает справочник РЕМ.
func (s *LookupService) Regions(ctx context.Context, token string) ([]model.Region, error) {
	return cached(s, "regions", func() ([]model.Region, error) {
		return s.client.Regions(ctx, token)
	})
}

// ObjectTypes возвращает справочник типов объектов.
func (s *LookupService) ObjectTypes(ctx context.Context, token string) ([]model.LookupItem, error) {
	return cached(s, "object-types", func() ([]model.LookupItem, error) {
		return s.client.ObjectTypes(ctx, token)
	})
}

// Places возвращает справочник мест возникновения дефекта.
func (s *LookupService) Places(ctx context.Context, token string) ([]model.LookupItem, error) {
	return cached(s, "places", func() ([]model.LookupItem, error) {
		return s.client.Places(ctx, token)
	})
}

// Substations возвращает подстанции, сгруппированные по РЕМ.
func (s *LookupService) Substations(ctx context.Context, token string) ([]model.Substation, error) {
	return cached(s, "substations", func() ([]model.Substation, error) {
		return s.client.Substations(ctx, token)
	})
}

// Roles возвращает справочник ролей пользователей.
func (s *LookupService) Roles(ctx context.Context, token string) ([]model.UserRole, error) {
	return cached(s, "roles", func() ([]model.UserRole, error) {
		return s.client.Roles(ctx, token)
	})
}

// cached возвращает справочник из кэша либо загружает его через load.
// Ошибки загрузки не кэшируются.
func cached[T any](s *LookupService, key string, load func() (T, error)) (T, error) {
	if val, ok := s.cache.Get(key); ok {
		if typed, ok := val.(T); ok {
			lookupCacheHitsTotal.Inc()
			return typed, nil
		}
	}
	lookupCacheMissesTotal.Inc()

	val, err := load()
	if err != nil {
		var zero T
		return zero, mapRemoteError(err)
	}
	s.cache.Add(key, val)
	return val, nil
}
