// Пакет querycache - кэш результатов запросов clinic-ui к clinic-api.
// Запись адресуется логическим ресурсом ("patients", "user") и областью
// (id пользователя). Invalidate помечает запись устаревшей, следующее
// чтение идёт в clinic-api. Параллельные промахи по одному ключу
// схлопываются в один запрос.
package querycache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/singleflight"
)

// Логические ресурсы кэша.
const (
	ResourcePatients = "patients"
	ResourceUser     = "user"
)

// keyPrefix - префикс ключей в хранилище.
const keyPrefix = "clinic:qc:"

// DefaultFetchTimeout ограничивает загрузку, общую для схлопнутых запросов.
const DefaultFetchTimeout = 30 * time.Second

var (
	cacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clinic_ui_query_cache_hits_total",
		Help: "Попадания в кэш запросов по ресурсам.",
	}, []string{"resource"})
	cacheMissesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clinic_ui_query_cache_misses_total",
		Help: "Промахи кэша запросов (нет записи или запись устарела).",
	}, []string{"resource"})
	cacheInvalidationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clinic_ui_query_cache_invalidations_total",
		Help: "Инвалидации записей кэша запросов.",
	}, []string{"resource"})
)

// Entry - сохранённое значение ресурса.
type Entry struct {
	Data  []byte
	Stale bool
}

// Store - хранилище записей кэша.
//
// У каждого ключа есть версия, которую MarkStale увеличивает даже при
// отсутствии записи. SetIfVersion пишет запись, только если версия не
// изменилась с момента чтения: результат загрузки, начатой до инвалидации
// (на любой реплике), не сохраняется как свежий.
// ttl == 0 означает запись без срока действия.
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Version(ctx context.Context, key string) (uint64, error)
	SetIfVersion(ctx context.Context, key string, e Entry, ttl time.Duration, version uint64) (bool, error)
	// MarkStale увеличивает версию ключа и помечает существующую запись устаревшей.
	MarkStale(ctx context.Context, key string) error
}

// Cache - кэш запросов поверх Store.
type Cache struct {
	store        Store
	group        singleflight.Group
	logger       *slog.Logger
	fetchTimeout time.Duration
}

// New создаёт кэш.
func New(store Store, logger *slog.Logger) *Cache {
	return &Cache{
		store:        store,
		logger:       logger.With(slog.String("component", "query_cache")),
		fetchTimeout: DefaultFetchTimeout,
	}
}

// Key возвращает ключ хранилища для ресурса и области.
// Фигурные скобки - hash tag Redis Cluster: запись и её версия в одном слоте.
func Key(resource, scope string) string {
	return keyPrefix + "{" + resource + ":" + scope + "}"
}

// Fetch возвращает значение ресурса из кэша или загружает его через fetch.
// Ошибки хранилища не прерывают чтение: значение загружается напрямую.
func Fetch[T any](ctx context.Context, c *Cache, resource, scope string, ttl time.Duration, fetch func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	key := Key(resource, scope)

	entry, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("Ошибка чтения кэша",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
	if ok && !entry.Stale {
		var v T
		if err := json.Unmarshal(entry.Data, &v); err == nil {
			cacheHitsTotal.WithLabelValues(resource).Inc()
			return v, nil
		}
		c.logger.Warn("Повреждённая запись кэша, загружаем заново", slog.String("key", key))
	}
	cacheMissesTotal.WithLabelValues(resource).Inc()

	data, err, _ := c.group.Do(key, func() (any, error) {
		// Загрузка общая для всех ожидающих: отмена первого запроса
		// не должна обрывать её для остальных.
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
		defer cancel()

		version, verErr := c.store.Version(fctx, key)
		if verErr != nil {
			c.logger.Warn("Ошибка чтения версии кэша",
				slog.String("key", key),
				slog.String("error", verErr.Error()),
			)
		}

		v, err := fetch(fctx)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("querycache: сериализация %s: %w", key, err)
		}

		// Без известной версии не пишем: можно затереть чужую инвалидацию.
		if verErr != nil {
			return data, nil
		}
		stored, err := c.store.SetIfVersion(fctx, key, Entry{Data: data}, ttl, version)
		switch {
		case err != nil:
			c.logger.Warn("Ошибка записи кэша",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		case !stored:
			c.logger.Debug("Запись инвалидирована во время загрузки, не сохраняем",
				slog.String("key", key),
			)
		}
		return data, nil
	})
	if err != nil {
		return zero, err
	}

	// Каждый вызывающий получает собственную копию значения.
	var v T
	if err := json.Unmarshal(data.([]byte), &v); err != nil {
		return zero, fmt.Errorf("querycache: десериализация %s: %w", key, err)
	}
	return v, nil
}

// Invalidate помечает запись ресурса устаревшей.
func (c *Cache) Invalidate(ctx context.Context, resource, scope string) error {
	key := Key(resource, scope)
	c.group.Forget(key)

	cacheInvalidationsTotal.WithLabelValues(resource).Inc()
	if err := c.store.MarkStale(ctx, key); err != nil {
		return fmt.Errorf("querycache: инвалидация %s: %w", key, err)
	}
	c.logger.Debug("Запись кэша помечена устаревшей", slog.String("key", key))
	return nil
}
