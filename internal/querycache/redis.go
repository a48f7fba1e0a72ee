package querycache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Поля hash-записи в Redis.
const (
	fieldData  = "data"
	fieldStale = "stale"
)

// versionSuffix - суффикс ключа-счётчика версии записи.
const versionSuffix = ":ver"

// setIfVersionScript пишет запись, только если версия не изменилась.
// KEYS: запись, версия. ARGV: ожидаемая версия, data, stale, ttl в мс (0 - без срока).
var setIfVersionScript = redis.NewScript(`
local v = redis.call('GET', KEYS[2])
if not v then v = '0' end
if v ~= ARGV[1] then return 0 end
redis.call('HSET', KEYS[1], 'data', ARGV[2], 'stale', ARGV[3])
local ttl = tonumber(ARGV[4])
if ttl > 0 then
  redis.call('PEXPIRE', KEYS[1], ttl)
else
  redis.call('PERSIST', KEYS[1])
end
return 1
`)

// markStaleScript увеличивает версию и ставит stale=1 только существующей записи.
// KEYS: запись, версия.
var markStaleScript = redis.NewScript(`
redis.call('INCR', KEYS[2])
if redis.call('EXISTS', KEYS[1]) == 1 then
  redis.call('HSET', KEYS[1], 'stale', '1')
end
return 1
`)

// RedisStore - хранилище в Redis: запись кэша - hash {data, stale},
// версия - отдельный счётчик key+":ver" без срока действия.
// Общий Redis позволяет нескольким репликам clinic-ui видеть одну инвалидацию.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore создаёт хранилище поверх готового клиента.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

// Get читает запись. Hash без поля data считается отсутствующим.
func (s *RedisStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	fields, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Entry{}, false, nil
		}
		return Entry{}, false, fmt.Errorf("redis HGETALL %s: %w", key, err)
	}
	data, ok := fields[fieldData]
	if !ok {
		return Entry{}, false, nil
	}
	return Entry{Data: []byte(data), Stale: fields[fieldStale] == "1"}, true, nil
}

// Version возвращает текущую версию ключа (0, если инвалидаций не было).
func (s *RedisStore) Version(ctx context.Context, key string) (uint64, error) {
	v, err := s.client.Get(ctx, key+versionSuffix).Uint64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis GET %s%s: %w", key, versionSuffix, err)
	}
	return v, nil
}

// SetIfVersion атомарно (Lua) сохраняет запись, если версия ключа равна version.
func (s *RedisStore) SetIfVersion(ctx context.Context, key string, e Entry, ttl time.Duration, version uint64) (bool, error) {
	stale := "0"
	if e.Stale {
		stale = "1"
	}
	var ttlMillis int64
	if ttl > 0 {
		ttlMillis = max(ttl.Milliseconds(), 1)
	}
	n, err := setIfVersionScript.Run(ctx, s.client,
		[]string{key, key + versionSuffix},
		strconv.FormatUint(version, 10), e.Data, stale, ttlMillis,
	).Int()
	if err != nil {
		return false, fmt.Errorf("redis set %s: %w", key, err)
	}
	return n == 1, nil
}

// MarkStale атомарно (Lua) увеличивает версию и помечает существующую запись.
// Отсутствующая запись не создаётся.
func (s *RedisStore) MarkStale(ctx context.Context, key string) error {
	if err := markStaleScript.Run(ctx, s.client, []string{key, key + versionSuffix}).Err(); err != nil {
		return fmt.Errorf("redis mark stale %s: %w", key, err)
	}
	return nil
}

// RedisReadinessChecker проверяет доступность Redis через PING.
type RedisReadinessChecker struct {
	client redis.UniversalClient
}

// NewRedisReadinessChecker создаёт проверку готовности Redis.
func NewRedisReadinessChecker(client redis.UniversalClient) *RedisReadinessChecker {
	return &RedisReadinessChecker{client: client}
}

// CheckReady возвращает "ok" или "fail".
func (c *RedisReadinessChecker) CheckReady() (string, string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := c.client.Ping(ctx).Err(); err != nil {
		return "fail", fmt.Sprintf("Redis недоступен: %v", err)
	}
	return "ok", "Redis доступен"
}
