package querycache

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type memoryEntry struct {
	entry     Entry
	expiresAt time.Time // нулевое значение - без срока
}

// MemoryStore - in-memory хранилище на LRU с TTL на уровне записи.
// Каждый экземпляр clinic-ui имеет собственный кэш.
//
// Версии хранятся отдельно от LRU: вытеснение записи не должно сбрасывать
// версию, иначе запоздалая загрузка пройдёт проверку.
type MemoryStore struct {
	mu       sync.Mutex
	cache    *lru.Cache[string, memoryEntry]
	versions map[string]uint64
	now      func() time.Time
}

// NewMemoryStore создаёт хранилище на size записей.
func NewMemoryStore(size int) (*MemoryStore, error) {
	cache, err := lru.New[string, memoryEntry](size)
	if err != nil {
		return nil, fmt.Errorf("querycache: создание LRU: %w", err)
	}
	return &MemoryStore{cache: cache, versions: make(map[string]uint64), now: time.Now}, nil
}

// Get возвращает запись, если она есть и не истекла.
func (s *MemoryStore) Get(_ context.Context, key string) (Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	me, ok := s.cache.Get(key)
	if !ok {
		return Entry{}, false, nil
	}
	if !me.expiresAt.IsZero() && !s.now().Before(me.expiresAt) {
		s.cache.Remove(key)
		return Entry{}, false, nil
	}
	return me.entry, true, nil
}

// Version возвращает текущую версию ключа.
func (s *MemoryStore) Version(_ context.Context, key string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.versions[key], nil
}

// SetIfVersion сохраняет запись, если версия ключа всё ещё равна version.
func (s *MemoryStore) SetIfVersion(_ context.Context, key string, e Entry, ttl time.Duration, version uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.versions[key] != version {
		return false, nil
	}
	me := memoryEntry{entry: e}
	if ttl > 0 {
		me.expiresAt = s.now().Add(ttl)
	}
	s.cache.Add(key, me)
	return true, nil
}

// MarkStale увеличивает версию и помечает запись устаревшей, сохраняя её срок действия.
func (s *MemoryStore) MarkStale(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.versions[key]++
	me, ok := s.cache.Peek(key)
	if !ok {
		return nil
	}
	me.entry.Stale = true
	s.cache.Add(key, me)
	return nil
}

// Len - число записей (включая истёкшие, ещё не вытесненные).
func (s *MemoryStore) Len() int {
	return s.cache.Len()
}
