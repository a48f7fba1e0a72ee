package querycache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newMemoryCache(t *testing.T) (*Cache, *MemoryStore) {
	t.Helper()
	store, err := NewMemoryStore(16)
	if err != nil {
		t.Fatalf("NewMemoryStore: %v", err)
	}
	return New(store, testLogger()), store
}

// put записывает запись по текущей версии ключа.
func put(t *testing.T, store Store, key string, e Entry, ttl time.Duration) {
	t.Helper()
	ctx := context.Background()
	version, err := store.Version(ctx, key)
	if err != nil {
		t.Fatalf("Version: %v", err)
	}
	ok, err := store.SetIfVersion(ctx, key, e, ttl, version)
	if err != nil || !ok {
		t.Fatalf("SetIfVersion: ok=%v err=%v", ok, err)
	}
}

type patient struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// counter возвращает fetch-функцию, считающую вызовы.
func counter(calls *int32, value []patient) func(context.Context) ([]patient, error) {
	return func(context.Context) ([]patient, error) {
		atomic.AddInt32(calls, 1)
		return value, nil
	}
}

func TestFetch_HitAfterMiss(t *testing.T) {
	c, _ := newMemoryCache(t)
	ctx := context.Background()
	var calls int32
	want := []patient{{ID: "1", Name: "Ana"}}

	for i := 0; i < 3; i++ {
		got, err := Fetch(ctx, c, ResourcePatients, "u1", time.Minute, counter(&calls, want))
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		if len(got) != 1 || got[0].Name != "Ana" {
			t.Fatalf("Неожиданное значение: %+v", got)
		}
	}
	if calls != 1 {
		t.Errorf("fetch вызван %d раз, ожидали 1", calls)
	}
}

func TestFetch_InvalidateForcesRefetch(t *testing.T) {
	c, _ := newMemoryCache(t)
	ctx := context.Background()
	var calls int32

	if _, err := Fetch(ctx, c, ResourcePatients, "u1", time.Minute, counter(&calls, nil)); err != nil {
		t.Fatal(err)
	}
	if err := c.Invalidate(ctx, ResourcePatients, "u1"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	got, err := Fetch(ctx, c, ResourcePatients, "u1", time.Minute, counter(&calls, []patient{{ID: "2"}}))
	if err != nil {
		t.Fatal(err)
	}
	if calls != 2 || len(got) != 1 || got[0].ID != "2" {
		t.Errorf("calls = %d, got = %+v; ожидали повторную загрузку", calls, got)
	}

	// После перезагрузки запись снова свежая
	if _, err := Fetch(ctx, c, ResourcePatients, "u1", time.Minute, counter(&calls, nil)); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, ожидали попадание после перезагрузки", calls)
	}
}

func TestFetch_ScopesAreIsolated(t *testing.T) {
	c, _ := newMemoryCache(t)
	ctx := context.Background()
	var calls int32

	_, _ = Fetch(ctx, c, ResourcePatients, "u1", 0, counter(&calls, []patient{{ID: "a"}}))
	got, _ := Fetch(ctx, c, ResourcePatients, "u2", 0, counter(&calls, []patient{{ID: "b"}}))
	if calls != 2 || got[0].ID != "b" {
		t.Errorf("Области не изолированы: calls = %d, got = %+v", calls, got)
	}

	// Инвалидация одной области не трогает другую
	_ = c.Invalidate(ctx, ResourcePatients, "u1")
	_, _ = Fetch(ctx, c, ResourcePatients, "u2", 0, counter(&calls, nil))
	if calls != 2 {
		t.Errorf("calls = %d, инвалидация u1 затронула u2", calls)
	}
}

func TestFetch_ErrorNotCached(t *testing.T) {
	c, _ := newMemoryCache(t)
	ctx := context.Background()
	boom := errors.New("clinic-api недоступен")

	_, err := Fetch(ctx, c, ResourceUser, "u1", 0, func(context.Context) (patient, error) {
		return patient{}, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Ожидали исходную ошибку, получили %v", err)
	}

	var calls int32
	got, err := Fetch(ctx, c, ResourceUser, "u1", 0, func(context.Context) (patient, error) {
		atomic.AddInt32(&calls, 1)
		return patient{ID: "u1"}, nil
	})
	if err != nil || calls != 1 || got.ID != "u1" {
		t.Errorf("После ошибки ожидали новую загрузку: calls = %d, err = %v", calls, err)
	}
}

func TestFetch_ConcurrentMissesCollapse(t *testing.T) {
	c, _ := newMemoryCache(t)
	ctx := context.Background()
	var calls int32
	release := make(chan struct{})

	fetch := func(context.Context) ([]patient, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return []patient{{ID: "1"}}, nil
	}

	const n = 10
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if _, err := Fetch(ctx, c, ResourcePatients, "u1", time.Minute, fetch); err != nil {
				t.Errorf("Fetch: %v", err)
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("fetch вызван %d раз, ожидали 1", got)
	}
}

// Результат запроса, начатого до инвалидации, не кэшируется как свежий.
func TestFetch_InvalidateDuringFetch(t *testing.T) {
	c, _ := newMemoryCache(t)
	ctx := context.Background()

	_, err := Fetch(ctx, c, ResourcePatients, "u1", time.Minute, func(ctx context.Context) ([]patient, error) {
		_ = c.Invalidate(ctx, ResourcePatients, "u1")
		return []patient{{ID: "old"}}, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	var calls int32
	got, _ := Fetch(ctx, c, ResourcePatients, "u1", time.Minute, counter(&calls, []patient{{ID: "new"}}))
	if calls != 1 || got[0].ID != "new" {
		t.Errorf("Ожидали повторную загрузку после инвалидации: calls = %d, got = %+v", calls, got)
	}
}

// invalidatingStore вызывает before непосредственно перед записью.
type invalidatingStore struct {
	Store
	before func()
}

func (s *invalidatingStore) SetIfVersion(ctx context.Context, key string, e Entry, ttl time.Duration, version uint64) (bool, error) {
	s.before()
	return s.Store.SetIfVersion(ctx, key, e, ttl, version)
}

// Инвалидация между окончанием загрузки и записью тоже не теряется.
func TestFetch_InvalidateBeforeStoreWrite(t *testing.T) {
	mem, _ := NewMemoryStore(16)
	store := &invalidatingStore{Store: mem}
	c := New(store, testLogger())
	ctx := context.Background()

	var once sync.Once
	store.before = func() {
		once.Do(func() { _ = c.Invalidate(ctx, ResourcePatients, "u1") })
	}

	var calls int32
	if _, err := Fetch(ctx, c, ResourcePatients, "u1", time.Minute, counter(&calls, []patient{{ID: "old"}})); err != nil {
		t.Fatal(err)
	}
	got, err := Fetch(ctx, c, ResourcePatients, "u1", time.Minute, counter(&calls, []patient{{ID: "new"}}))
	if err != nil {
		t.Fatal(err)
	}
	if calls != 2 || got[0].ID != "new" {
		t.Errorf("Ожидали повторную загрузку: calls = %d, got = %+v", calls, got)
	}
}

// Отмена запроса, начавшего загрузку, не обрывает её для остальных ожидающих.
func TestFetch_FirstCallerCancelled(t *testing.T) {
	c, _ := newMemoryCache(t)
	started := make(chan struct{})
	release := make(chan struct{})

	fetch := func(ctx context.Context) ([]patient, error) {
		close(started)
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		if _, ok := ctx.Deadline(); !ok {
			t.Error("Загрузка должна быть ограничена по времени")
		}
		return []patient{{ID: "1"}}, nil
	}

	firstCtx, cancel := context.WithCancel(context.Background())
	firstDone := make(chan error, 1)
	go func() {
		_, err := Fetch(firstCtx, c, ResourcePatients, "u1", time.Minute, fetch)
		firstDone <- err
	}()
	<-started

	secondDone := make(chan error, 1)
	var second []patient
	go func() {
		var err error
		second, err = Fetch(context.Background(), c, ResourcePatients, "u1", time.Minute, fetch)
		secondDone <- err
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()
	time.Sleep(20 * time.Millisecond)
	close(release)

	if err := <-secondDone; err != nil {
		t.Fatalf("Ожидающий запрос получил ошибку: %v", err)
	}
	if len(second) != 1 || second[0].ID != "1" {
		t.Errorf("Неожиданное значение: %+v", second)
	}
	if err := <-firstDone; err != nil {
		t.Errorf("Загрузка оборвана отменой первого запроса: %v", err)
	}
}

func TestMemoryStore_SetIfVersion(t *testing.T) {
	store, _ := NewMemoryStore(4)
	ctx := context.Background()

	v, _ := store.Version(ctx, "k")
	// Инвалидация отсутствующей записи всё равно меняет версию
	_ = store.MarkStale(ctx, "k")
	if ok, err := store.SetIfVersion(ctx, "k", Entry{Data: []byte(`1`)}, 0, v); err != nil || ok {
		t.Fatalf("Запись по устаревшей версии: ok=%v err=%v", ok, err)
	}
	if store.Len() != 0 {
		t.Error("Запись по устаревшей версии не должна сохраняться")
	}

	v, _ = store.Version(ctx, "k")
	if ok, _ := store.SetIfVersion(ctx, "k", Entry{Data: []byte(`2`)}, 0, v); !ok {
		t.Fatal("Запись по текущей версии должна сохраняться")
	}
	e, ok, _ := store.Get(ctx, "k")
	if !ok || e.Stale || string(e.Data) != "2" {
		t.Errorf("Get = %+v ok=%v", e, ok)
	}
}

func TestMemoryStore_TTL(t *testing.T) {
	store, _ := NewMemoryStore(4)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	put(t, store, "k", Entry{Data: []byte(`1`)}, time.Minute)
	put(t, store, "forever", Entry{Data: []byte(`2`)}, 0)

	if _, ok, _ := store.Get(ctx, "k"); !ok {
		t.Fatal("Запись должна быть до истечения TTL")
	}

	now = now.Add(time.Minute)
	if _, ok, _ := store.Get(ctx, "k"); ok {
		t.Error("Запись должна истечь")
	}
	now = now.Add(24 * time.Hour)
	if _, ok, _ := store.Get(ctx, "forever"); !ok {
		t.Error("Запись без TTL не должна истекать")
	}
}

func TestMemoryStore_MarkStale(t *testing.T) {
	store, _ := NewMemoryStore(4)
	ctx := context.Background()

	if err := store.MarkStale(ctx, "missing"); err != nil {
		t.Fatalf("MarkStale отсутствующей записи: %v", err)
	}
	if store.Len() != 0 {
		t.Error("MarkStale не должен создавать запись")
	}

	put(t, store, "k", Entry{Data: []byte(`1`)}, 0)
	_ = store.MarkStale(ctx, "k")
	e, ok, _ := store.Get(ctx, "k")
	if !ok || !e.Stale || string(e.Data) != "1" {
		t.Errorf("Ожидали устаревшую запись с данными, получили %+v (ok=%v)", e, ok)
	}
}

func TestMemoryStore_Evicts(t *testing.T) {
	store, _ := NewMemoryStore(2)
	ctx := context.Background()
	for _, k := range []string{"a", "b", "c"} {
		put(t, store, k, Entry{Data: []byte(`1`)}, 0)
	}
	if _, ok, _ := store.Get(ctx, "a"); ok {
		t.Error("Старейшая запись должна быть вытеснена")
	}
}
