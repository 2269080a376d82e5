// File: internal/infra/redis/marker_store_test.go
package redis

import (
	"context"
	"testing"
	"time"

	"subscription-retention-service/internal/domain/model"
)

// memRedis implements RedisClient over in-process maps.
type memRedis struct {
	hashes   map[string]map[string]string
	counters map[string]int64
}

func newMemRedis() *memRedis {
	return &memRedis{hashes: map[string]map[string]string{}, counters: map[string]int64{}}
}

func (m *memRedis) Ping(ctx context.Context) error { return nil }

func (m *memRedis) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	out := map[string]string{}
	for k, v := range m.hashes[key] {
		out[k] = v
	}
	return out, nil
}

func (m *memRedis) HSet(ctx context.Context, key string, values ...interface{}) error {
	h := m.hashes[key]
	if h == nil {
		h = map[string]string{}
		m.hashes[key] = h
	}
	for i := 0; i+1 < len(values); i += 2 {
		h[values[i].(string)] = values[i+1].(string)
	}
	return nil
}

func (m *memRedis) Incr(ctx context.Context, key string) (int64, error) {
	m.counters[key]++
	return m.counters[key], nil
}

func (m *memRedis) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return nil
}

func (m *memRedis) Del(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.hashes, k)
		delete(m.counters, k)
	}
	return nil
}

func (m *memRedis) FlushDB(ctx context.Context) error { return nil }
func (m *memRedis) Close() error                      { return nil }

func TestMarkerStore_StampAndRead(t *testing.T) {
	t.Parallel()

	store := NewMarkerStore(newMemRedis(), model.BackendWCS)
	ctx := context.Background()

	m, err := store.Markers(ctx, "42")
	if err != nil {
		t.Fatalf("Markers: %v", err)
	}
	if m.PauseUsedAt != nil || m.SkipUsedAt != nil || m.DiscountUsedAt != nil {
		t.Fatalf("fresh subscription should have no markers, got %+v", m)
	}

	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	if err := store.Stamp(ctx, "42", model.FamilyPause, at); err != nil {
		t.Fatalf("Stamp: %v", err)
	}
	if err := store.Stamp(ctx, "42", model.FamilyDiscount, at.Add(time.Hour)); err != nil {
		t.Fatalf("Stamp: %v", err)
	}

	m, err = store.Markers(ctx, "42")
	if err != nil {
		t.Fatalf("Markers: %v", err)
	}
	if m.PauseUsedAt == nil || !m.PauseUsedAt.Equal(at) {
		t.Fatalf("expected pause marker %v, got %v", at, m.PauseUsedAt)
	}
	if m.DiscountUsedAt == nil || !m.DiscountUsedAt.Equal(at.Add(time.Hour)) {
		t.Fatalf("expected discount marker, got %v", m.DiscountUsedAt)
	}
	if m.SkipUsedAt != nil {
		t.Fatalf("skip marker should be unset, got %v", m.SkipUsedAt)
	}
}

func TestMarkerStore_OverwriteOnReapplication(t *testing.T) {
	t.Parallel()

	store := NewMarkerStore(newMemRedis(), model.BackendWCS)
	ctx := context.Background()

	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	second := first.AddDate(0, 7, 0)
	_ = store.Stamp(ctx, "42", model.FamilySkip, first)
	if err := store.Stamp(ctx, "42", model.FamilySkip, second); err != nil {
		t.Fatalf("Stamp: %v", err)
	}

	m, _ := store.Markers(ctx, "42")
	if m.SkipUsedAt == nil || !m.SkipUsedAt.Equal(second) {
		t.Fatalf("expected overwritten marker %v, got %v", second, m.SkipUsedAt)
	}
}

func TestMarkerStore_KeysScopedByBackend(t *testing.T) {
	t.Parallel()

	mem := newMemRedis()
	wcs := NewMarkerStore(mem, model.BackendWCS)
	sumo := NewMarkerStore(mem, model.BackendSUMO)
	ctx := context.Background()

	_ = wcs.Stamp(ctx, "42", model.FamilyPause, time.Now())
	m, _ := sumo.Markers(ctx, "42")
	if m.PauseUsedAt != nil {
		t.Fatal("backends must not share marker namespaces")
	}
}

func TestRateLimiter_FixedWindow(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(newMemRedis())
	ctx := context.Background()
	key := CustomerActionKey(7, "offers_apply")

	for i := 0; i < 3; i++ {
		ok, err := rl.Allow(ctx, key, 3, time.Minute)
		if err != nil || !ok {
			t.Fatalf("request %d should be allowed: ok=%v err=%v", i+1, ok, err)
		}
	}
	ok, err := rl.Allow(ctx, key, 3, time.Minute)
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if ok {
		t.Fatal("fourth request in window should be rejected")
	}
}
