package cache

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

var errUnexpectedValue = errors.New("unexpected value")

func newTestStore(ttl time.Duration, enabled bool) (*Store, *time.Time) {
	store := NewStore(ttl, enabled)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	return store, &now
}

func TestStore_RoundTripWithinTTL(t *testing.T) {
	t.Parallel()

	store, now := newTestStore(time.Minute, true)
	ctx := context.Background()

	store.Set(ctx, "k", "v")

	v, ok := store.Get(ctx, "k")
	if !ok || v != "v" {
		t.Fatalf("Get(k) = %v, %v; want v, true", v, ok)
	}

	*now = now.Add(time.Minute + time.Second)
	if _, ok := store.Get(ctx, "k"); ok {
		t.Fatal("entry should be absent after expiry")
	}
	if stats := store.Stats(ctx); stats.TotalEntries != 0 {
		t.Fatalf("expired entry should have been lazily evicted, total=%d", stats.TotalEntries)
	}
}

func TestStore_SetOverwritesExistingEntry(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(time.Minute, true)
	ctx := context.Background()

	store.Set(ctx, "k", "old")
	store.Set(ctx, "k", "new")

	v, ok := store.Get(ctx, "k")
	if !ok || v != "new" {
		t.Fatalf("Get(k) = %v, %v; want new, true", v, ok)
	}
}

func TestStore_DeleteReportsPresence(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(time.Minute, true)
	ctx := context.Background()

	store.Set(ctx, "k", 1)
	if !store.Delete(ctx, "k") {
		t.Fatal("Delete of present key should report true")
	}
	if store.Delete(ctx, "k") {
		t.Fatal("Delete of absent key should report false")
	}
}

func TestStore_ClearReturnsRemovedCount(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(time.Minute, true)
	ctx := context.Background()

	store.Set(ctx, "a", 1)
	store.Set(ctx, "b", 2)
	store.Set(ctx, "c", 3)

	if removed := store.Clear(ctx); removed != 3 {
		t.Fatalf("Clear removed %d entries, want 3", removed)
	}
	if stats := store.Stats(ctx); stats.TotalEntries != 0 {
		t.Fatalf("store not empty after Clear: %d entries", stats.TotalEntries)
	}
}

func TestStore_SweepRemovesExpiredWithoutReads(t *testing.T) {
	t.Parallel()

	store, now := newTestStore(time.Minute, true)
	ctx := context.Background()

	store.Set(ctx, "short", "a")
	store.SetTTL(ctx, "long", "b", time.Hour)

	*now = now.Add(2 * time.Minute)

	if removed := store.Sweep(ctx); removed != 1 {
		t.Fatalf("Sweep removed %d entries, want 1", removed)
	}
	if _, ok := store.Get(ctx, "long"); !ok {
		t.Fatal("unexpired entry must survive sweep")
	}
	if stats := store.Stats(ctx); stats.TotalEntries != 1 {
		t.Fatalf("stats after sweep: total=%d, want 1", stats.TotalEntries)
	}
}

func TestStore_StatsCountsValidAndExpired(t *testing.T) {
	t.Parallel()

	store, now := newTestStore(time.Minute, true)
	ctx := context.Background()

	store.Set(ctx, "fresh", map[string]string{"name": "keeper"})
	store.SetTTL(ctx, "stale", "gone", time.Second)
	*now = now.Add(30 * time.Second)

	stats := store.Stats(ctx)
	if !stats.Enabled {
		t.Fatal("stats should report enabled store")
	}
	if stats.TotalEntries != 2 || stats.ValidEntries != 1 || stats.ExpiredEntries != 1 {
		t.Fatalf("stats = %+v; want total=2 valid=1 expired=1", stats)
	}
	if stats.EstimatedSizeBytes <= 0 {
		t.Fatalf("estimated size should be positive, got %d", stats.EstimatedSizeBytes)
	}
	if stats.TTLMinutes != 1 {
		t.Fatalf("ttlMinutes = %v, want 1", stats.TTLMinutes)
	}
}

func TestStore_DisabledKeepsSurface(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(time.Minute, false)
	ctx := context.Background()

	store.Set(ctx, "k", "v")
	if _, ok := store.Get(ctx, "k"); ok {
		t.Fatal("disabled store must always miss")
	}
	if store.Delete(ctx, "k") {
		t.Fatal("disabled store Delete must be a no-op")
	}

	stats := store.Stats(ctx)
	if stats.Enabled || stats.TotalEntries != 0 {
		t.Fatalf("disabled stats = %+v; want zero state", stats)
	}
	if removed := store.Clear(ctx); removed != 0 {
		t.Fatalf("disabled Clear removed %d, want 0", removed)
	}
}

func TestStore_GetOrLoad_UsesSingleFlight(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute, true)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "value", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "same-key", loader)
			if err != nil {
				errCh <- err
				return
			}
			if got, _ := v.(string); got != "value" {
				errCh <- errUnexpectedValue
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_DisabledAlwaysLoads(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute, false)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		return "loaded", nil
	}

	for i := 0; i < 3; i++ {
		if _, err := store.GetOrLoad(context.Background(), "k", loader); err != nil {
			t.Fatalf("GetOrLoad error: %v", err)
		}
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("loader called %d times, want 3", got)
	}
}

func TestKey_QueryOrderIndependent(t *testing.T) {
	t.Parallel()

	first := url.Values{}
	first.Set("season", "2026")
	first.Set("page", "2")

	second := url.Values{}
	second.Set("page", "2")
	second.Set("season", "2026")

	a := Key("get", "/v1/leagues", first)
	b := Key("GET", "/v1/leagues", second)
	if a != b {
		t.Fatalf("keys differ for equivalent requests: %q vs %q", a, b)
	}

	c := Key("GET", "/v1/leagues", url.Values{"page": {"3"}})
	if a == c {
		t.Fatalf("different queries must not collide: %q", c)
	}
}
