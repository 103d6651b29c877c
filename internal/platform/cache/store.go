package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/draftline/draftline/internal/platform/resilience"
)

type entry struct {
	value     any
	createdAt time.Time
	expiresAt time.Time
}

func (e entry) live(now time.Time) bool {
	return e.expiresAt.After(now)
}

// Stats is a point-in-time view of the store, reported for operability.
// EstimatedSizeBytes sums the serialized size of every payload; it is a
// reporting metric only and drives no eviction.
type Stats struct {
	Enabled            bool    `json:"enabled"`
	TotalEntries       int     `json:"totalEntries"`
	ValidEntries       int     `json:"validEntries"`
	ExpiredEntries     int     `json:"expiredEntries"`
	TTLMinutes         float64 `json:"ttlMinutes"`
	EstimatedSizeBytes int     `json:"estimatedSizeBytes"`
}

// Store is an in-memory key/value cache with per-entry expiry.
//
// A disabled store keeps the same surface: Get always misses, Set and Delete
// are no-ops, Clear and Stats report empty state. Callers never branch on
// the enabled flag themselves.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	enabled bool
	flight  resilience.SingleFlight
	now     func() time.Time
}

func NewStore(ttl time.Duration, enabled bool) *Store {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Store{
		entries: make(map[string]entry),
		ttl:     ttl,
		enabled: enabled,
		now:     time.Now,
	}
}

func (s *Store) Get(_ context.Context, key string) (any, bool) {
	if key == "" || !s.enabled {
		return nil, false
	}

	now := s.now()
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !e.live(now) {
		s.mu.Lock()
		// Re-check under the write lock; Set may have refreshed the entry.
		if current, still := s.entries[key]; still && !current.live(s.now()) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, false
	}

	return e.value, true
}

// Set stores value under key with the store-wide default TTL.
func (s *Store) Set(ctx context.Context, key string, value any) {
	s.SetTTL(ctx, key, value, s.ttl)
}

// SetTTL stores value under key with an explicit TTL, overwriting any
// existing entry.
func (s *Store) SetTTL(_ context.Context, key string, value any, ttl time.Duration) {
	if key == "" || !s.enabled {
		return
	}
	if ttl <= 0 {
		ttl = s.ttl
	}

	now := s.now()
	s.mu.Lock()
	s.entries[key] = entry{
		value:     value,
		createdAt: now,
		expiresAt: now.Add(ttl),
	}
	s.mu.Unlock()
}

func (s *Store) Delete(_ context.Context, key string) bool {
	if key == "" || !s.enabled {
		return false
	}

	s.mu.Lock()
	_, ok := s.entries[key]
	delete(s.entries, key)
	s.mu.Unlock()

	return ok
}

// Clear removes every entry and reports how many were removed.
func (s *Store) Clear(_ context.Context) int {
	s.mu.Lock()
	removed := len(s.entries)
	s.entries = make(map[string]entry)
	s.mu.Unlock()

	return removed
}

// Sweep removes all expired entries, read or not. Cost is proportional to
// the number of entries held at sweep time.
func (s *Store) Sweep(_ context.Context) int {
	now := s.now()

	s.mu.Lock()
	removed := 0
	for key, e := range s.entries {
		if !e.live(now) {
			delete(s.entries, key)
			removed++
		}
	}
	s.mu.Unlock()

	return removed
}

// RunSweeper sweeps on a fixed interval until ctx is done. It is meant to
// run for the lifetime of the process.
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration, onSweep func(removed int)) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := s.Sweep(ctx)
			if onSweep != nil {
				onSweep(removed)
			}
		}
	}
}

func (s *Store) Stats(_ context.Context) Stats {
	stats := Stats{
		Enabled:    s.enabled,
		TTLMinutes: s.ttl.Minutes(),
	}

	now := s.now()
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats.TotalEntries = len(s.entries)
	for _, e := range s.entries {
		if e.live(now) {
			stats.ValidEntries++
		} else {
			stats.ExpiredEntries++
		}
		if raw, err := sonic.Marshal(e.value); err == nil {
			stats.EstimatedSizeBytes += len(raw)
		}
	}

	return stats
}

// GetOrLoad returns the cached value for key, loading and storing it on a
// miss. Concurrent loads for the same key are collapsed to one call.
func (s *Store) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if key == "" || !s.enabled {
		return loader(ctx)
	}

	if value, ok := s.Get(ctx, key); ok {
		return value, nil
	}

	value, err, _ := s.flight.Do(key, func() (any, error) {
		if cached, ok := s.Get(ctx, key); ok {
			return cached, nil
		}

		loaded, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		s.Set(ctx, key, loaded)
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}

	return value, nil
}
