package memory

import (
	"context"
	"sync"
	"time"

	"github.com/inspecio/platform-iam/internal/core/port"
)

type rateWindow struct {
	count     int
	expiresAt time.Time
}

// RateLimitStore is a process-local fixed-window counter store used when no
// Redis instance is configured.
type RateLimitStore struct {
	mu      sync.Mutex
	windows map[string]rateWindow
	now     func() time.Time
}

// NewRateLimitStore constructs an empty in-memory store.
func NewRateLimitStore() *RateLimitStore {
	return &RateLimitStore{
		windows: make(map[string]rateWindow),
		now:     time.Now,
	}
}

// WithClock overrides the time source for deterministic tests.
func (s *RateLimitStore) WithClock(now func() time.Time) *RateLimitStore {
	if now != nil {
		s.now = now
	}
	return s
}

// Increment bumps the window counter and returns the new count. The first
// increment of a window pins its expiry.
func (s *RateLimitStore) Increment(ctx context.Context, key string, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.now()
	entry, ok := s.windows[key]
	if !ok || !entry.expiresAt.After(current) {
		entry = rateWindow{count: 0, expiresAt: current.Add(window)}
	}
	entry.count++
	s.windows[key] = entry
	return entry.count, nil
}

// TTL reports the remaining lifetime of the window counter.
func (s *RateLimitStore) TTL(ctx context.Context, key string) (time.Duration, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.windows[key]
	if !ok {
		return 0, false, nil
	}

	remaining := entry.expiresAt.Sub(s.now())
	if remaining <= 0 {
		delete(s.windows, key)
		return 0, false, nil
	}
	return remaining, true, nil
}

var _ port.RateLimitStore = (*RateLimitStore)(nil)
