package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/inspecio/platform-iam/internal/core/port"
)

// RateLimitStore keeps fixed-window counters in Redis. The counter key is
// created with the window TTL on the first increment, so the window resets
// automatically when the key expires.
type RateLimitStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRateLimitStore constructs a store using the provided Redis client.
func NewRateLimitStore(client *redis.Client, keyPrefix string) *RateLimitStore {
	return &RateLimitStore{client: client, keyPrefix: keyPrefix}
}

// Increment bumps the window counter and returns the new count.
func (s *RateLimitStore) Increment(ctx context.Context, key string, window time.Duration) (int, error) {
	fullKey := s.key(key)

	count, err := s.client.Incr(ctx, fullKey).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incr: %w", err)
	}

	// Only the increment that opens the window sets the TTL. ExpireNX keeps
	// late writers from sliding the window forward.
	if window > 0 {
		if err := s.client.ExpireNX(ctx, fullKey, window).Err(); err != nil {
			return 0, fmt.Errorf("redis expire: %w", err)
		}
	}

	return int(count), nil
}

// TTL reports the remaining lifetime of the window counter.
func (s *RateLimitStore) TTL(ctx context.Context, key string) (time.Duration, bool, error) {
	ttl, err := s.client.TTL(ctx, s.key(key)).Result()
	if err != nil {
		return 0, false, fmt.Errorf("redis ttl: %w", err)
	}
	if ttl < 0 {
		return 0, false, nil
	}
	return ttl, true, nil
}

func (s *RateLimitStore) key(key string) string {
	if s.keyPrefix == "" {
		return key
	}
	return fmt.Sprintf("%s:%s", s.keyPrefix, key)
}

var _ port.RateLimitStore = (*RateLimitStore)(nil)
