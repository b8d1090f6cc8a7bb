package port

import (
	"context"
	"time"
)

// RateLimitStore maintains fixed-window counters. Increment creates the
// counter with the window TTL on first use; the window resets implicitly when
// the entry expires.
type RateLimitStore interface {
	Increment(ctx context.Context, key string, window time.Duration) (int, error)
	// TTL reports the remaining lifetime of the counter entry, or false when
	// no counter exists for the key.
	TTL(ctx context.Context, key string) (time.Duration, bool, error)
}
