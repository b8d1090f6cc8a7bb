package port

import (
	"context"
	"time"
)

// CSRFRecord is a stored anti-forgery token bound to one owner.
type CSRFRecord struct {
	Token     string
	OwnerID   string
	ExpiresAt time.Time
}

// CSRFStore keeps at most one active token per owner. Implementations must
// treat Delete of a missing record as a no-op.
type CSRFStore interface {
	Put(ctx context.Context, record CSRFRecord) error
	Get(ctx context.Context, ownerID string) (*CSRFRecord, error)
	Delete(ctx context.Context, ownerID string) error
	// PurgeExpired removes records whose expiry is at or before the reference
	// time and returns how many were dropped.
	PurgeExpired(ctx context.Context, reference time.Time) (int, error)
}
