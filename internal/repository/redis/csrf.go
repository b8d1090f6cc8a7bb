package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/inspecio/platform-iam/internal/core/port"
	"github.com/inspecio/platform-iam/internal/repository"
)

// CSRFStore keeps one anti-forgery token per owner in Redis. Records expire
// through native key TTLs so PurgeExpired has nothing to sweep.
type CSRFStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewCSRFStore constructs a store using the provided Redis client.
func NewCSRFStore(client *redis.Client, keyPrefix string) *CSRFStore {
	return &CSRFStore{client: client, keyPrefix: keyPrefix}
}

type csrfPayload struct {
	Token     string    `json:"token"`
	OwnerID   string    `json:"owner_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Put stores the record, replacing any previous token for the owner.
func (s *CSRFStore) Put(ctx context.Context, record port.CSRFRecord) error {
	payload, err := json.Marshal(csrfPayload{
		Token:     record.Token,
		OwnerID:   record.OwnerID,
		ExpiresAt: record.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("marshal csrf record: %w", err)
	}

	ttl := time.Until(record.ExpiresAt)
	if ttl <= 0 {
		return errors.New("csrf record already expired")
	}

	if err := s.client.Set(ctx, s.key(record.OwnerID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Get loads the active record for the owner.
func (s *CSRFStore) Get(ctx context.Context, ownerID string) (*port.CSRFRecord, error) {
	raw, err := s.client.Get(ctx, s.key(ownerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var payload csrfPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("unmarshal csrf record: %w", err)
	}

	return &port.CSRFRecord{
		Token:     payload.Token,
		OwnerID:   payload.OwnerID,
		ExpiresAt: payload.ExpiresAt,
	}, nil
}

// Delete removes the owner's record. Missing records are a no-op.
func (s *CSRFStore) Delete(ctx context.Context, ownerID string) error {
	if err := s.client.Del(ctx, s.key(ownerID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// PurgeExpired is a no-op because Redis drops expired keys on its own.
func (s *CSRFStore) PurgeExpired(ctx context.Context, reference time.Time) (int, error) {
	return 0, nil
}

func (s *CSRFStore) key(ownerID string) string {
	if s.keyPrefix == "" {
		return ownerID
	}
	return fmt.Sprintf("%s:%s", s.keyPrefix, ownerID)
}

var _ port.CSRFStore = (*CSRFStore)(nil)
