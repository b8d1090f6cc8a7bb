package memory

import (
	"context"
	"sync"
	"time"

	"github.com/inspecio/platform-iam/internal/core/port"
	"github.com/inspecio/platform-iam/internal/repository"
)

// CSRFStore is a process-local implementation of port.CSRFStore used when no
// Redis instance is configured.
type CSRFStore struct {
	mu      sync.Mutex
	records map[string]port.CSRFRecord
}

// NewCSRFStore constructs an empty in-memory store.
func NewCSRFStore() *CSRFStore {
	return &CSRFStore{records: make(map[string]port.CSRFRecord)}
}

// Put stores the record, replacing any previous token for the owner.
func (s *CSRFStore) Put(ctx context.Context, record port.CSRFRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.OwnerID] = record
	return nil
}

// Get loads the record for the owner.
func (s *CSRFStore) Get(ctx context.Context, ownerID string) (*port.CSRFRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[ownerID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := record
	return &copied, nil
}

// Delete removes the owner's record. Missing records are a no-op.
func (s *CSRFStore) Delete(ctx context.Context, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, ownerID)
	return nil
}

// PurgeExpired drops records whose expiry is at or before the reference time.
func (s *CSRFStore) PurgeExpired(ctx context.Context, reference time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	purged := 0
	for owner, record := range s.records {
		if !record.ExpiresAt.After(reference) {
			delete(s.records, owner)
			purged++
		}
	}
	return purged, nil
}

var _ port.CSRFStore = (*CSRFStore)(nil)
