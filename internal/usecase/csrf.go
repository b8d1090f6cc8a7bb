package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/inspecio/platform-iam/internal/core/port"
	"github.com/inspecio/platform-iam/internal/infra/security"
	"github.com/inspecio/platform-iam/internal/repository"
)

const (
	csrfTokenBytes = 32
	csrfTokenTTL   = 24 * time.Hour
)

var (
	// ErrCSRFTokenInvalid indicates the token does not match the stored record.
	ErrCSRFTokenInvalid = errors.New("csrf token invalid")
	// ErrCSRFTokenExpired indicates the stored record has passed its expiry.
	ErrCSRFTokenExpired = errors.New("csrf token expired")
)

// CSRFService issues and verifies single-use anti-forgery tokens. One token is
// active per owner at a time; issuing replaces any prior token.
type CSRFService struct {
	store  port.CSRFStore
	logger *zap.Logger
	ttl    time.Duration
	now    func() time.Time
}

// NewCSRFService constructs a CSRFService over the provided store.
func NewCSRFService(store port.CSRFStore, log *zap.Logger) (*CSRFService, error) {
	if store == nil {
		return nil, fmt.Errorf("csrf store is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CSRFService{
		store:  store,
		logger: log,
		ttl:    csrfTokenTTL,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// WithClock overrides the internal clock for deterministic tests.
func (s *CSRFService) WithClock(clock func() time.Time) *CSRFService {
	if clock != nil {
		s.now = clock
	}
	return s
}

// Issue creates a fresh token for the owner, replacing any existing one, and
// opportunistically drops expired records.
func (s *CSRFService) Issue(ctx context.Context, ownerID string) (string, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return "", fmt.Errorf("owner id is required")
	}

	if purged, err := s.store.PurgeExpired(ctx, s.now()); err != nil {
		s.logger.Warn("purge expired csrf tokens failed", zap.Error(err))
	} else if purged > 0 {
		s.logger.Debug("purged expired csrf tokens", zap.Int("count", purged))
	}

	token, err := security.GenerateSecureToken(csrfTokenBytes)
	if err != nil {
		return "", fmt.Errorf("generate csrf token: %w", err)
	}

	record := port.CSRFRecord{
		Token:     token,
		OwnerID:   ownerID,
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := s.store.Put(ctx, record); err != nil {
		return "", fmt.Errorf("store csrf token: %w", err)
	}

	return token, nil
}

// Verify checks the token for the owner. Matching is constant time; success
// consumes the record so a replayed token fails.
func (s *CSRFService) Verify(ctx context.Context, ownerID, token string) error {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" || token == "" {
		return ErrCSRFTokenInvalid
	}

	record, err := s.store.Get(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCSRFTokenInvalid
		}
		return fmt.Errorf("load csrf token: %w", err)
	}

	if !record.ExpiresAt.After(s.now()) {
		if err := s.store.Delete(ctx, ownerID); err != nil {
			s.logger.Warn("delete expired csrf token failed", zap.Error(err))
		}
		return ErrCSRFTokenExpired
	}

	if !security.TokensEqual(record.Token, token) {
		return ErrCSRFTokenInvalid
	}

	if err := s.store.Delete(ctx, ownerID); err != nil {
		return fmt.Errorf("consume csrf token: %w", err)
	}

	return nil
}

// Invalidate removes any active token for the owner.
func (s *CSRFService) Invalidate(ctx context.Context, ownerID string) error {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil
	}
	return s.store.Delete(ctx, ownerID)
}
