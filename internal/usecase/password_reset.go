package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inspecio/platform-iam/internal/core/domain"
	"github.com/inspecio/platform-iam/internal/core/port"
	"github.com/inspecio/platform-iam/internal/infra/logger"
	"github.com/inspecio/platform-iam/internal/infra/security"
	"github.com/inspecio/platform-iam/internal/repository"
)

const (
	resetTokenBytes = 32
	resetTokenTTL   = 30 * time.Minute
)

var (
	// ErrResetTokenInvalid indicates the supplied reset token does not match.
	ErrResetTokenInvalid = errors.New("reset token invalid")
	// ErrResetTokenExpired indicates the reset token is past its expiry.
	ErrResetTokenExpired = errors.New("reset token expired")
)

// PasswordResetService issues and redeems single-use password reset tokens.
// Tokens are stored hashed; the plaintext only ever travels to the account's
// email address.
type PasswordResetService struct {
	users  port.UserRepository
	tokens port.ResetTokenRepository
	events port.EventPublisher
	logger *zap.Logger
	ttl    time.Duration
	now    func() time.Time
}

// NewPasswordResetService constructs a PasswordResetService.
func NewPasswordResetService(users port.UserRepository, tokens port.ResetTokenRepository, events port.EventPublisher, log *zap.Logger) (*PasswordResetService, error) {
	if users == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("reset token repository is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &PasswordResetService{
		users:  users,
		tokens: tokens,
		events: events,
		logger: log,
		ttl:    resetTokenTTL,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// WithClock overrides the internal clock for deterministic tests.
func (s *PasswordResetService) WithClock(clock func() time.Time) *PasswordResetService {
	if clock != nil {
		s.now = clock
	}
	return s
}

// RequestReset issues a reset token for the account. The response is uniform
// whether or not the account exists so the endpoint cannot be used to probe
// for registered addresses; the token is returned only for dispatch to email.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", nil
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}

	if err := s.tokens.RevokeActiveByUser(ctx, user.ID, s.now()); err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.logger.Warn("revoke prior reset tokens failed", zap.String("user_id", user.ID), zap.Error(err))
	}

	plaintext, err := security.GenerateSecureToken(resetTokenBytes)
	if err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}

	record := domain.PasswordResetToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		TokenHash: security.HashToken(plaintext),
		CreatedAt: s.now(),
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := s.tokens.Store(ctx, record); err != nil {
		return "", fmt.Errorf("store reset token: %w", err)
	}

	s.publishRequested(ctx, user, record.ExpiresAt)

	return plaintext, nil
}

// ConfirmReset redeems a token and sets the new password. The token is single
// use: success marks it consumed before the password changes hands.
func (s *PasswordResetService) ConfirmReset(ctx context.Context, email, token, newPassword string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || token == "" {
		return ErrResetTokenInvalid
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrResetTokenInvalid
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	record, err := s.tokens.GetActiveByUser(ctx, user.ID, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrResetTokenInvalid
		}
		return fmt.Errorf("load reset token: %w", err)
	}

	if !record.ExpiresAt.After(s.now()) {
		return ErrResetTokenExpired
	}
	if !security.TokensEqual(record.TokenHash, security.HashToken(token)) {
		return ErrResetTokenInvalid
	}

	if err := security.ValidatePassword(newPassword, email, user.DisplayName); err != nil {
		return err
	}

	if err := s.tokens.MarkUsed(ctx, record.ID, s.now()); err != nil {
		return fmt.Errorf("consume reset token: %w", err)
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	return nil
}

func (s *PasswordResetService) publishRequested(ctx context.Context, user *domain.User, expiresAt time.Time) {
	if s.events == nil {
		return
	}
	event := domain.PasswordResetRequestedEvent{
		EventID:     uuid.NewString(),
		UserID:      user.ID,
		Email:       logger.MaskEmail(user.Email),
		ExpiresAt:   expiresAt,
		RequestedAt: s.now(),
	}
	if err := s.events.PublishPasswordResetRequested(ctx, event); err != nil {
		s.logger.Warn("publish password reset requested failed", zap.Error(err))
	}
}
