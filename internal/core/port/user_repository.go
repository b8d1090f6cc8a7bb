package port

import (
	"context"
	"time"

	"github.com/inspecio/platform-iam/internal/core/domain"
)

// UserRepository provides persistence operations for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	UpdatePasswordHash(ctx context.Context, id, hash string) error
	CountByTeam(ctx context.Context, teamID string) (int64, error)
}

// ResetTokenRepository persists single-use password reset token hashes.
type ResetTokenRepository interface {
	Store(ctx context.Context, token domain.PasswordResetToken) error
	GetActiveByUser(ctx context.Context, userID string, now time.Time) (*domain.PasswordResetToken, error)
	MarkUsed(ctx context.Context, id string, at time.Time) error
	RevokeActiveByUser(ctx context.Context, userID string, at time.Time) error
}
