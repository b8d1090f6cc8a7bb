package port

import (
	"context"

	"github.com/inspecio/platform-iam/internal/core/domain"
)

// EventPublisher pushes security events to the message bus. Implementations
// must be safe for concurrent use; publishing failures are reported, never
// retried here.
type EventPublisher interface {
	PublishLoginAttempted(ctx context.Context, event domain.LoginAttemptedEvent) error
	PublishPermissionDenied(ctx context.Context, event domain.PermissionDeniedEvent) error
	PublishRateLimitExceeded(ctx context.Context, event domain.RateLimitExceededEvent) error
	PublishPasswordResetRequested(ctx context.Context, event domain.PasswordResetRequestedEvent) error
	PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error
}
