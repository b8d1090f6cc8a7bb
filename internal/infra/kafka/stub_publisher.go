package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/inspecio/platform-iam/internal/core/domain"
	"github.com/inspecio/platform-iam/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for
// development environments without brokers.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, userID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("stub event published",
		zap.String("event_type", eventType),
		zap.String("user_id", userID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishLoginAttempted logs login.attempted events.
func (p *StubPublisher) PublishLoginAttempted(_ context.Context, event domain.LoginAttemptedEvent) error {
	p.logEvent("login.attempted", event.UserID, event.AttemptedAt, event)
	return nil
}

// PublishPermissionDenied logs permission.denied events.
func (p *StubPublisher) PublishPermissionDenied(_ context.Context, event domain.PermissionDeniedEvent) error {
	p.logEvent("permission.denied", event.UserID, event.DeniedAt, event)
	return nil
}

// PublishRateLimitExceeded logs rate_limit.exceeded events.
func (p *StubPublisher) PublishRateLimitExceeded(_ context.Context, event domain.RateLimitExceededEvent) error {
	p.logEvent("rate_limit.exceeded", "", event.ExceededAt, event)
	return nil
}

// PublishPasswordResetRequested logs password_reset.requested events.
func (p *StubPublisher) PublishPasswordResetRequested(_ context.Context, event domain.PasswordResetRequestedEvent) error {
	p.logEvent("password_reset.requested", event.UserID, event.RequestedAt, event)
	return nil
}

// PublishUserRegistered logs user.registered events.
func (p *StubPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	p.logEvent("user.registered", event.UserID, event.RegisteredAt, event)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
