package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inspecio/platform-iam/internal/core/domain"
	"github.com/inspecio/platform-iam/internal/core/port"
	"github.com/inspecio/platform-iam/internal/infra/config"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher on top of Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type eventEnvelope struct {
	EventID   string            `json:"event_id"`
	EventType string            `json:"event_type"`
	UserID    string            `json:"user_id,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Payload   any               `json:"payload"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, userID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	if eventID == "" {
		eventID = uuid.NewString()
	}

	envelope := eventEnvelope{
		EventID:   eventID,
		EventType: eventType,
		UserID:    userID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata: map[string]string{
			"service":     p.appCfg.Name,
			"environment": p.appCfg.Env,
		},
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishLoginAttempted publishes iam.login.attempted events.
func (p *EventPublisher) PublishLoginAttempted(ctx context.Context, event domain.LoginAttemptedEvent) error {
	return p.publish(ctx, event.EventID, "login.attempted", event.UserID, event.AttemptedAt, event)
}

// PublishPermissionDenied publishes iam.permission.denied events.
func (p *EventPublisher) PublishPermissionDenied(ctx context.Context, event domain.PermissionDeniedEvent) error {
	return p.publish(ctx, event.EventID, "permission.denied", event.UserID, event.DeniedAt, event)
}

// PublishRateLimitExceeded publishes iam.rate_limit.exceeded events.
func (p *EventPublisher) PublishRateLimitExceeded(ctx context.Context, event domain.RateLimitExceededEvent) error {
	return p.publish(ctx, event.EventID, "rate_limit.exceeded", "", event.ExceededAt, event)
}

// PublishPasswordResetRequested publishes iam.password_reset.requested events.
func (p *EventPublisher) PublishPasswordResetRequested(ctx context.Context, event domain.PasswordResetRequestedEvent) error {
	return p.publish(ctx, event.EventID, "password_reset.requested", event.UserID, event.RequestedAt, event)
}

// PublishUserRegistered publishes iam.user.registered events.
func (p *EventPublisher) PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error {
	return p.publish(ctx, event.EventID, "user.registered", event.UserID, event.RegisteredAt, event)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
