package domain

import "time"

// LoginAttemptedEvent records an authentication attempt outcome.
type LoginAttemptedEvent struct {
	EventID     string         `json:"event_id"`
	UserID      string         `json:"user_id,omitempty"`
	Email       string         `json:"email"`
	Succeeded   bool           `json:"succeeded"`
	Reason      string         `json:"reason,omitempty"`
	IP          string         `json:"ip,omitempty"`
	AttemptedAt time.Time      `json:"attempted_at"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// PermissionDeniedEvent records an authorization denial at a guard.
type PermissionDeniedEvent struct {
	EventID    string         `json:"event_id"`
	UserID     string         `json:"user_id"`
	Role       Role           `json:"role"`
	Plan       Plan           `json:"plan"`
	Constraint string         `json:"constraint"`
	Path       string         `json:"path,omitempty"`
	DeniedAt   time.Time      `json:"denied_at"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// RateLimitExceededEvent records a rejected request on a limiter category.
type RateLimitExceededEvent struct {
	EventID    string    `json:"event_id"`
	Category   string    `json:"category"`
	Key        string    `json:"key"`
	Limit      int       `json:"limit"`
	Count      int       `json:"count"`
	ExceededAt time.Time `json:"exceeded_at"`
}

// PasswordResetRequestedEvent records that a reset token was issued.
type PasswordResetRequestedEvent struct {
	EventID     string    `json:"event_id"`
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	ExpiresAt   time.Time `json:"expires_at"`
	RequestedAt time.Time `json:"requested_at"`
}

// UserRegisteredEvent records a completed self-service registration.
type UserRegisteredEvent struct {
	EventID      string    `json:"event_id"`
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	Plan         Plan      `json:"plan"`
	RegisteredAt time.Time `json:"registered_at"`
}
