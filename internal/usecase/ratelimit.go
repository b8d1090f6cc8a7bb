package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inspecio/platform-iam/internal/core/domain"
	"github.com/inspecio/platform-iam/internal/core/port"
)

// RateLimitCategory selects which named limiter applies to a request.
type RateLimitCategory string

const (
	RateLimitGeneric       RateLimitCategory = "generic"
	RateLimitLogin         RateLimitCategory = "login"
	RateLimitRegistration  RateLimitCategory = "registration"
	RateLimitPasswordReset RateLimitCategory = "password_reset"
)

// RateLimitRule is the (limit, window, backoff) triple for one category.
type RateLimitRule struct {
	Limit      int
	Window     time.Duration
	RetryAfter time.Duration
}

// defaultRules carries the per-category fixed-window configuration. Abuse-prone
// flows get the long one-hour backoff.
var defaultRules = map[RateLimitCategory]RateLimitRule{
	RateLimitGeneric:       {Limit: 60, Window: time.Minute, RetryAfter: 60 * time.Second},
	RateLimitLogin:         {Limit: 5, Window: time.Minute, RetryAfter: 60 * time.Second},
	RateLimitRegistration:  {Limit: 3, Window: time.Hour, RetryAfter: 3600 * time.Second},
	RateLimitPasswordReset: {Limit: 3, Window: time.Hour, RetryAfter: 3600 * time.Second},
}

// RateLimitResult reports the outcome of one counted request.
type RateLimitResult struct {
	Limited    bool
	Limit      int
	Current    int
	Remaining  int
	RetryAfter time.Duration
}

// RateLimiter enforces fixed-window request limits per category and key. The
// window resets implicitly when the store entry's TTL lapses.
type RateLimiter struct {
	store  port.RateLimitStore
	events port.EventPublisher
	rules  map[RateLimitCategory]RateLimitRule
	logger *zap.Logger
	now    func() time.Time
}

// NewRateLimiter constructs a limiter with the default category rules.
func NewRateLimiter(store port.RateLimitStore, events port.EventPublisher, log *zap.Logger) (*RateLimiter, error) {
	if store == nil {
		return nil, fmt.Errorf("rate limit store is required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	rules := make(map[RateLimitCategory]RateLimitRule, len(defaultRules))
	for category, rule := range defaultRules {
		rules[category] = rule
	}

	return &RateLimiter{
		store:  store,
		events: events,
		rules:  rules,
		logger: log,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// WithRule overrides the configuration for one category.
func (l *RateLimiter) WithRule(category RateLimitCategory, rule RateLimitRule) *RateLimiter {
	if rule.Limit > 0 && rule.Window > 0 {
		if rule.RetryAfter <= 0 {
			rule.RetryAfter = rule.Window
		}
		l.rules[category] = rule
	}
	return l
}

// Rule returns the active configuration for a category. Unknown categories
// fall back to the generic rule.
func (l *RateLimiter) Rule(category RateLimitCategory) RateLimitRule {
	if rule, ok := l.rules[category]; ok {
		return rule
	}
	return l.rules[RateLimitGeneric]
}

// Check counts the request against the category's window and reports whether
// it exceeded the limit. Store failures fail open: an unavailable backend must
// not lock every caller out.
func (l *RateLimiter) Check(ctx context.Context, category RateLimitCategory, key string) (RateLimitResult, error) {
	rule := l.Rule(category)
	result := RateLimitResult{Limit: rule.Limit, RetryAfter: rule.RetryAfter}

	key = strings.TrimSpace(key)
	if key == "" {
		result.Remaining = rule.Limit
		return result, nil
	}

	storageKey := fmt.Sprintf("%s:%s", category, key)
	count, err := l.store.Increment(ctx, storageKey, rule.Window)
	if err != nil {
		l.logger.Warn("rate limit store unavailable",
			zap.String("category", string(category)),
			zap.Error(err))
		result.Remaining = rule.Limit
		return result, nil
	}

	result.Current = count
	result.Remaining = rule.Limit - count
	if result.Remaining < 0 {
		result.Remaining = 0
	}
	result.Limited = count > rule.Limit

	if result.Limited {
		l.publishExceeded(ctx, category, key, rule.Limit, count)
	}

	return result, nil
}

func (l *RateLimiter) publishExceeded(ctx context.Context, category RateLimitCategory, key string, limit, count int) {
	if l.events == nil {
		return
	}
	event := domain.RateLimitExceededEvent{
		EventID:    uuid.NewString(),
		Category:   string(category),
		Key:        key,
		Limit:      limit,
		Count:      count,
		ExceededAt: l.now(),
	}
	if err := l.events.PublishRateLimitExceeded(ctx, event); err != nil {
		l.logger.Warn("publish rate limit event failed", zap.Error(err))
	}
}
