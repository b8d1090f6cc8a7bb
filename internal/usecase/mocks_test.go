package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/inspecio/platform-iam/internal/core/domain"
	"github.com/inspecio/platform-iam/internal/core/port"
	"github.com/inspecio/platform-iam/internal/repository"
)

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func newMemUserRepo(users ...domain.User) *memUserRepo {
	repo := &memUserRepo{users: make(map[string]domain.User)}
	for _, user := range users {
		repo.users[user.ID] = user
	}
	return repo
}

func (r *memUserRepo) Create(ctx context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return repository.ErrConflict
		}
	}
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := user
	return &copied, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			copied := user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.LastLogin = &at
	r.users[id] = user
	return nil
}

func (r *memUserRepo) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.PasswordHash = hash
	r.users[id] = user
	return nil
}

func (r *memUserRepo) CountByTeam(ctx context.Context, teamID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, user := range r.users {
		if user.TeamID != nil && *user.TeamID == teamID {
			count++
		}
	}
	return count, nil
}

type memResetTokens struct {
	mu     sync.Mutex
	tokens map[string]domain.PasswordResetToken
}

func newMemResetTokens() *memResetTokens {
	return &memResetTokens{tokens: make(map[string]domain.PasswordResetToken)}
}

func (r *memResetTokens) Store(ctx context.Context, token domain.PasswordResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token.ID] = token
	return nil
}

func (r *memResetTokens) GetActiveByUser(ctx context.Context, userID string, now time.Time) (*domain.PasswordResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var newest *domain.PasswordResetToken
	for _, token := range r.tokens {
		if token.UserID != userID || token.UsedAt != nil || !token.ExpiresAt.After(now) {
			continue
		}
		if newest == nil || token.CreatedAt.After(newest.CreatedAt) {
			copied := token
			newest = &copied
		}
	}
	if newest == nil {
		return nil, repository.ErrNotFound
	}
	return newest, nil
}

func (r *memResetTokens) MarkUsed(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	token, ok := r.tokens[id]
	if !ok || token.UsedAt != nil {
		return repository.ErrNotFound
	}
	token.UsedAt = &at
	r.tokens[id] = token
	return nil
}

func (r *memResetTokens) RevokeActiveByUser(ctx context.Context, userID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, token := range r.tokens {
		if token.UserID == userID && token.UsedAt == nil {
			token.UsedAt = &at
			r.tokens[id] = token
		}
	}
	return nil
}

type memUsage struct {
	mu    sync.Mutex
	usage map[string]map[domain.LimitType]int64
}

func newMemUsage() *memUsage {
	return &memUsage{usage: make(map[string]map[domain.LimitType]int64)}
}

func (r *memUsage) GetUsage(ctx context.Context, teamID string) (map[domain.LimitType]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make(map[domain.LimitType]int64)
	for limitType, used := range r.usage[teamID] {
		result[limitType] = used
	}
	return result, nil
}

func (r *memUsage) IncrementUsage(ctx context.Context, teamID string, limit domain.LimitType, delta int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.usage[teamID] == nil {
		r.usage[teamID] = make(map[domain.LimitType]int64)
	}
	r.usage[teamID][limit] += delta
	return r.usage[teamID][limit], nil
}

func (r *memUsage) set(teamID string, limit domain.LimitType, used int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.usage[teamID] == nil {
		r.usage[teamID] = make(map[domain.LimitType]int64)
	}
	r.usage[teamID][limit] = used
}

type recordingPublisher struct {
	mu            sync.Mutex
	loginAttempts []domain.LoginAttemptedEvent
	denials       []domain.PermissionDeniedEvent
	rateLimits    []domain.RateLimitExceededEvent
	resetRequests []domain.PasswordResetRequestedEvent
	registrations []domain.UserRegisteredEvent
}

func (p *recordingPublisher) PublishLoginAttempted(ctx context.Context, event domain.LoginAttemptedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loginAttempts = append(p.loginAttempts, event)
	return nil
}

func (p *recordingPublisher) PublishPermissionDenied(ctx context.Context, event domain.PermissionDeniedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.denials = append(p.denials, event)
	return nil
}

func (p *recordingPublisher) PublishRateLimitExceeded(ctx context.Context, event domain.RateLimitExceededEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rateLimits = append(p.rateLimits, event)
	return nil
}

func (p *recordingPublisher) PublishPasswordResetRequested(ctx context.Context, event domain.PasswordResetRequestedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetRequests = append(p.resetRequests, event)
	return nil
}

func (p *recordingPublisher) PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.registrations = append(p.registrations, event)
	return nil
}

var _ port.EventPublisher = (*recordingPublisher)(nil)

type failingRateStore struct{}

func (failingRateStore) Increment(ctx context.Context, key string, window time.Duration) (int, error) {
	return 0, errors.New("store unavailable")
}

func (failingRateStore) TTL(ctx context.Context, key string) (time.Duration, bool, error) {
	return 0, false, errors.New("store unavailable")
}
