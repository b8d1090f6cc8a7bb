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
	"github.com/inspecio/platform-iam/internal/infra/security"
	"github.com/inspecio/platform-iam/internal/repository"
)

var (
	// ErrEmailTaken indicates an account with the email already exists.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidEmail indicates the email failed basic validation.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrSeatQuotaExceeded indicates the team is out of plan seats.
	ErrSeatQuotaExceeded = errors.New("seat quota exceeded")
)

// RegisterInput captures a self-service registration request.
type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
	Plan        domain.Plan
	TeamID      *string
}

// RegistrationService provisions new inspector accounts.
type RegistrationService struct {
	users  port.UserRepository
	events port.EventPublisher
	logger *zap.Logger
	now    func() time.Time
}

// NewRegistrationService constructs a RegistrationService.
func NewRegistrationService(users port.UserRepository, events port.EventPublisher, log *zap.Logger) (*RegistrationService, error) {
	if users == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RegistrationService{
		users:  users,
		events: events,
		logger: log,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// WithClock overrides the internal clock for deterministic tests.
func (s *RegistrationService) WithClock(clock func() time.Time) *RegistrationService {
	if clock != nil {
		s.now = clock
	}
	return s
}

// Register validates input, enforces the team's seat quota and creates the
// account with the inspector role on the requested plan.
func (s *RegistrationService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}

	if err := security.ValidatePassword(input.Password, email, input.DisplayName); err != nil {
		return nil, err
	}

	plan := input.Plan
	if !plan.Valid() {
		plan = domain.PlanStarter
	}

	if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, ErrEmailTaken
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	if input.TeamID != nil {
		if err := s.checkSeatQuota(ctx, *input.TeamID, plan); err != nil {
			return nil, err
		}
	}

	hash, err := security.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  strings.TrimSpace(input.DisplayName),
		PasswordHash: hash,
		Role:         domain.RoleInspector,
		Plan:         plan,
		TeamID:       input.TeamID,
		Status:       domain.UserStatusActive,
		CreatedAt:    s.now(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.publishRegistered(ctx, user)

	return &user, nil
}

func (s *RegistrationService) checkSeatQuota(ctx context.Context, teamID string, plan domain.Plan) error {
	seats, err := s.users.CountByTeam(ctx, teamID)
	if err != nil {
		return fmt.Errorf("count team seats: %w", err)
	}

	identity := domain.Identity{Role: domain.RoleInspector, Plan: plan}
	if !NewEvaluator(&identity).IsWithinLimit(domain.LimitSeats, seats) {
		return ErrSeatQuotaExceeded
	}
	return nil
}

func (s *RegistrationService) publishRegistered(ctx context.Context, user domain.User) {
	if s.events == nil {
		return
	}
	event := domain.UserRegisteredEvent{
		EventID:      uuid.NewString(),
		UserID:       user.ID,
		Email:        user.Email,
		Role:         user.Role,
		Plan:         user.Plan,
		RegisteredAt: user.CreatedAt,
	}
	if err := s.events.PublishUserRegistered(ctx, event); err != nil {
		s.logger.Warn("publish user registered failed", zap.Error(err))
	}
}
