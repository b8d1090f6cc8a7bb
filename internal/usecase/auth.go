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

var (
	// ErrInvalidCredentials indicates the email/password pair did not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountDisabled indicates the account exists but may not sign in.
	ErrAccountDisabled = errors.New("account disabled")
	// ErrAuthenticationRequired indicates no identity is present.
	ErrAuthenticationRequired = errors.New("authentication required")
	// ErrPermissionDenied indicates the identity lacks a required permission.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrInvalidAccessToken indicates the supplied token failed validation.
	ErrInvalidAccessToken = errors.New("invalid access token")
	// ErrExpiredAccessToken indicates the supplied token has expired.
	ErrExpiredAccessToken = errors.New("access token expired")
)

// SignInInput captures a sign-in request.
type SignInInput struct {
	Email    string
	Password string
	IP       string
}

// Session is the result of a successful sign-in: the access token plus the
// identity snapshot it encodes.
type Session struct {
	AccessToken string
	ExpiresAt   time.Time
	Identity    domain.Identity
}

// AuthService performs sign-in/sign-out and per-request session resolution.
type AuthService struct {
	users  port.UserRepository
	signer *security.TokenSigner
	events port.EventPublisher
	csrf   *CSRFService
	logger *zap.Logger
	now    func() time.Time
}

// NewAuthService constructs an AuthService.
func NewAuthService(users port.UserRepository, signer *security.TokenSigner, events port.EventPublisher, log *zap.Logger) (*AuthService, error) {
	if users == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if signer == nil {
		return nil, fmt.Errorf("token signer is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		users:  users,
		signer: signer,
		events: events,
		logger: log,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// WithClock overrides the internal clock for deterministic tests.
func (s *AuthService) WithClock(clock func() time.Time) *AuthService {
	if clock != nil {
		s.now = clock
	}
	return s
}

// WithCSRF wires the CSRF service so sign-out invalidates the owner's token.
func (s *AuthService) WithCSRF(csrf *CSRFService) *AuthService {
	s.csrf = csrf
	return s
}

// SignIn verifies credentials and issues an access token. Lookup failures and
// password mismatches are indistinguishable to the caller.
func (s *AuthService) SignIn(ctx context.Context, input SignInInput) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.publishLoginAttempt(ctx, "", email, false, "unknown_account", input.IP)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if user.Status != domain.UserStatusActive {
		s.publishLoginAttempt(ctx, user.ID, email, false, "account_disabled", input.IP)
		return nil, ErrAccountDisabled
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		s.publishLoginAttempt(ctx, user.ID, email, false, "bad_password", input.IP)
		return nil, ErrInvalidCredentials
	}

	identity := user.Identity()
	token, expiresAt, err := s.signer.Sign(identity)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID, s.now()); err != nil {
		s.logger.Warn("update last login failed", zap.String("user_id", user.ID), zap.Error(err))
	}

	s.publishLoginAttempt(ctx, user.ID, email, true, "", input.IP)

	return &Session{AccessToken: token, ExpiresAt: expiresAt, Identity: identity}, nil
}

// SignOut invalidates any outstanding CSRF token for the user. Access tokens
// are stateless and simply expire; the transport layer clears the cookie.
func (s *AuthService) SignOut(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrAuthenticationRequired
	}
	if s.csrf != nil {
		if err := s.csrf.Invalidate(ctx, userID); err != nil {
			s.logger.Warn("invalidate csrf token failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return nil
}

// Resolve validates an access token and returns a fresh identity snapshot.
// The user record is reloaded so role or plan changes take effect on the next
// request instead of surviving until token expiry.
func (s *AuthService) Resolve(ctx context.Context, rawToken string) (*domain.Identity, error) {
	claims, err := s.signer.Parse(rawToken)
	if err != nil {
		switch {
		case errors.Is(err, security.ErrExpiredToken):
			return nil, ErrExpiredAccessToken
		default:
			return nil, ErrInvalidAccessToken
		}
	}

	user, err := s.users.GetByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidAccessToken
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	if user.Status != domain.UserStatusActive {
		return nil, ErrAccountDisabled
	}

	identity := user.Identity()
	return &identity, nil
}

func (s *AuthService) publishLoginAttempt(ctx context.Context, userID, email string, succeeded bool, reason, ip string) {
	if s.events == nil {
		return
	}
	event := domain.LoginAttemptedEvent{
		EventID:     uuid.NewString(),
		UserID:      userID,
		Email:       logger.MaskEmail(email),
		Succeeded:   succeeded,
		Reason:      reason,
		IP:          logger.MaskIP(ip),
		AttemptedAt: s.now(),
	}
	if err := s.events.PublishLoginAttempted(ctx, event); err != nil {
		s.logger.Warn("publish login attempt failed", zap.Error(err))
	}
}
