package security

import (
	"errors"
	"testing"
	"time"

	"github.com/inspecio/platform-iam/internal/core/domain"
)

func newSigner(t *testing.T, now func() time.Time) *TokenSigner {
	t.Helper()
	signer, err := NewTokenSigner("signing-secret", "platform-iam-test", 15*time.Minute)
	if err != nil {
		t.Fatalf("NewTokenSigner: %v", err)
	}
	return signer.WithClock(now)
}

func TestTokenSignerRoundTrip(t *testing.T) {
	signer := newSigner(t, nil)
	teamID := "team-12"
	identity := domain.Identity{
		ID:          "user-1",
		Email:       "inspector@example.com",
		DisplayName: "Avery Inspector",
		Role:        domain.RoleManager,
		Plan:        domain.PlanProfessional,
		TeamID:      &teamID,
	}

	token, expiresAt, err := signer.Sign(identity)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if !expiresAt.After(time.Now()) {
		t.Fatal("expiry must be in the future")
	}

	parsed, err := signer.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed.ID != identity.ID || parsed.Email != identity.Email {
		t.Fatalf("identity fields lost: %+v", parsed)
	}
	if parsed.Role != domain.RoleManager || parsed.Plan != domain.PlanProfessional {
		t.Fatalf("role/plan lost: %+v", parsed)
	}
	if parsed.TeamID == nil || *parsed.TeamID != teamID {
		t.Fatalf("team lost: %v", parsed.TeamID)
	}
}

func TestTokenSignerOmitsEmptyTeam(t *testing.T) {
	signer := newSigner(t, nil)

	token, _, err := signer.Sign(domain.Identity{ID: "user-1", Role: domain.RoleInspector, Plan: domain.PlanStarter})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	parsed, err := signer.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed.TeamID != nil || parsed.ClientID != nil {
		t.Fatalf("expected nil team and client, got %+v", parsed)
	}
}

func TestTokenSignerExpiry(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	signer := newSigner(t, func() time.Time { return now })

	token, _, err := signer.Sign(domain.Identity{ID: "user-1"})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	now = now.Add(14 * time.Minute)
	if _, err := signer.Parse(token); err != nil {
		t.Fatalf("token should still be valid, got %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := signer.Parse(token); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestTokenSignerWrongSecret(t *testing.T) {
	signer := newSigner(t, nil)
	other, err := NewTokenSigner("a-different-secret", "platform-iam-test", 15*time.Minute)
	if err != nil {
		t.Fatalf("NewTokenSigner: %v", err)
	}

	token, _, err := signer.Sign(domain.Identity{ID: "user-1"})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if _, err := other.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenSignerWrongIssuer(t *testing.T) {
	signer := newSigner(t, nil)
	other, err := NewTokenSigner("signing-secret", "someone-else", 15*time.Minute)
	if err != nil {
		t.Fatalf("NewTokenSigner: %v", err)
	}

	token, _, err := signer.Sign(domain.Identity{ID: "user-1"})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if _, err := other.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenSignerRejectsGarbage(t *testing.T) {
	signer := newSigner(t, nil)

	for _, raw := range []string{"", "   ", "not.a.jwt"} {
		if _, err := signer.Parse(raw); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("input %q: expected ErrInvalidToken, got %v", raw, err)
		}
	}
}

func TestNewTokenSignerRequiresSecret(t *testing.T) {
	if _, err := NewTokenSigner("", "issuer", time.Minute); err == nil {
		t.Fatal("empty secret must be rejected")
	}
	if _, err := NewTokenSigner("   ", "issuer", time.Minute); err == nil {
		t.Fatal("blank secret must be rejected")
	}
}
