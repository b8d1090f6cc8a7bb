package security

import (
	"errors"
	"testing"
)

func TestValidatePasswordAcceptsStrong(t *testing.T) {
	if err := ValidatePassword("correct-horse-battery"); err != nil {
		t.Fatalf("strong password rejected: %v", err)
	}
}

func TestValidatePasswordTooShort(t *testing.T) {
	err := ValidatePassword("short")

	var policyErr *PasswordPolicyError
	if !errors.As(err, &policyErr) {
		t.Fatalf("expected PasswordPolicyError, got %v", err)
	}
	if policyErr.Code != "min_length" {
		t.Fatalf("code = %q, want min_length", policyErr.Code)
	}
}

func TestValidatePasswordTooGuessable(t *testing.T) {
	err := ValidatePassword("password")

	var policyErr *PasswordPolicyError
	if !errors.As(err, &policyErr) {
		t.Fatalf("expected PasswordPolicyError, got %v", err)
	}
	if policyErr.Code != "too_weak" {
		t.Fatalf("code = %q, want too_weak", policyErr.Code)
	}
}

func TestValidatePasswordPenalizesUserInputs(t *testing.T) {
	err := ValidatePassword("avery.inspector@example.com", "avery.inspector@example.com", "Avery Inspector")

	var policyErr *PasswordPolicyError
	if !errors.As(err, &policyErr) {
		t.Fatalf("a password built from the user's own identifiers should fail, got %v", err)
	}
}
