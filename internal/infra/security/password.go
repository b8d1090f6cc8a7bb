package security

import (
	"fmt"

	zxcvbn "github.com/nbutton23/zxcvbn-go"
)

const (
	passwordMinLength = 8
	passwordMinScore  = 2 // zxcvbn score 0..4
)

// PasswordPolicyError represents a password policy violation.
type PasswordPolicyError struct {
	Code    string
	Message string
}

// Error implements error.
func (e *PasswordPolicyError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// ValidatePassword applies the registration password policy: a minimum length
// plus a zxcvbn strength floor computed against the user's own identifiers so
// that "name@company + birthday" style passwords score honestly.
func ValidatePassword(password string, userInputs ...string) error {
	if len([]rune(password)) < passwordMinLength {
		return &PasswordPolicyError{
			Code:    "min_length",
			Message: fmt.Sprintf("password must be at least %d characters long", passwordMinLength),
		}
	}

	result := zxcvbn.PasswordStrength(password, userInputs)
	if result.Score < passwordMinScore {
		return &PasswordPolicyError{
			Code:    "too_weak",
			Message: "password is too easy to guess, choose a stronger one",
		}
	}

	return nil
}
