package domain

import (
	"strings"
	"time"
)

// Role is the coarse-grained identity category determining a base permission set.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleManager   Role = "manager"
	RoleInspector Role = "inspector"
)

// Valid reports whether the role is part of the supported catalog.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleInspector:
		return true
	}
	return false
}

// ParseRole normalizes a raw role string. Unknown values map to the empty role.
func ParseRole(raw string) Role {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	if !role.Valid() {
		return ""
	}
	return role
}

// Plan is the commercial tier determining feature availability and quotas.
type Plan string

const (
	PlanStarter      Plan = "starter"
	PlanProfessional Plan = "professional"
	PlanEnterprise   Plan = "enterprise"
)

// Valid reports whether the plan is part of the supported catalog.
func (p Plan) Valid() bool {
	switch p {
	case PlanStarter, PlanProfessional, PlanEnterprise:
		return true
	}
	return false
}

// ParsePlan normalizes a raw plan string. Unknown values map to the empty plan.
func ParsePlan(raw string) Plan {
	plan := Plan(strings.ToLower(strings.TrimSpace(raw)))
	if !plan.Valid() {
		return ""
	}
	return plan
}

// Identity is the immutable per-session snapshot of the authenticated user.
// It is replaced wholesale on re-authentication and never mutated in place.
type Identity struct {
	ID          string
	Email       string
	DisplayName string
	Role        Role
	Plan        Plan
	TeamID      *string
	ClientID    *string
	CreatedAt   time.Time
}

// UserStatus enumerates possible account states.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"
)

// User mirrors the persisted representation in the users table.
type User struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	Role         Role
	Plan         Plan
	TeamID       *string
	ClientID     *string
	Status       UserStatus
	CreatedAt    time.Time
	LastLogin    *time.Time
}

// Identity projects the persisted user into a session snapshot.
func (u User) Identity() Identity {
	return Identity{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		Plan:        u.Plan,
		TeamID:      u.TeamID,
		ClientID:    u.ClientID,
		CreatedAt:   u.CreatedAt,
	}
}

// PasswordResetToken represents a single-use password reset token hash.
type PasswordResetToken struct {
	ID        string
	UserID    string
	TokenHash string
	CreatedAt time.Time
	ExpiresAt time.Time
	UsedAt    *time.Time
}
