package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/inspecio/platform-iam/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with the trace ID from context.
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// IdentityView is the API projection of an identity snapshot.
type IdentityView struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	DisplayName string   `json:"display_name"`
	Role        string   `json:"role"`
	Plan        string   `json:"plan"`
	TeamID      *string  `json:"team_id,omitempty"`
	ClientID    *string  `json:"client_id,omitempty"`
	Permissions []string `json:"permissions"`
}

// NewIdentityView builds the projection including the role's permission set.
func NewIdentityView(identity domain.Identity) IdentityView {
	perms := domain.PermissionsForRole(identity.Role)
	names := make([]string, len(perms))
	for i, p := range perms {
		names[i] = string(p)
	}

	return IdentityView{
		ID:          identity.ID,
		Email:       identity.Email,
		DisplayName: identity.DisplayName,
		Role:        string(identity.Role),
		Plan:        string(identity.Plan),
		TeamID:      identity.TeamID,
		ClientID:    identity.ClientID,
		Permissions: names,
	}
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse describes the response for a successful login.
type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        IdentityView `json:"user"`
}

// RegisterRequest defines the payload for self-service registration.
type RegisterRequest struct {
	Email       string  `json:"email" binding:"required"`
	Password    string  `json:"password" binding:"required"`
	DisplayName string  `json:"display_name" binding:"required"`
	Plan        string  `json:"plan"`
	TeamID      *string `json:"team_id"`
}

// RegisterResponse describes a completed registration.
type RegisterResponse struct {
	User IdentityView `json:"user"`
}

// PasswordResetRequest asks for a reset token to be issued.
type PasswordResetRequest struct {
	Email string `json:"email" binding:"required"`
}

// PasswordResetConfirmRequest consumes a reset token.
type PasswordResetConfirmRequest struct {
	Email       string `json:"email" binding:"required"`
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// PasswordResetResponse acknowledges a reset request. The reset token is only
// echoed back in development deployments.
type PasswordResetResponse struct {
	Message    string `json:"message"`
	ResetToken string `json:"reset_token,omitempty"`
}

// CSRFTokenResponse carries a freshly issued anti-forgery token.
type CSRFTokenResponse struct {
	Token string `json:"token"`
}

// SessionResponse reports the resolved session state.
type SessionResponse struct {
	Authenticated bool          `json:"authenticated"`
	User          *IdentityView `json:"user,omitempty"`
}

// QuotaView reports consumption against one plan limit.
type QuotaView struct {
	LimitType  string  `json:"limit_type"`
	Limit      int64   `json:"limit"`
	Current    int64   `json:"current"`
	Remaining  int64   `json:"remaining"`
	Percentage float64 `json:"percentage"`
}

// QuotaReportResponse lists consumption for every limit of the caller's plan.
type QuotaReportResponse struct {
	Plan   string      `json:"plan"`
	Quotas []QuotaView `json:"quotas"`
}

// AccessCheckRequest describes a guard constraint to evaluate for the caller.
type AccessCheckRequest struct {
	Permission     string   `json:"permission,omitempty"`
	AnyPermission  []string `json:"any_permission,omitempty"`
	AllPermissions []string `json:"all_permissions,omitempty"`
	Feature        string   `json:"feature,omitempty"`
	Action         string   `json:"action,omitempty"`
	Inspection     *struct {
		Status  string `json:"status"`
		OwnerID string `json:"owner_id,omitempty"`
	} `json:"inspection,omitempty"`
}

// AccessCheckResponse reports a guard decision for the caller's identity.
type AccessCheckResponse struct {
	Allowed        bool   `json:"allowed"`
	Reason         string `json:"reason,omitempty"`
	UpgradeMessage string `json:"upgrade_message,omitempty"`
}

// HealthResponse describes the liveness payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse describes the readiness payload with per-dependency state.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
