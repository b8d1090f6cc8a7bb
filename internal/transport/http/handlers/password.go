package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inspecio/platform-iam/internal/infra/security"
	"github.com/inspecio/platform-iam/internal/usecase"
)

// PasswordHandler exposes the password reset flow.
type PasswordHandler struct {
	resets *usecase.PasswordResetService
	isDev  bool
}

// NewPasswordHandler constructs PasswordHandler. In development the reset
// token is echoed back in the response instead of being delivered out of band.
func NewPasswordHandler(resets *usecase.PasswordResetService, isDev bool) *PasswordHandler {
	return &PasswordHandler{resets: resets, isDev: isDev}
}

// RegisterRoutes binds the reset routes behind the provided middlewares.
func (h *PasswordHandler) RegisterRoutes(r *gin.RouterGroup, middlewares ...gin.HandlerFunc) {
	request := append([]gin.HandlerFunc{}, middlewares...)
	request = append(request, h.requestReset)
	r.POST("/password-reset/request", request...)

	confirm := append([]gin.HandlerFunc{}, middlewares...)
	confirm = append(confirm, h.confirmReset)
	r.POST("/password-reset/confirm", confirm...)
}

func (h *PasswordHandler) requestReset(c *gin.Context) {
	var req PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid reset payload"))
		return
	}

	token, err := h.resets.RequestReset(c.Request.Context(), req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "reset request failed"))
		return
	}

	// Unknown accounts get the same acknowledgement as known ones.
	response := PasswordResetResponse{
		Message: "if the account exists, reset instructions have been sent",
	}
	if h.isDev && token != "" {
		response.ResetToken = token
	}

	c.JSON(http.StatusAccepted, response)
}

func (h *PasswordHandler) confirmReset(c *gin.Context) {
	var req PasswordResetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid reset payload"))
		return
	}

	err := h.resets.ConfirmReset(c.Request.Context(), req.Email, req.Token, req.NewPassword)
	if err != nil {
		var policyErr *security.PasswordPolicyError
		if errors.As(err, &policyErr) {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, policyErr.Message))
			return
		}
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrResetTokenInvalid, Status: http.StatusBadRequest, Message: "reset token invalid"},
			{Err: usecase.ErrResetTokenExpired, Status: http.StatusBadRequest, Message: "reset token expired"},
		}, http.StatusInternalServerError, "password reset failed")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "password updated"})
}
