package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inspecio/platform-iam/internal/infra/telemetry"
	"github.com/inspecio/platform-iam/internal/transport/http/middleware"
	"github.com/inspecio/platform-iam/internal/usecase"
)

// AuthHandler exposes the sign-in and sign-out endpoints.
type AuthHandler struct {
	auth    *usecase.AuthService
	csrf    *usecase.CSRFService
	cookies *middleware.CookieManager
	metrics *telemetry.Metrics
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth *usecase.AuthService, csrf *usecase.CSRFService, cookies *middleware.CookieManager, metrics *telemetry.Metrics) *AuthHandler {
	return &AuthHandler{auth: auth, csrf: csrf, cookies: cookies, metrics: metrics}
}

// RegisterRoutes binds authentication routes, applying the provided
// middlewares ahead of the login handler.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup, loginMiddlewares ...gin.HandlerFunc) {
	chain := append([]gin.HandlerFunc{}, loginMiddlewares...)
	chain = append(chain, h.login)
	r.POST("/login", chain...)
	r.POST("/logout", h.logout)
}

func (h *AuthHandler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	session, err := h.auth.SignIn(c.Request.Context(), usecase.SignInInput{
		Email:    req.Email,
		Password: req.Password,
		IP:       c.ClientIP(),
	})
	if err != nil {
		h.recordLoginAttempt(loginResult(err))
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "invalid credentials"},
			{Err: usecase.ErrAccountDisabled, Status: http.StatusForbidden, Message: "account disabled"},
		}, http.StatusInternalServerError, "login failed")
		return
	}
	h.recordLoginAttempt("success")

	if h.cookies != nil {
		h.cookies.SetSecureCookie(c, middleware.SessionCookieName, session.AccessToken, middleware.CookieOptions{})
	}

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken: session.AccessToken,
		TokenType:   "Bearer",
		ExpiresAt:   session.ExpiresAt,
		User:        NewIdentityView(session.Identity),
	})
}

func (h *AuthHandler) recordLoginAttempt(result string) {
	if h.metrics != nil && h.metrics.LoginAttempts != nil {
		h.metrics.LoginAttempts.WithLabelValues(result).Inc()
	}
}

func loginResult(err error) string {
	switch {
	case errors.Is(err, usecase.ErrInvalidCredentials):
		return "invalid"
	case errors.Is(err, usecase.ErrAccountDisabled):
		return "disabled"
	default:
		return "error"
	}
}

func (h *AuthHandler) logout(c *gin.Context) {
	if identity := middleware.CurrentIdentity(c); identity != nil {
		if err := h.auth.SignOut(c.Request.Context(), identity.ID); err != nil {
			c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "logout failed"))
			return
		}
	}

	if h.cookies != nil {
		h.cookies.DeleteSecureCookie(c, middleware.SessionCookieName, middleware.CookieOptions{})
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "signed out"})
}
