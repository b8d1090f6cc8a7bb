package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inspecio/platform-iam/internal/transport/http/middleware"
	"github.com/inspecio/platform-iam/internal/usecase"
)

// SessionHandler exposes the session introspection and CSRF endpoints.
type SessionHandler struct {
	csrf *usecase.CSRFService
}

// NewSessionHandler constructs SessionHandler.
func NewSessionHandler(csrf *usecase.CSRFService) *SessionHandler {
	return &SessionHandler{csrf: csrf}
}

// RegisterRoutes binds the session routes. The session endpoint itself is
// deliberately open: it reports the unauthenticated state instead of failing.
func (h *SessionHandler) RegisterRoutes(open, authed *gin.RouterGroup) {
	open.GET("/session", h.session)
	authed.GET("/session/me", h.me)
	authed.GET("/session/csrf", h.issueCSRF)
}

func (h *SessionHandler) session(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)
	if identity == nil {
		c.JSON(http.StatusOK, SessionResponse{Authenticated: false})
		return
	}

	view := NewIdentityView(*identity)
	c.JSON(http.StatusOK, SessionResponse{Authenticated: true, User: &view})
}

func (h *SessionHandler) me(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)
	if identity == nil {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}
	c.JSON(http.StatusOK, NewIdentityView(*identity))
}

func (h *SessionHandler) issueCSRF(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)
	if identity == nil {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	token, err := h.csrf.Issue(c.Request.Context(), identity.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "csrf token issuance failed"))
		return
	}

	c.JSON(http.StatusOK, CSRFTokenResponse{Token: token})
}
