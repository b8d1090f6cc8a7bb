package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/inspecio/platform-iam/internal/core/domain"
	"github.com/inspecio/platform-iam/internal/usecase"
)

// ErrorResponse matches the handlers.ErrorResponse structure.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

func newErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:   errorMsg,
		TraceID: GetTraceID(c),
	}
}

// ResolveSession attempts to resolve an identity from the session cookie or
// the Authorization header on every request. Unauthenticated and failed
// resolutions both pass through with an empty evaluator; enforcement belongs
// to the route guards downstream.
func ResolveSession(auth *usecase.AuthService, cookies *CookieManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" && cookies != nil {
			if value, err := cookies.GetSecureCookie(c, SessionCookieName); err == nil {
				token = value
			}
		}

		if token != "" {
			identity, err := auth.Resolve(c.Request.Context(), token)
			if err == nil {
				setIdentity(c, identity)
			}
		}

		c.Next()
	}
}

// RequireAuth rejects requests that did not carry a valid session. Unlike the
// route guard it never redirects; it is meant for the JSON API surface.
func RequireAuth(auth *usecase.AuthService, cookies *CookieManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentEvaluator(c).Authenticated() {
			c.Next()
			return
		}

		token := bearerToken(c)
		if token == "" && cookies != nil {
			if value, err := cookies.GetSecureCookie(c, SessionCookieName); err == nil {
				token = value
			}
		}

		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "authentication required"))
			return
		}

		identity, err := auth.Resolve(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, usecase.ErrExpiredAccessToken):
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					newErrorResponse(c, "access token expired"))
			case errors.Is(err, usecase.ErrAccountDisabled):
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					newErrorResponse(c, "account disabled"))
			case errors.Is(err, usecase.ErrInvalidAccessToken):
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					newErrorResponse(c, "invalid access token"))
			default:
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					newErrorResponse(c, "authentication failed"))
			}
			return
		}

		setIdentity(c, identity)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func setIdentity(c *gin.Context, identity *domain.Identity) {
	c.Set(IdentityKey, identity)
	c.Set(EvaluatorKey, usecase.NewEvaluator(identity))
	if reqCtx := GetRequestContext(c); reqCtx != nil {
		reqCtx.UserID = identity.ID
	}
}

// CurrentEvaluator returns the request's evaluator. An unauthenticated request
// yields an evaluator where every check fails closed.
func CurrentEvaluator(c *gin.Context) *usecase.Evaluator {
	if value, exists := c.Get(EvaluatorKey); exists {
		if eval, ok := value.(*usecase.Evaluator); ok {
			return eval
		}
	}
	return usecase.NewEvaluator(nil)
}

// CurrentIdentity returns the resolved identity, or nil when unauthenticated.
func CurrentIdentity(c *gin.Context) *domain.Identity {
	if value, exists := c.Get(IdentityKey); exists {
		if identity, ok := value.(*domain.Identity); ok {
			return identity
		}
	}
	return nil
}
