package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inspecio/platform-iam/internal/infra/telemetry"
	"github.com/inspecio/platform-iam/internal/usecase"
)

// CSRFTokenHeader carries the anti-forgery token on state-changing requests.
const CSRFTokenHeader = "X-CSRF-Token"

// CSRFProtect verifies the anti-forgery token on every state-changing request
// from an authenticated session. Safe methods pass through untouched, as do
// anonymous requests, which are covered by the rate limiters instead.
func CSRFProtect(csrf *usecase.CSRFService, metrics *telemetry.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		identity := CurrentIdentity(c)
		if identity == nil {
			c.Next()
			return
		}

		token := c.GetHeader(CSRFTokenHeader)
		if token == "" {
			token = c.PostForm("csrf_token")
		}

		if err := csrf.Verify(c.Request.Context(), identity.ID, token); err != nil {
			if metrics != nil && metrics.CSRFVerifyFailures != nil {
				metrics.CSRFVerifyFailures.Inc()
			}
			switch {
			case errors.Is(err, usecase.ErrCSRFTokenExpired):
				c.AbortWithStatusJSON(http.StatusForbidden,
					newErrorResponse(c, "csrf token expired"))
			case errors.Is(err, usecase.ErrCSRFTokenInvalid):
				c.AbortWithStatusJSON(http.StatusForbidden,
					newErrorResponse(c, "csrf token invalid"))
			default:
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					newErrorResponse(c, "csrf verification failed"))
			}
			return
		}

		c.Next()
	}
}
