package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/inspecio/platform-iam/internal/infra/telemetry"
	"github.com/inspecio/platform-iam/internal/usecase"
)

// IdentifierFunc extracts the key used to scope rate limits.
type IdentifierFunc func(*gin.Context) (string, bool)

// ClientIPIdentifier scopes limits by the request's client IP.
func ClientIPIdentifier() IdentifierFunc {
	return func(c *gin.Context) (string, bool) {
		ip := c.ClientIP()
		if ip == "" {
			return "", false
		}
		return ip, true
	}
}

// RateLimit enforces the named category's fixed window on each request. Every
// counted response carries the X-RateLimit headers; rejections add Retry-After.
func RateLimit(limiter *usecase.RateLimiter, category usecase.RateLimitCategory, identifier IdentifierFunc, metrics *telemetry.Metrics) gin.HandlerFunc {
	if identifier == nil {
		identifier = ClientIPIdentifier()
	}

	return func(c *gin.Context) {
		key, ok := identifier(c)
		if !ok {
			c.Next()
			return
		}

		result, err := limiter.Check(c.Request.Context(), category, key)
		if err != nil {
			c.Next()
			return
		}

		headers := c.Writer.Header()
		headers.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		headers.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))

		if !result.Limited {
			c.Next()
			return
		}

		if metrics != nil && metrics.RateLimitRejected != nil {
			metrics.RateLimitRejected.WithLabelValues(string(category)).Inc()
		}

		retrySeconds := int(math.Ceil(result.RetryAfter.Seconds()))
		headers.Set("Retry-After", strconv.Itoa(retrySeconds))

		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":       "rate limit exceeded",
			"retry_after": retrySeconds,
			"trace_id":    GetTraceID(c),
		})
	}
}
