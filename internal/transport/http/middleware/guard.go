package middleware

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inspecio/platform-iam/internal/core/domain"
	"github.com/inspecio/platform-iam/internal/core/port"
	"github.com/inspecio/platform-iam/internal/infra/telemetry"
	"github.com/inspecio/platform-iam/internal/usecase"
)

const redirectParam = "redirect"

// RouteGuard enforces guard constraints on routes. Unauthenticated browser
// traffic is redirected to the login page with the attempted path preserved;
// API traffic and authorization failures get JSON errors.
type RouteGuard struct {
	loginPath string
	events    port.EventPublisher
	metrics   *telemetry.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

// NewRouteGuard constructs a guard redirecting to the given login path.
func NewRouteGuard(loginPath string, events port.EventPublisher, metrics *telemetry.Metrics, log *zap.Logger) *RouteGuard {
	if loginPath == "" {
		loginPath = "/login"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RouteGuard{
		loginPath: loginPath,
		events:    events,
		metrics:   metrics,
		logger:    log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the internal clock for deterministic tests.
func (g *RouteGuard) WithClock(clock func() time.Time) *RouteGuard {
	if clock != nil {
		g.now = clock
	}
	return g
}

// Guard returns a middleware enforcing the constraint. The decision is
// recomputed per request from the identity ResolveSession attached; it is
// never cached across requests.
func (g *RouteGuard) Guard(constraint usecase.GuardConstraint) gin.HandlerFunc {
	return func(c *gin.Context) {
		eval := CurrentEvaluator(c)
		decision := usecase.EvaluateGuard(eval, constraint, true)
		if decision.Authorized() {
			c.Next()
			return
		}

		switch decision.Reason {
		case usecase.DenialAuthenticationRequired:
			g.denyUnauthenticated(c)
		default:
			g.denyForbidden(c, eval, constraint, decision)
		}
	}
}

// RequireAuthenticated is shorthand for a constraint that only needs a session.
func (g *RouteGuard) RequireAuthenticated() gin.HandlerFunc {
	return g.Guard(usecase.GuardConstraint{RequireAuth: true})
}

func (g *RouteGuard) denyUnauthenticated(c *gin.Context) {
	if wantsHTML(c) {
		target := g.loginPath + "?" + redirectParam + "=" + url.QueryEscape(attemptedPath(c))
		c.Redirect(http.StatusFound, target)
		c.Abort()
		return
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		newErrorResponse(c, "authentication required"))
}

func (g *RouteGuard) denyForbidden(c *gin.Context, eval *usecase.Evaluator, constraint usecase.GuardConstraint, decision usecase.GuardDecision) {
	label := describeConstraint(constraint)

	if g.metrics != nil && g.metrics.PermissionDenials != nil {
		g.metrics.PermissionDenials.WithLabelValues(label).Inc()
	}
	g.publishDenied(c, eval, label)

	response := gin.H{
		"error":    "access denied",
		"trace_id": GetTraceID(c),
	}
	if decision.UpgradeMessage != "" {
		response["upgrade_message"] = decision.UpgradeMessage
	}
	c.AbortWithStatusJSON(http.StatusForbidden, response)
}

func (g *RouteGuard) publishDenied(c *gin.Context, eval *usecase.Evaluator, constraint string) {
	if g.events == nil {
		return
	}
	identity := eval.Identity()
	if identity == nil {
		return
	}

	event := domain.PermissionDeniedEvent{
		EventID:    uuid.NewString(),
		UserID:     identity.ID,
		Role:       identity.Role,
		Plan:       identity.Plan,
		Constraint: constraint,
		Path:       c.Request.URL.Path,
		DeniedAt:   g.now(),
	}
	if err := g.events.PublishPermissionDenied(c.Request.Context(), event); err != nil {
		g.logger.Warn("publish permission denied event failed", zap.Error(err))
	}
}

// wantsHTML reports whether the client negotiated an HTML response.
func wantsHTML(c *gin.Context) bool {
	accept := c.GetHeader("Accept")
	return strings.Contains(accept, "text/html")
}

func attemptedPath(c *gin.Context) string {
	if raw := c.Request.URL.RawQuery; raw != "" {
		return c.Request.URL.Path + "?" + raw
	}
	return c.Request.URL.Path
}

func describeConstraint(constraint usecase.GuardConstraint) string {
	switch {
	case constraint.Permission != "":
		return fmt.Sprintf("permission:%s", constraint.Permission)
	case len(constraint.AnyPermission) > 0:
		return fmt.Sprintf("any_permission:%s", joinPermissions(constraint.AnyPermission))
	case len(constraint.AllPermissions) > 0:
		return fmt.Sprintf("all_permissions:%s", joinPermissions(constraint.AllPermissions))
	case constraint.Feature != "":
		return fmt.Sprintf("feature:%s", constraint.Feature)
	case constraint.Action != "":
		return fmt.Sprintf("action:%s", constraint.Action)
	default:
		return "authenticated"
	}
}

func joinPermissions(perms []domain.Permission) string {
	parts := make([]string, len(perms))
	for i, p := range perms {
		parts[i] = string(p)
	}
	return strings.Join(parts, ",")
}
