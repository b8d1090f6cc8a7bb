package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/inspecio/platform-iam/internal/core/domain"
	"github.com/inspecio/platform-iam/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type capturingPublisher struct {
	mu      sync.Mutex
	denials []domain.PermissionDeniedEvent
}

func (p *capturingPublisher) PublishLoginAttempted(ctx context.Context, event domain.LoginAttemptedEvent) error {
	return nil
}

func (p *capturingPublisher) PublishPermissionDenied(ctx context.Context, event domain.PermissionDeniedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.denials = append(p.denials, event)
	return nil
}

func (p *capturingPublisher) PublishRateLimitExceeded(ctx context.Context, event domain.RateLimitExceededEvent) error {
	return nil
}

func (p *capturingPublisher) PublishPasswordResetRequested(ctx context.Context, event domain.PasswordResetRequestedEvent) error {
	return nil
}

func (p *capturingPublisher) PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error {
	return nil
}

func guardIdentity(role domain.Role, plan domain.Plan) *domain.Identity {
	return &domain.Identity{
		ID:    "user-1",
		Email: "inspector@example.com",
		Role:  role,
		Plan:  plan,
	}
}

// attach simulates an upstream session resolution.
func attach(identity *domain.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		if identity != nil {
			setIdentity(c, identity)
		}
		c.Next()
	}
}

func guardedEngine(identity *domain.Identity, guard *RouteGuard, constraint usecase.GuardConstraint) *gin.Engine {
	engine := gin.New()
	engine.GET("/reports", attach(identity), guard.Guard(constraint), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return engine
}

func TestGuardRedirectsBrowsersToLogin(t *testing.T) {
	guard := NewRouteGuard("/login", nil, nil, nil)
	engine := guardedEngine(nil, guard, usecase.GuardConstraint{RequireAuth: true})

	req := httptest.NewRequest(http.MethodGet, "/reports?month=2026-08", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	location := rec.Header().Get("Location")
	if !strings.HasPrefix(location, "/login?redirect=") {
		t.Fatalf("unexpected redirect target %q", location)
	}
	target, err := url.Parse(location)
	if err != nil {
		t.Fatalf("parse location: %v", err)
	}
	if got := target.Query().Get("redirect"); got != "/reports?month=2026-08" {
		t.Fatalf("redirect param = %q, want the attempted path with query", got)
	}
}

func TestGuardReturns401ForAPIClients(t *testing.T) {
	guard := NewRouteGuard("/login", nil, nil, nil)
	engine := guardedEngine(nil, guard, usecase.GuardConstraint{RequireAuth: true})

	req := httptest.NewRequest(http.MethodGet, "/reports", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if rec.Header().Get("Location") != "" {
		t.Fatal("API clients must not be redirected")
	}
}

func TestGuardForbidsMissingPermission(t *testing.T) {
	events := &capturingPublisher{}
	guard := NewRouteGuard("/login", events, nil, nil)
	identity := guardIdentity(domain.RoleInspector, domain.PlanStarter)
	engine := guardedEngine(identity, guard, usecase.GuardConstraint{
		RequireAuth: true,
		Permission:  domain.PermissionManageInspections,
	})

	req := httptest.NewRequest(http.MethodGet, "/reports", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if len(events.denials) != 1 {
		t.Fatalf("expected one denial event, got %d", len(events.denials))
	}
	denial := events.denials[0]
	if denial.UserID != identity.ID || denial.Constraint != "permission:manage_inspections" {
		t.Fatalf("unexpected denial event %+v", denial)
	}
}

func TestGuardForbiddenCarriesUpgradeMessage(t *testing.T) {
	guard := NewRouteGuard("/login", nil, nil, nil)
	identity := guardIdentity(domain.RoleInspector, domain.PlanStarter)
	engine := guardedEngine(identity, guard, usecase.GuardConstraint{
		RequireAuth: true,
		Feature:     domain.FeatureAdvancedReports,
	})

	req := httptest.NewRequest(http.MethodGet, "/reports", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	message, _ := body["upgrade_message"].(string)
	if !strings.Contains(message, "professional") {
		t.Fatalf("upgrade message should name the professional plan, got %q", message)
	}
}

func TestGuardAllowsAuthorizedRequest(t *testing.T) {
	guard := NewRouteGuard("/login", nil, nil, nil)
	identity := guardIdentity(domain.RoleManager, domain.PlanProfessional)
	engine := guardedEngine(identity, guard, usecase.GuardConstraint{
		RequireAuth: true,
		Permission:  domain.PermissionManageInspections,
	})

	req := httptest.NewRequest(http.MethodGet, "/reports", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRequireAuthenticatedShorthand(t *testing.T) {
	guard := NewRouteGuard("/login", nil, nil, nil)
	engine := gin.New()
	engine.GET("/me", attach(guardIdentity(domain.RoleInspector, domain.PlanStarter)), guard.RequireAuthenticated(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
}
