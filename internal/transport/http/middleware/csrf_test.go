package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/inspecio/platform-iam/internal/core/domain"
	"github.com/inspecio/platform-iam/internal/repository/memory"
	"github.com/inspecio/platform-iam/internal/usecase"
)

func newTestCSRF(t *testing.T) *usecase.CSRFService {
	t.Helper()
	svc, err := usecase.NewCSRFService(memory.NewCSRFStore(), nil)
	if err != nil {
		t.Fatalf("NewCSRFService: %v", err)
	}
	return svc
}

func csrfEngine(csrf *usecase.CSRFService, identity *domain.Identity) *gin.Engine {
	engine := gin.New()
	engine.Use(attach(identity), CSRFProtect(csrf, nil))
	engine.POST("/inspections", func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	engine.GET("/inspections", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return engine
}

func TestCSRFAllowsSafeMethods(t *testing.T) {
	engine := csrfEngine(newTestCSRF(t), guardIdentity(domain.RoleInspector, domain.PlanStarter))

	req := httptest.NewRequest(http.MethodGet, "/inspections", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestCSRFSkipsAnonymousRequests(t *testing.T) {
	engine := csrfEngine(newTestCSRF(t), nil)

	req := httptest.NewRequest(http.MethodPost, "/inspections", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
}

func TestCSRFAcceptsValidToken(t *testing.T) {
	csrf := newTestCSRF(t)
	identity := guardIdentity(domain.RoleInspector, domain.PlanStarter)
	engine := csrfEngine(csrf, identity)

	token, err := csrf.Issue(context.Background(), identity.ID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/inspections", nil)
	req.Header.Set(CSRFTokenHeader, token)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", rec.Code, rec.Body.String())
	}
}

func TestCSRFRejectsMissingToken(t *testing.T) {
	csrf := newTestCSRF(t)
	identity := guardIdentity(domain.RoleInspector, domain.PlanStarter)
	engine := csrfEngine(csrf, identity)

	if _, err := csrf.Issue(context.Background(), identity.ID); err != nil {
		t.Fatalf("Issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/inspections", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestCSRFRejectsWrongToken(t *testing.T) {
	csrf := newTestCSRF(t)
	identity := guardIdentity(domain.RoleInspector, domain.PlanStarter)
	engine := csrfEngine(csrf, identity)

	if _, err := csrf.Issue(context.Background(), identity.ID); err != nil {
		t.Fatalf("Issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/inspections", nil)
	req.Header.Set(CSRFTokenHeader, "not-the-issued-token")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}
