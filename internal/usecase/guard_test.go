package usecase

import (
	"strings"
	"testing"

	"github.com/inspecio/platform-iam/internal/core/domain"
)

func TestEvaluateGuardResolving(t *testing.T) {
	decision := EvaluateGuard(NewEvaluator(nil), GuardConstraint{RequireAuth: true}, false)
	if decision.State != GuardResolving {
		t.Fatalf("unresolved session must yield GuardResolving, got %v", decision.State)
	}
	if decision.Authorized() {
		t.Fatal("resolving must not be authorized")
	}
}

func TestEvaluateGuardAuthentication(t *testing.T) {
	anon := NewEvaluator(nil)

	decision := EvaluateGuard(anon, GuardConstraint{RequireAuth: true}, true)
	if decision.State != GuardDenied || decision.Reason != DenialAuthenticationRequired {
		t.Fatalf("anonymous must be denied with authentication reason, got %+v", decision)
	}

	// Constraints beyond RequireAuth still demand an identity.
	decision = EvaluateGuard(anon, GuardConstraint{Permission: domain.PermissionViewDashboard}, true)
	if decision.Reason != DenialAuthenticationRequired {
		t.Fatalf("constraint without identity must read as authentication denial, got %+v", decision)
	}

	// No constraint at all passes even anonymously.
	decision = EvaluateGuard(anon, GuardConstraint{}, true)
	if !decision.Authorized() {
		t.Fatal("empty constraint must authorize")
	}
}

func TestEvaluateGuardConstraints(t *testing.T) {
	manager := NewEvaluator(testIdentity(domain.RoleManager, domain.PlanStarter))

	decision := EvaluateGuard(manager, GuardConstraint{
		RequireAuth: true,
		Permission:  domain.PermissionAssignInspection,
	}, true)
	if !decision.Authorized() {
		t.Fatalf("manager holds assign permission, got %+v", decision)
	}

	decision = EvaluateGuard(manager, GuardConstraint{Permission: domain.PermissionManageBilling}, true)
	if decision.Reason != DenialAuthorizationDenied {
		t.Fatalf("missing permission must deny with authorization reason, got %+v", decision)
	}

	decision = EvaluateGuard(manager, GuardConstraint{Feature: domain.FeatureAdvancedReports}, true)
	if decision.Reason != DenialAuthorizationDenied {
		t.Fatalf("gated feature must deny, got %+v", decision)
	}
	if decision.UpgradeMessage == "" {
		t.Fatal("feature denial should carry an upgrade message")
	}

	completed := &domain.ActionContext{
		Inspection: &domain.InspectionContext{Status: domain.InspectionStatusArchived},
	}
	decision = EvaluateGuard(manager, GuardConstraint{
		Action:        domain.ActionEditInspection,
		ActionContext: completed,
	}, true)
	if decision.Reason != DenialAuthorizationDenied {
		t.Fatalf("narrowed action must deny, got %+v", decision)
	}
}

func TestEvaluateContentHide(t *testing.T) {
	anon := NewEvaluator(nil)

	result := EvaluateContent(anon, GuardConstraint{RequireAuth: true}, ContentHide, "", true)
	if result.ShowContent || result.Fallback != "" {
		t.Fatalf("hide strategy must render nothing, got %+v", result)
	}
}

func TestEvaluateContentFallback(t *testing.T) {
	anon := NewEvaluator(nil)

	result := EvaluateContent(anon, GuardConstraint{RequireAuth: true}, ContentFallback, "", true)
	if result.ShowContent {
		t.Fatal("denied content must not show")
	}
	if result.Fallback != DefaultRestrictedNotice {
		t.Fatalf("empty fallback must use the default notice, got %q", result.Fallback)
	}

	result = EvaluateContent(anon, GuardConstraint{RequireAuth: true}, ContentFallback, "Members only.", true)
	if result.Fallback != "Members only." {
		t.Fatalf("caller fallback must win, got %q", result.Fallback)
	}
}

func TestEvaluateContentUpgradeNotice(t *testing.T) {
	starter := NewEvaluator(testIdentity(domain.RoleAdmin, domain.PlanStarter))

	result := EvaluateContent(starter, GuardConstraint{Feature: domain.FeatureBulkExport}, ContentFallback, "", true)
	if result.ShowContent {
		t.Fatal("gated feature must hide content")
	}
	if !strings.Contains(result.Fallback, "Upgrade") {
		t.Fatalf("fallback should append the upgrade message, got %q", result.Fallback)
	}
}

func TestEvaluateContentResolving(t *testing.T) {
	result := EvaluateContent(NewEvaluator(nil), GuardConstraint{RequireAuth: true}, ContentFallback, "x", false)
	if result.ShowContent || result.Fallback != "" {
		t.Fatalf("resolving session must render nothing even with fallback, got %+v", result)
	}
}
