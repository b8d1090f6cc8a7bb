package usecase

import (
	"fmt"

	"github.com/inspecio/platform-iam/internal/core/domain"
)

// Evaluator answers permission, feature and quota questions for a single
// identity snapshot. All methods are synchronous, side-effect free and never
// panic: absent identity or unknown keys degrade to false/zero so that a
// malformed check renders a denial instead of crashing the caller.
type Evaluator struct {
	identity *domain.Identity
}

// NewEvaluator builds an evaluator for the identity. A nil identity yields an
// evaluator where every check fails closed.
func NewEvaluator(identity *domain.Identity) *Evaluator {
	return &Evaluator{identity: identity}
}

// Authenticated reports whether an identity snapshot is present.
func (e *Evaluator) Authenticated() bool {
	return e != nil && e.identity != nil
}

// Identity returns the underlying snapshot, or nil when unauthenticated.
func (e *Evaluator) Identity() *domain.Identity {
	if e == nil {
		return nil
	}
	return e.identity
}

// HasPermission reports whether the identity's role holds p in the static
// role→permission table.
func (e *Evaluator) HasPermission(p domain.Permission) bool {
	if !e.Authenticated() {
		return false
	}
	return domain.RoleHasPermission(e.identity.Role, p)
}

// HasAnyPermission reports whether at least one permission passes. An empty
// list is false.
func (e *Evaluator) HasAnyPermission(perms ...domain.Permission) bool {
	for _, p := range perms {
		if e.HasPermission(p) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether every permission passes. An empty list is
// vacuously true, but still requires an authenticated identity.
func (e *Evaluator) HasAllPermissions(perms ...domain.Permission) bool {
	if !e.Authenticated() {
		return false
	}
	for _, p := range perms {
		if !e.HasPermission(p) {
			return false
		}
	}
	return true
}

// CanUseFeature reports whether the identity's plan includes the feature.
// Unknown feature keys are unavailable.
func (e *Evaluator) CanUseFeature(feature domain.Feature) bool {
	if !e.Authenticated() {
		return false
	}
	return domain.PlanIncludesFeature(e.identity.Plan, feature)
}

// IsWithinLimit reports whether current consumption sits strictly below the
// plan's quota. Unknown limit types fail closed.
func (e *Evaluator) IsWithinLimit(limit domain.LimitType, current int64) bool {
	if !e.Authenticated() {
		return false
	}
	quota, ok := domain.LimitsForPlan(e.identity.Plan).Quotas[limit]
	if !ok {
		return false
	}
	return current < quota
}

// RemainingQuota returns max(quota-current, 0). The second return is false
// when the limit type is unknown for the plan (or the caller is
// unauthenticated), mirroring a "null" remaining.
func (e *Evaluator) RemainingQuota(limit domain.LimitType, current int64) (int64, bool) {
	if !e.Authenticated() {
		return 0, false
	}
	quota, ok := domain.LimitsForPlan(e.identity.Plan).Quotas[limit]
	if !ok {
		return 0, false
	}
	remaining := quota - current
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

// UsagePercentage returns current/quota clamped to [0,100]. Zero or missing
// quotas yield 0 rather than dividing by zero.
func (e *Evaluator) UsagePercentage(limit domain.LimitType, current int64) float64 {
	if !e.Authenticated() {
		return 0
	}
	quota, ok := domain.LimitsForPlan(e.identity.Plan).Quotas[limit]
	if !ok || quota <= 0 {
		return 0
	}
	pct := float64(current) / float64(quota) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// CanPerformAction resolves the action's static permission requirement, then
// applies the per-action business rule. The rule only ever narrows an
// otherwise granted permission.
func (e *Evaluator) CanPerformAction(action domain.Action, ctx *domain.ActionContext) bool {
	requirement, ok := domain.RequirementForAction(action)
	if !ok {
		return false
	}
	if !e.HasPermission(requirement) {
		return false
	}
	return domain.ActionAllowed(action, ctx)
}

// UpgradeMessage returns human-readable guidance naming the minimum tier that
// includes the feature, or "" when the current plan already covers it or no
// tier offers the feature.
func (e *Evaluator) UpgradeMessage(feature domain.Feature) string {
	if e.CanUseFeature(feature) {
		return ""
	}
	minimum, ok := domain.MinimumPlanForFeature(feature)
	if !ok {
		return ""
	}
	return fmt.Sprintf("Upgrade to the %s plan to unlock %s.", minimum, feature)
}
