package usecase

import "github.com/inspecio/platform-iam/internal/core/domain"

// GuardState is the decision a guard reaches for one request or render pass.
type GuardState int

const (
	// GuardResolving means the session has not been resolved yet; no access
	// decision may be made and callers should present a pending state.
	GuardResolving GuardState = iota
	// GuardAuthorized means the guarded content may be served.
	GuardAuthorized
	// GuardDenied means access was refused, either for missing authentication
	// or for a failed constraint.
	GuardDenied
)

// DenialReason distinguishes the two denial classes of the error taxonomy.
type DenialReason int

const (
	DenialNone DenialReason = iota
	// DenialAuthenticationRequired: no identity present. Route guards redirect
	// to login; content guards hide.
	DenialAuthenticationRequired
	// DenialAuthorizationDenied: identity present but a constraint failed.
	DenialAuthorizationDenied
)

// GuardConstraint declares what a guarded route or fragment requires. The
// zero value requires only authentication when RequireAuth is set, and nothing
// at all otherwise.
type GuardConstraint struct {
	RequireAuth    bool
	Permission     domain.Permission
	AnyPermission  []domain.Permission
	AllPermissions []domain.Permission
	Feature        domain.Feature
	Action         domain.Action
	ActionContext  *domain.ActionContext
}

// empty reports whether the constraint carries no checks beyond authentication.
func (c GuardConstraint) empty() bool {
	return c.Permission == "" &&
		len(c.AnyPermission) == 0 &&
		len(c.AllPermissions) == 0 &&
		c.Feature == "" &&
		c.Action == ""
}

// GuardDecision is the outcome of evaluating a constraint for one request.
// It must be recomputed whenever the identity changes; callers must not cache
// it across sign-in or sign-out.
type GuardDecision struct {
	State          GuardState
	Reason         DenialReason
	UpgradeMessage string
}

// Authorized is a convenience accessor.
func (d GuardDecision) Authorized() bool { return d.State == GuardAuthorized }

// EvaluateGuard runs the guard decision rule shared by the route and content
// guards. resolved=false maps to the Resolving state regardless of constraint.
func EvaluateGuard(eval *Evaluator, constraint GuardConstraint, resolved bool) GuardDecision {
	if !resolved {
		return GuardDecision{State: GuardResolving}
	}

	authenticated := eval.Authenticated()
	if constraint.RequireAuth && !authenticated {
		return GuardDecision{State: GuardDenied, Reason: DenialAuthenticationRequired}
	}

	if constraint.empty() {
		return GuardDecision{State: GuardAuthorized}
	}

	// Constraints beyond bare authentication always need an identity.
	if !authenticated {
		return GuardDecision{State: GuardDenied, Reason: DenialAuthenticationRequired}
	}

	if constraint.Permission != "" && !eval.HasPermission(constraint.Permission) {
		return GuardDecision{State: GuardDenied, Reason: DenialAuthorizationDenied}
	}
	if len(constraint.AnyPermission) > 0 && !eval.HasAnyPermission(constraint.AnyPermission...) {
		return GuardDecision{State: GuardDenied, Reason: DenialAuthorizationDenied}
	}
	if len(constraint.AllPermissions) > 0 && !eval.HasAllPermissions(constraint.AllPermissions...) {
		return GuardDecision{State: GuardDenied, Reason: DenialAuthorizationDenied}
	}
	if constraint.Feature != "" && !eval.CanUseFeature(constraint.Feature) {
		return GuardDecision{
			State:          GuardDenied,
			Reason:         DenialAuthorizationDenied,
			UpgradeMessage: eval.UpgradeMessage(constraint.Feature),
		}
	}
	if constraint.Action != "" && !eval.CanPerformAction(constraint.Action, constraint.ActionContext) {
		return GuardDecision{State: GuardDenied, Reason: DenialAuthorizationDenied}
	}

	return GuardDecision{State: GuardAuthorized}
}

// ContentStrategy selects what a content guard renders on denial.
type ContentStrategy int

const (
	// ContentHide renders nothing when the constraint fails.
	ContentHide ContentStrategy = iota
	// ContentFallback renders a caller-supplied (or default) notice.
	ContentFallback
)

// ContentResult tells the view layer what to render. The decision is purely
// local: no navigation, no side effects, safe to nest and repeat within one
// render pass.
type ContentResult struct {
	ShowContent bool
	Fallback    string
}

// DefaultRestrictedNotice is rendered when a fallback strategy has no
// caller-supplied text.
const DefaultRestrictedNotice = "Access to this content is restricted."

// EvaluateContent applies the shared guard rule with content-guard rendering
// semantics.
func EvaluateContent(eval *Evaluator, constraint GuardConstraint, strategy ContentStrategy, fallback string, resolved bool) ContentResult {
	decision := EvaluateGuard(eval, constraint, resolved)
	if decision.Authorized() {
		return ContentResult{ShowContent: true}
	}
	if strategy == ContentHide || decision.State == GuardResolving {
		return ContentResult{}
	}

	notice := fallback
	if notice == "" {
		notice = DefaultRestrictedNotice
	}
	if decision.UpgradeMessage != "" {
		notice = notice + " " + decision.UpgradeMessage
	}
	return ContentResult{Fallback: notice}
}
