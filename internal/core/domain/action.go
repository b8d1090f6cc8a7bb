package domain

// Action names a guarded business operation. Each action resolves to a static
// permission requirement; some carry an additional business rule evaluated
// against a typed context.
type Action string

const (
	ActionEditInspection   Action = "edit_inspection"
	ActionDeleteInspection Action = "delete_inspection"
	ActionAssignInspection Action = "assign_inspection"
	ActionExportReport     Action = "export_report"
)

// InspectionStatus tracks an inspection through its lifecycle.
type InspectionStatus string

const (
	InspectionStatusDraft      InspectionStatus = "draft"
	InspectionStatusInProgress InspectionStatus = "in_progress"
	InspectionStatusCompleted  InspectionStatus = "completed"
	InspectionStatusArchived   InspectionStatus = "archived"
)

// ActionContext carries the business data an action rule may consult. It is a
// tagged union keyed by the action: each variant field is only read by the
// rule for its own action, and a nil context means "no extra rule applies".
type ActionContext struct {
	Inspection *InspectionContext
	Export     *ExportContext
}

// InspectionContext describes the inspection an action targets.
type InspectionContext struct {
	InspectionID string
	Status       InspectionStatus
	AssigneeID   string
}

// ExportContext describes a report-export request.
type ExportContext struct {
	ReportID string
	Format   string
}

// actionRequirements maps every action to its static permission requirement.
var actionRequirements = map[Action]Permission{
	ActionEditInspection:   PermissionEditInspection,
	ActionDeleteInspection: PermissionDeleteInspection,
	ActionAssignInspection: PermissionAssignInspection,
	ActionExportReport:     PermissionExportReports,
}

// RequirementForAction resolves the static permission an action requires.
// Unknown actions have no requirement and must be denied by callers.
func RequirementForAction(action Action) (Permission, bool) {
	perm, ok := actionRequirements[action]
	return perm, ok
}

// ActionAllowed applies the per-action business rule on top of an already
// granted static permission. Rules only ever narrow: a true result still
// requires the static permission to have passed.
func ActionAllowed(action Action, ctx *ActionContext) bool {
	switch action {
	case ActionEditInspection:
		// Completed and archived inspections are read-only for everyone.
		if ctx != nil && ctx.Inspection != nil {
			switch ctx.Inspection.Status {
			case InspectionStatusCompleted, InspectionStatusArchived:
				return false
			}
		}
		return true
	case ActionDeleteInspection:
		// Inspections in progress cannot be deleted out from under the inspector.
		if ctx != nil && ctx.Inspection != nil && ctx.Inspection.Status == InspectionStatusInProgress {
			return false
		}
		return true
	default:
		return true
	}
}
