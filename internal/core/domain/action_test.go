package domain

import "testing"

func TestRequirementForAction(t *testing.T) {
	perm, ok := RequirementForAction(ActionDeleteInspection)
	if !ok || perm != PermissionDeleteInspection {
		t.Fatalf("RequirementForAction(delete) = (%s, %v)", perm, ok)
	}

	if _, ok := RequirementForAction(Action("launch_rocket")); ok {
		t.Fatal("unknown action must have no requirement")
	}
}

func TestActionAllowedEditRules(t *testing.T) {
	cases := []struct {
		status InspectionStatus
		want   bool
	}{
		{InspectionStatusDraft, true},
		{InspectionStatusInProgress, true},
		{InspectionStatusCompleted, false},
		{InspectionStatusArchived, false},
	}

	for _, tc := range cases {
		ctx := &ActionContext{Inspection: &InspectionContext{Status: tc.status}}
		if got := ActionAllowed(ActionEditInspection, ctx); got != tc.want {
			t.Errorf("edit with status %s = %v, want %v", tc.status, got, tc.want)
		}
	}

	// Without context the rule has nothing to narrow on.
	if !ActionAllowed(ActionEditInspection, nil) {
		t.Fatal("edit with nil context should be allowed")
	}
}

func TestActionAllowedDeleteRules(t *testing.T) {
	inProgress := &ActionContext{Inspection: &InspectionContext{Status: InspectionStatusInProgress}}
	if ActionAllowed(ActionDeleteInspection, inProgress) {
		t.Fatal("delete of in-progress inspection should be blocked")
	}

	completed := &ActionContext{Inspection: &InspectionContext{Status: InspectionStatusCompleted}}
	if !ActionAllowed(ActionDeleteInspection, completed) {
		t.Fatal("delete of completed inspection should be allowed")
	}
}

func TestActionAllowedDefault(t *testing.T) {
	if !ActionAllowed(ActionAssignInspection, nil) {
		t.Fatal("assign has no narrowing rule")
	}
	if !ActionAllowed(ActionExportReport, &ActionContext{Export: &ExportContext{Format: "pdf"}}) {
		t.Fatal("export has no narrowing rule")
	}
}
