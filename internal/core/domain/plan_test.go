package domain

import "testing"

func TestPlanFeaturesMonotonic(t *testing.T) {
	features := []Feature{
		FeatureAdvancedReports,
		FeatureCustomTemplates,
		FeatureBulkExport,
		FeatureAPIAccess,
		FeatureWhiteLabel,
		FeaturePrioritySupport,
	}

	for i := 1; i < len(planOrder); i++ {
		lower, higher := planOrder[i-1], planOrder[i]
		for _, feature := range features {
			if PlanIncludesFeature(lower, feature) && !PlanIncludesFeature(higher, feature) {
				t.Errorf("feature %s available on %s but not on higher tier %s", feature, lower, higher)
			}
		}
	}
}

func TestPlanQuotasMonotonic(t *testing.T) {
	for i := 1; i < len(planOrder); i++ {
		lower, higher := planOrder[i-1], planOrder[i]
		lowerLimits := LimitsForPlan(lower)
		higherLimits := LimitsForPlan(higher)
		for limitType, quota := range lowerLimits.Quotas {
			if higherLimits.Quotas[limitType] < quota {
				t.Errorf("quota %s shrinks from %d (%s) to %d (%s)",
					limitType, quota, lower, higherLimits.Quotas[limitType], higher)
			}
		}
	}
}

func TestMinimumPlanForFeature(t *testing.T) {
	cases := []struct {
		feature Feature
		want    Plan
		ok      bool
	}{
		{FeatureAdvancedReports, PlanProfessional, true},
		{FeatureBulkExport, PlanProfessional, true},
		{FeatureAPIAccess, PlanEnterprise, true},
		{FeatureWhiteLabel, PlanEnterprise, true},
		{Feature("holograms"), "", false},
	}

	for _, tc := range cases {
		got, ok := MinimumPlanForFeature(tc.feature)
		if got != tc.want || ok != tc.ok {
			t.Errorf("MinimumPlanForFeature(%s) = (%s, %v), want (%s, %v)", tc.feature, got, ok, tc.want, tc.ok)
		}
	}
}

func TestLimitsForUnknownPlan(t *testing.T) {
	limits := LimitsForPlan(Plan("trial"))
	if len(limits.Features) != 0 || len(limits.Quotas) != 0 {
		t.Fatalf("unknown plan should have empty limits, got %+v", limits)
	}
	if PlanIncludesFeature(Plan("trial"), FeatureAdvancedReports) {
		t.Fatal("unknown plan must not include features")
	}
}
