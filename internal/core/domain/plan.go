package domain

// Feature is a named product capability gated by plan.
type Feature string

const (
	FeatureAdvancedReports Feature = "advanced_reports"
	FeatureCustomTemplates Feature = "custom_templates"
	FeatureBulkExport      Feature = "bulk_export"
	FeatureAPIAccess       Feature = "api_access"
	FeatureWhiteLabel      Feature = "white_label"
	FeaturePrioritySupport Feature = "priority_support"
)

// LimitType names a numeric quota attached to a plan.
type LimitType string

const (
	LimitInspections LimitType = "inspections"
	LimitStorageMB   LimitType = "storage_mb"
	LimitSeats       LimitType = "seats"
)

// PlanLimits describes feature availability and numeric quotas for one tier.
type PlanLimits struct {
	Features map[Feature]bool
	Quotas   map[LimitType]int64
}

// planLimits must stay monotonic: enterprise ⊇ professional ⊇ starter in
// feature availability. The table is authoritative; nothing enforces the
// ordering at runtime.
var planLimits = map[Plan]PlanLimits{
	PlanStarter: {
		Features: map[Feature]bool{
			FeatureAdvancedReports: false,
			FeatureCustomTemplates: false,
			FeatureBulkExport:      false,
			FeatureAPIAccess:       false,
			FeatureWhiteLabel:      false,
			FeaturePrioritySupport: false,
		},
		Quotas: map[LimitType]int64{
			LimitInspections: 50,
			LimitStorageMB:   1024,
			LimitSeats:       3,
		},
	},
	PlanProfessional: {
		Features: map[Feature]bool{
			FeatureAdvancedReports: true,
			FeatureCustomTemplates: true,
			FeatureBulkExport:      true,
			FeatureAPIAccess:       false,
			FeatureWhiteLabel:      false,
			FeaturePrioritySupport: false,
		},
		Quotas: map[LimitType]int64{
			LimitInspections: 500,
			LimitStorageMB:   20480,
			LimitSeats:       15,
		},
	},
	PlanEnterprise: {
		Features: map[Feature]bool{
			FeatureAdvancedReports: true,
			FeatureCustomTemplates: true,
			FeatureBulkExport:      true,
			FeatureAPIAccess:       true,
			FeatureWhiteLabel:      true,
			FeaturePrioritySupport: true,
		},
		Quotas: map[LimitType]int64{
			LimitInspections: 10000,
			LimitStorageMB:   512000,
			LimitSeats:       200,
		},
	},
}

// LimitsForPlan returns the static limits for the plan. Unknown plans share an
// empty zero-value entry, which fails every feature and limit check.
func LimitsForPlan(plan Plan) PlanLimits {
	limits, ok := planLimits[plan]
	if !ok {
		return PlanLimits{}
	}
	return limits
}

// PlanIncludesFeature reports whether the plan's static table enables the feature.
// Unknown features and unknown plans are treated as unavailable.
func PlanIncludesFeature(plan Plan, feature Feature) bool {
	return planLimits[plan].Features[feature]
}

// planOrder lists tiers from lowest to highest for upgrade messaging.
var planOrder = []Plan{PlanStarter, PlanProfessional, PlanEnterprise}

// MinimumPlanForFeature returns the lowest tier whose table includes the
// feature. The second return is false when no tier offers it.
func MinimumPlanForFeature(feature Feature) (Plan, bool) {
	for _, plan := range planOrder {
		if planLimits[plan].Features[feature] {
			return plan, true
		}
	}
	return "", false
}
