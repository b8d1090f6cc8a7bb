package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/inspecio/platform-iam/internal/core/domain"
	"github.com/inspecio/platform-iam/internal/core/port"
)

// QuotaUsage reports consumption against one plan limit.
type QuotaUsage struct {
	LimitType  domain.LimitType `json:"limit_type"`
	Limit      int64            `json:"limit"`
	Current    int64            `json:"current"`
	Remaining  int64            `json:"remaining"`
	Percentage float64          `json:"percentage"`
}

// QuotaService joins measured team usage with the evaluator's plan limits.
type QuotaService struct {
	usage  port.UsageRepository
	logger *zap.Logger
}

// NewQuotaService constructs a QuotaService.
func NewQuotaService(usage port.UsageRepository, log *zap.Logger) (*QuotaService, error) {
	if usage == nil {
		return nil, fmt.Errorf("usage repository is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &QuotaService{usage: usage, logger: log}, nil
}

// Report returns usage for every limit of the identity's plan. Identities
// without a team have zero recorded consumption.
func (s *QuotaService) Report(ctx context.Context, identity *domain.Identity) ([]QuotaUsage, error) {
	if identity == nil {
		return nil, ErrAuthenticationRequired
	}

	consumed := map[domain.LimitType]int64{}
	if identity.TeamID != nil {
		var err error
		consumed, err = s.usage.GetUsage(ctx, *identity.TeamID)
		if err != nil {
			return nil, fmt.Errorf("load team usage: %w", err)
		}
	}

	eval := NewEvaluator(identity)
	limits := domain.LimitsForPlan(identity.Plan)

	report := make([]QuotaUsage, 0, len(limits.Quotas))
	for _, limitType := range []domain.LimitType{domain.LimitInspections, domain.LimitStorageMB, domain.LimitSeats} {
		quota, ok := limits.Quotas[limitType]
		if !ok {
			continue
		}
		current := consumed[limitType]
		remaining, _ := eval.RemainingQuota(limitType, current)
		report = append(report, QuotaUsage{
			LimitType:  limitType,
			Limit:      quota,
			Current:    current,
			Remaining:  remaining,
			Percentage: eval.UsagePercentage(limitType, current),
		})
	}

	return report, nil
}

// Consume records usage for the identity's team after verifying the plan
// limit still has headroom.
func (s *QuotaService) Consume(ctx context.Context, identity *domain.Identity, limit domain.LimitType, delta int64) (int64, error) {
	if identity == nil {
		return 0, ErrAuthenticationRequired
	}
	if identity.TeamID == nil {
		return 0, fmt.Errorf("identity has no team")
	}
	if delta <= 0 {
		return 0, fmt.Errorf("delta must be positive")
	}

	consumed, err := s.usage.GetUsage(ctx, *identity.TeamID)
	if err != nil {
		return 0, fmt.Errorf("load team usage: %w", err)
	}

	if !NewEvaluator(identity).IsWithinLimit(limit, consumed[limit]) {
		return consumed[limit], ErrPermissionDenied
	}

	total, err := s.usage.IncrementUsage(ctx, *identity.TeamID, limit, delta)
	if err != nil {
		return 0, fmt.Errorf("increment usage: %w", err)
	}
	return total, nil
}
