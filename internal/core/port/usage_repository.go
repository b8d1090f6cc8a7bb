package port

import (
	"context"

	"github.com/inspecio/platform-iam/internal/core/domain"
)

// UsageRepository tracks measured resource consumption per team, feeding the
// evaluator's quota checks.
type UsageRepository interface {
	GetUsage(ctx context.Context, teamID string) (map[domain.LimitType]int64, error)
	IncrementUsage(ctx context.Context, teamID string, limit domain.LimitType, delta int64) (int64, error)
}
