package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"

	"github.com/inspecio/platform-iam/internal/core/domain"
	"github.com/inspecio/platform-iam/internal/core/port"
)

// UsageRepository implements port.UsageRepository on a per-team counter table.
type UsageRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewUsageRepository wires a PostgreSQL-backed usage counter repository.
func NewUsageRepository(exec pgExecutor) *UsageRepository {
	return &UsageRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetUsage loads all recorded counters for the team. Missing counters are
// simply absent from the map and read as zero by callers.
func (r *UsageRepository) GetUsage(ctx context.Context, teamID string) (map[domain.LimitType]int64, error) {
	stmt, args, err := r.builder.
		Select("limit_type", "used").
		From("iam.team_usage").
		Where(squirrel.Eq{"team_id": teamID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select usage sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query usage: %w", err)
	}
	defer rows.Close()

	usage := make(map[domain.LimitType]int64)
	for rows.Next() {
		var (
			limitType string
			used      int64
		)
		if err := rows.Scan(&limitType, &used); err != nil {
			return nil, fmt.Errorf("scan usage row: %w", err)
		}
		usage[domain.LimitType(limitType)] = used
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate usage rows: %w", err)
	}
	return usage, nil
}

// IncrementUsage atomically bumps a counter and returns the new value.
func (r *UsageRepository) IncrementUsage(ctx context.Context, teamID string, limit domain.LimitType, delta int64) (int64, error) {
	const stmt = `
		INSERT INTO iam.team_usage (team_id, limit_type, used)
		VALUES ($1, $2, $3)
		ON CONFLICT (team_id, limit_type)
		DO UPDATE SET used = iam.team_usage.used + EXCLUDED.used
		RETURNING used`

	var used int64
	if err := r.exec.QueryRow(ctx, stmt, teamID, string(limit), delta).Scan(&used); err != nil {
		return 0, fmt.Errorf("increment usage: %w", err)
	}
	return used, nil
}

var _ port.UsageRepository = (*UsageRepository)(nil)
