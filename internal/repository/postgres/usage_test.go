package postgres

import (
	"context"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/inspecio/platform-iam/internal/core/domain"
)

func TestUsageRepository_GetUsage(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUsageRepository(mock)

	rows := pgxmock.NewRows([]string{"limit_type", "used"}).
		AddRow("inspections", int64(42)).
		AddRow("storage_mb", int64(512))

	mock.ExpectQuery(`SELECT limit_type, used FROM iam\.team_usage`).
		WithArgs("team-1").
		WillReturnRows(rows)

	usage, err := repo.GetUsage(context.Background(), "team-1")
	if err != nil {
		t.Fatalf("GetUsage returned error: %v", err)
	}
	if usage[domain.LimitInspections] != 42 || usage[domain.LimitStorageMB] != 512 {
		t.Fatalf("unexpected usage map %+v", usage)
	}
	if _, ok := usage[domain.LimitSeats]; ok {
		t.Fatal("absent counters must stay absent")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUsageRepository_GetUsageEmpty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUsageRepository(mock)

	mock.ExpectQuery(`SELECT limit_type, used FROM iam\.team_usage`).
		WithArgs("team-1").
		WillReturnRows(pgxmock.NewRows([]string{"limit_type", "used"}))

	usage, err := repo.GetUsage(context.Background(), "team-1")
	if err != nil {
		t.Fatalf("GetUsage returned error: %v", err)
	}
	if len(usage) != 0 {
		t.Fatalf("expected empty map, got %+v", usage)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUsageRepository_IncrementUsage(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUsageRepository(mock)

	rows := pgxmock.NewRows([]string{"used"}).AddRow(int64(43))
	mock.ExpectQuery(`INSERT INTO iam\.team_usage`).
		WithArgs("team-1", "inspections", int64(1)).
		WillReturnRows(rows)

	used, err := repo.IncrementUsage(context.Background(), "team-1", domain.LimitInspections, 1)
	if err != nil {
		t.Fatalf("IncrementUsage returned error: %v", err)
	}
	if used != 43 {
		t.Fatalf("used = %d, want 43", used)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
