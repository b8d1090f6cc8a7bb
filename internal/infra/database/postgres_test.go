package database

import (
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inspecio/platform-iam/internal/infra/config"
)

func TestConnStringEscapesCredentials(t *testing.T) {
	cfg := config.PostgresSettings{
		Host:     "db.internal",
		Port:     5432,
		User:     "iam",
		Password: "p@ss:with/reserved",
		Database: "iam",
		SSLMode:  "require",
	}

	dsn := connString(cfg)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		t.Fatalf("ParseConfig(%q): %v", dsn, err)
	}
	if poolConfig.ConnConfig.Password != cfg.Password {
		t.Fatalf("password = %q, want %q", poolConfig.ConnConfig.Password, cfg.Password)
	}
	if poolConfig.ConnConfig.Host != "db.internal" {
		t.Fatalf("host = %q", poolConfig.ConnConfig.Host)
	}
	if poolConfig.ConnConfig.Database != "iam" {
		t.Fatalf("database = %q", poolConfig.ConnConfig.Database)
	}
}

func TestApplyPoolLimitsKeepsDefaultsForZeroValues(t *testing.T) {
	poolConfig, err := pgxpool.ParseConfig(connString(config.PostgresSettings{
		Host: "localhost", Port: 5432, User: "iam", Password: "iam", Database: "iam",
	}))
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	defaultMax := poolConfig.MaxConns

	applyPoolLimits(poolConfig, config.PostgresSettings{})
	if poolConfig.MaxConns != defaultMax {
		t.Fatalf("zero max_conns must keep the pgx default, got %d", poolConfig.MaxConns)
	}

	applyPoolLimits(poolConfig, config.PostgresSettings{MaxConns: 25, MinConns: 5})
	if poolConfig.MaxConns != 25 || poolConfig.MinConns != 5 {
		t.Fatalf("limits not applied: max=%d min=%d", poolConfig.MaxConns, poolConfig.MinConns)
	}
}
