package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the tables the service needs if they are
// missing. The service owns its schema; there is no separate migration
// step for a single-table layout.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS sessions (
			id UUID PRIMARY KEY,
			case_id TEXT NOT NULL,
			learner TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			conversation JSONB NOT NULL DEFAULT '[]',
			ordered_tests JSONB NOT NULL DEFAULT '[]',
			test_results JSONB NOT NULL DEFAULT '{}',
			submission JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_case_id ON sessions (case_id);
		CREATE INDEX IF NOT EXISTS idx_sessions_created_at ON sessions (created_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
