package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

// statements run in order on startup. Each is idempotent so a restart
// against an existing database is a no-op.
var statements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'user',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS reports (
		id BIGSERIAL PRIMARY KEY,
		report_id BIGINT NOT NULL UNIQUE,
		category TEXT NOT NULL,
		detail TEXT NOT NULL,
		owner TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'waiting',
		feedback TEXT,
		likes_count INTEGER NOT NULL DEFAULT 0 CHECK (likes_count >= 0),
		dislikes_count INTEGER NOT NULL DEFAULT 0 CHECK (dislikes_count >= 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		completed_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id BIGSERIAL PRIMARY KEY,
		report_id BIGINT NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
		author TEXT NOT NULL,
		text TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS likes (
		report_id BIGINT NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
		username TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (report_id, username)
	)`,
	`CREATE TABLE IF NOT EXISTS dislikes (
		report_id BIGINT NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
		username TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (report_id, username)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reports_owner ON reports (owner)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_report_id ON comments (report_id)`,
}

// Apply executes all schema migrations in order.
func Apply(ctx context.Context, db *sql.DB) error {
	for i, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
