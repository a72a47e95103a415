package store

import (
	"context"
	"database/sql"
	"fmt"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS application_drafts (
		id                    TEXT PRIMARY KEY,
		user_key              TEXT NOT NULL UNIQUE,
		application_type      TEXT NOT NULL DEFAULT '',
		record                JSONB NOT NULL,
		completion_percentage INTEGER NOT NULL DEFAULT 0,
		program_title         TEXT NOT NULL DEFAULT '',
		program_slug          TEXT NOT NULL DEFAULT '',
		faculty               TEXT NOT NULL DEFAULT '',
		last_saved_at         TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS application_submissions (
		id               BIGSERIAL PRIMARY KEY,
		application_id   TEXT NOT NULL UNIQUE,
		user_key         TEXT NOT NULL,
		application_type TEXT NOT NULL,
		record           JSONB NOT NULL,
		status           TEXT NOT NULL DEFAULT 'submitted',
		program_title    TEXT NOT NULL DEFAULT '',
		program_slug     TEXT NOT NULL DEFAULT '',
		faculty          TEXT NOT NULL DEFAULT '',
		first_name       TEXT NOT NULL DEFAULT '',
		surname          TEXT NOT NULL DEFAULT '',
		email            TEXT NOT NULL DEFAULT '',
		submitted_at     TIMESTAMPTZ NOT NULL,
		updated_at       TIMESTAMPTZ NOT NULL,
		review_comments  TEXT NOT NULL DEFAULT '',
		reviewed_by      TEXT NOT NULL DEFAULT '',
		decision_date    TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_application_submissions_user ON application_submissions (user_key)`,
	`CREATE INDEX IF NOT EXISTS idx_application_submissions_status ON application_submissions (status)`,
	`CREATE TABLE IF NOT EXISTS submission_referees (
		submission_id BIGINT NOT NULL REFERENCES application_submissions (id) ON DELETE CASCADE,
		order_index   INTEGER NOT NULL,
		name          TEXT NOT NULL,
		position      TEXT NOT NULL,
		institution   TEXT NOT NULL,
		address       TEXT NOT NULL,
		email         TEXT NOT NULL,
		PRIMARY KEY (submission_id, order_index)
	)`,
	`CREATE TABLE IF NOT EXISTS submission_work_experience (
		submission_id BIGINT NOT NULL REFERENCES application_submissions (id) ON DELETE CASCADE,
		order_index   INTEGER NOT NULL,
		organization  TEXT NOT NULL,
		position      TEXT NOT NULL,
		from_date     TEXT NOT NULL DEFAULT '',
		to_date       TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (submission_id, order_index)
	)`,
	`CREATE TABLE IF NOT EXISTS application_audit_log (
		id             BIGSERIAL PRIMARY KEY,
		application_id TEXT NOT NULL,
		action         TEXT NOT NULL,
		status         TEXT NOT NULL,
		actor          TEXT NOT NULL DEFAULT '',
		details        TEXT NOT NULL DEFAULT '',
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Migrate creates the portal tables when they are missing. It is safe to run
// on every start.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}
