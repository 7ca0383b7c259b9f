package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is plain enough to run unchanged on SQLite and PostgreSQL.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS project_members (
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL,
		role TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		PRIMARY KEY (project_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS sprints (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		goal TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		start_date TIMESTAMP,
		end_date TIMESTAMP,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	// prev_item_id is deliberately not unique: a relink briefly leaves two
	// rows pointing at the same predecessor inside the transaction.
	`CREATE TABLE IF NOT EXISTS backlog_items (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		sprint_id TEXT REFERENCES sprints(id),
		prev_item_id TEXT,
		title TEXT NOT NULL,
		status TEXT NOT NULL,
		priority TEXT NOT NULL,
		point INTEGER NOT NULL DEFAULT 0,
		assignee_id TEXT NOT NULL DEFAULT '',
		creator_id TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS activity_logs (
		id TEXT PRIMARY KEY,
		item_id TEXT NOT NULL REFERENCES backlog_items(id),
		user_id TEXT NOT NULL,
		type TEXT NOT NULL,
		description TEXT NOT NULL,
		old_value TEXT,
		new_value TEXT,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sprints_project ON sprints(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_backlog_items_scope ON backlog_items(project_id, sprint_id)`,
	`CREATE INDEX IF NOT EXISTS idx_backlog_items_prev ON backlog_items(prev_item_id)`,
	`CREATE INDEX IF NOT EXISTS idx_activity_logs_item ON activity_logs(item_id, created_at)`,
}

// runMigrations creates the schema if it does not exist yet.
func runMigrations(ctx context.Context, db *sql.DB) error {
	return withTx(ctx, db, func(tx *sql.Tx) error {
		for i, stmt := range schema {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("migration step %d: %w", i+1, err)
			}
		}
		return nil
	})
}

// Migrate applies the schema to an already open database.
func Migrate(ctx context.Context, db *sql.DB) error {
	return runMigrations(ctx, db)
}
