// Package database persists projects, sprints, backlog items and their
// activity in SQLite (embedded) or PostgreSQL (through pgx).
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Options selects and tunes the database connection.
type Options struct {
	// Driver is "sqlite" or "pgx".
	Driver string
	// DSN is a file path (or ":memory:") for sqlite, a connection URL for pgx.
	DSN          string
	MaxOpenConns int
}

// DefaultSQLitePath is ~/.projecthub/projecthub.db.
func DefaultSQLitePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".projecthub", "projecthub.db"), nil
}

// Open connects, configures the pool and runs migrations.
func Open(ctx context.Context, opts Options) (*sql.DB, error) {
	dialect, err := DialectFor(opts.Driver)
	if err != nil {
		return nil, err
	}

	if dialect == SQLite && opts.DSN != ":memory:" && !strings.HasPrefix(opts.DSN, "file:") {
		if err := os.MkdirAll(filepath.Dir(opts.DSN), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	dsn := opts.DSN
	if dialect == SQLite {
		dsn = sqliteDSN(dsn)
	}

	db, err := sql.Open(opts.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	closeOnErr := func(cause error) (*sql.DB, error) {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing db", "error", closeErr)
		}
		return nil, cause
	}

	switch dialect {
	case SQLite:
		// single writer; also keeps ":memory:" databases on one connection
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	case Postgres:
		maxOpen := opts.MaxOpenConns
		if maxOpen <= 0 {
			maxOpen = 20
		}
		db.SetConnMaxIdleTime(5 * time.Minute)
		db.SetConnMaxLifetime(30 * time.Minute)
		db.SetMaxIdleConns(maxOpen / 2)
		db.SetMaxOpenConns(maxOpen)
	}

	if err := db.PingContext(ctx); err != nil {
		return closeOnErr(fmt.Errorf("database ping failed: %w", err))
	}

	if err := runMigrations(ctx, db); err != nil {
		return closeOnErr(fmt.Errorf("failed to run migrations: %w", err))
	}

	return db, nil
}

// sqlitePragmas are per connection, so they ride on the DSN and the driver
// applies them to every connection it opens.
var sqlitePragmas = []string{
	"foreign_keys(1)",
	"journal_mode(WAL)",
	// SQLite retries a locked database for this long
	"busy_timeout(5000)",
}

func sqliteDSN(dsn string) string {
	params := make([]string, len(sqlitePragmas))
	for i, p := range sqlitePragmas {
		params[i] = "_pragma=" + p
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}
