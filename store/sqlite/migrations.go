package sqlite

import (
	"context"
	"fmt"
	"log/slog"
)

type migration struct {
	version string
	name    string
	stmts   []string
}

// migrations are applied in order, each at most once.
var migrations = []migration{
	{
		version: "20240101120000",
		name:    "create_requests_table",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS quotewatch_requests (
				seq         INTEGER PRIMARY KEY AUTOINCREMENT,
				tag         TEXT NOT NULL,
				request_id  TEXT,
				payload     BLOB NOT NULL,
				enqueued_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
			)`,
			`CREATE INDEX IF NOT EXISTS idx_quotewatch_requests_tag
				ON quotewatch_requests (tag, seq)`,
		},
	},
	{
		version: "20240101120001",
		name:    "create_quote_tables",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS quotewatch_daily_quotes (
				symbol  TEXT NOT NULL,
				day     TEXT NOT NULL,
				payload BLOB NOT NULL,
				PRIMARY KEY (symbol, day)
			)`,
			`CREATE TABLE IF NOT EXISTS quotewatch_hourly_quotes (
				seq     INTEGER PRIMARY KEY AUTOINCREMENT,
				symbol  TEXT NOT NULL,
				payload BLOB NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_quotewatch_hourly_quotes_symbol
				ON quotewatch_hourly_quotes (symbol, seq)`,
		},
	},
}

// Migrate applies pending schema migrations.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS quotewatch_migrations (
			version    TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		)`); err != nil {
		return fmt.Errorf("quotewatch/sqlite: create migrations table: %w", err)
	}

	for _, m := range migrations {
		if err := s.apply(ctx, m); err != nil {
			return fmt.Errorf("quotewatch/sqlite: migrate %s: %w", m.name, err)
		}
	}
	return nil
}

func (s *Store) apply(ctx context.Context, m migration) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var applied int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM quotewatch_migrations WHERE version = ?`, m.version,
	).Scan(&applied); err != nil {
		return err
	}
	if applied > 0 {
		return nil
	}

	for _, stmt := range m.stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO quotewatch_migrations (version, name) VALUES (?, ?)`, m.version, m.name,
	); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.logger.Info("applied migration", slog.String("version", m.version), slog.String("name", m.name))
	return nil
}
