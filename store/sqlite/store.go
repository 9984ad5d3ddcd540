package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"

	"github.com/xraph/quotewatch/quote"
	"github.com/xraph/quotewatch/request"
	"github.com/xraph/quotewatch/store"
)

// Compile-time interface checks.
var (
	_ store.Store   = (*Store)(nil)
	_ request.Store = (*Store)(nil)
	_ quote.Store   = (*Store)(nil)
)

// Option configures the Store.
type Option func(*Store)

// WithLogger sets the logger for the store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithMaxHourlyQuotes sets how many hourly quotes are kept per symbol.
func WithMaxHourlyQuotes(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxHourly = n
		}
	}
}

// Store is a SQLite implementation of store.Store. It owns its *sql.DB.
type Store struct {
	db        *sql.DB
	logger    *slog.Logger
	maxHourly int
}

// Open opens (or creates) the database at dsn and applies migrations.
// ":memory:" gives a private in-memory database.
func Open(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("quotewatch/sqlite: open: %w", err)
	}
	// One connection serializes writers and keeps ":memory:" a single
	// database.
	db.SetMaxOpenConns(1)

	s := &Store{
		db:        db,
		logger:    slog.Default(),
		maxHourly: quote.DefaultMaxHourly,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB { return s.db }

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
