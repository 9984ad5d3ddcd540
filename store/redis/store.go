// Package redis implements store.Store on Redis. Each tag's request queue
// is a List (RPUSH to the tail, atomic pop of a batch from the head), daily
// quotes are a Hash per symbol keyed by day, and hourly quotes are a List
// per symbol trimmed to a fixed length.
//
// Usage:
//
//	client := goredis.NewClient(&goredis.Options{Addr: "localhost:6379"})
//	s := redisstore.New(client)
//	if err := s.Ping(ctx); err != nil { ... }
package redis

import (
	"context"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

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

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithMaxHourlyQuotes sets how many hourly quotes are kept per symbol.
func WithMaxHourlyQuotes(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxHourly = n
		}
	}
}

// Store implements the composite store.Store interface backed by Redis.
type Store struct {
	client    goredis.Cmdable
	logger    *slog.Logger
	maxHourly int
}

// New creates a new Redis-backed store. The caller owns the Redis client
// lifecycle.
func New(client goredis.Cmdable, opts ...Option) *Store {
	s := &Store{
		client:    client,
		logger:    slog.Default(),
		maxHourly: quote.DefaultMaxHourly,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Client returns the underlying Redis client.
func (s *Store) Client() goredis.Cmdable { return s.client }

// Ping verifies the Redis connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close is a no-op; the caller owns the Redis client lifecycle.
func (s *Store) Close() error { return nil }
