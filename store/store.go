// Package store defines the aggregate persistence interface. The request
// queue and the quote store each define their own contract; a backend
// implements both. Backends: Redis, SQLite, and Memory.
package store

import (
	"context"

	"github.com/xraph/quotewatch/quote"
	"github.com/xraph/quotewatch/request"
)

// Store is the aggregate persistence interface.
type Store interface {
	request.Store
	quote.Store

	// Ping checks backend connectivity.
	Ping(ctx context.Context) error

	// Close releases the backend connection.
	Close() error
}
