// Package store defines the aggregate persistence interface.
//
// The request queue ([request.Store]) and the quote store ([quote.Store])
// are separate contracts. The composite [Store] composes both so a single
// backend satisfies every persistence need of the daemon:
//
//	type Store interface {
//	    request.Store
//	    quote.Store
//
//	    Ping(ctx context.Context) error
//	    Close() error
//	}
//
// # Available Backends
//
//   - store/memory: in-memory store for development and testing
//   - store/redis: Redis lists and hashes, the production backend
//   - store/sqlite: single-file SQLite database
//
// # Usage
//
//	import "github.com/xraph/quotewatch/store/redis"
//
//	s := redis.New(goredis.NewClient(&goredis.Options{Addr: "localhost:6379"}))
//	defer s.Close()
//
// Request queues are per API tag and strictly FIFO. A dequeue pops up to
// the requested count atomically, so concurrent producers never lose or
// duplicate an item.
package store
