// Package sqlite implements store.Store on a single-file SQLite database
// through the pure-Go modernc.org/sqlite driver.
//
// Request queues live in one table ordered by an autoincrement sequence, so
// FIFO order per tag is the sequence order. A dequeue selects and deletes
// the head rows inside one transaction. Daily quotes are keyed by
// (symbol, day); hourly quotes keep only the newest rows per symbol.
//
// Usage:
//
//	s, err := sqlite.Open(ctx, "file:quotewatch.db")
//	if err != nil { ... }
//	defer s.Close()
//
// The schema is applied by Open through [Store.Migrate]; migrations are
// versioned and recorded in quotewatch_migrations.
package sqlite
