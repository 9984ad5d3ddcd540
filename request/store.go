package request

import "context"

// Store is the durable tagged queue. Each tag is an independent FIFO.
//
// Implementations must be safe for concurrent use. Dequeuing from one tag
// never interferes with another, and a concurrent enqueue and dequeue on
// the same tag neither lose nor duplicate an item.
type Store interface {
	// EnqueueRequest appends info to the tail of the queue for info.APITag.
	EnqueueRequest(ctx context.Context, info Info) error

	// EnqueueRequests appends infos to the tail of tag's queue in order.
	// Every item must carry tag as its APITag.
	EnqueueRequests(ctx context.Context, tag string, infos []Info) error

	// DequeueRequests atomically pops up to maxCount items from the head of
	// tag's queue. Entries that cannot be decoded are removed and reported
	// through the error alongside the items that could.
	DequeueRequests(ctx context.Context, tag string, maxCount int) ([]Info, error)

	// QueueLength returns the number of items waiting on tag.
	QueueLength(ctx context.Context, tag string) (int64, error)
}
