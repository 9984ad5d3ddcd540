// Package admission provides a FIFO queue whose consumer side is throttled by
// a sliding counter: at most MaxPerWindow items leave the queue within one
// window measured from the first dequeue of that window.
//
// The counter is burst-permissive. MaxPerWindow items may leave back to back
// at the start of a window, followed by an enforced pause until the window
// has elapsed. This is not a token bucket.
//
// Any number of goroutines may enqueue concurrently. Only one goroutine may
// dequeue: the window state is owned by the consumer and is not locked.
package admission

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync"
	"time"
)

// DefaultCapacity is the buffer size used when WithCapacity is not given.
const DefaultCapacity = 1024

var (
	// ErrDrained is returned by Dequeue once the queue is completed and
	// every buffered item has been handed out.
	ErrDrained = errors.New("admission: queue drained")

	// ErrInvalidLimit is returned by New for a non-positive window or rate.
	ErrInvalidLimit = errors.New("admission: invalid limit")
)

// Option configures a Queue.
type Option func(*options)

type options struct {
	capacity int
	now      func() time.Time
}

// WithCapacity sets the buffer size. Blocking enqueues wait for space once
// the buffer is full.
func WithCapacity(n int) Option {
	return func(o *options) { o.capacity = n }
}

// WithClock overrides the time source used for window bookkeeping.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Queue is a throttled FIFO. Create one with New.
type Queue[T any] struct {
	maxPerWindow int
	window       time.Duration
	now          func() time.Time

	items chan T

	// mu guards closed; producers hold it shared while sending so that
	// Complete can close items without racing a send.
	mu     sync.RWMutex
	closed bool
	done   chan struct{}
	once   sync.Once

	// Consumer-owned state.
	windowStart time.Time
	started     bool
	count       int
	pending     T
	hasPending  bool
}

// New creates a Queue admitting at most maxPerWindow items per window.
func New[T any](window time.Duration, maxPerWindow int, opts ...Option) (*Queue[T], error) {
	if window <= 0 {
		return nil, fmt.Errorf("%w: window must be positive, got %s", ErrInvalidLimit, window)
	}
	if maxPerWindow < 1 {
		return nil, fmt.Errorf("%w: max per window must be >= 1, got %d", ErrInvalidLimit, maxPerWindow)
	}

	o := options{capacity: DefaultCapacity, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.capacity < 1 {
		o.capacity = 1
	}

	return &Queue[T]{
		maxPerWindow: maxPerWindow,
		window:       window,
		now:          o.now,
		items:        make(chan T, o.capacity),
		done:         make(chan struct{}),
	}, nil
}

// MaxPerWindow returns the per-window admission limit.
func (q *Queue[T]) MaxPerWindow() int { return q.maxPerWindow }

// Window returns the window duration.
func (q *Queue[T]) Window() time.Duration { return q.window }

// TryEnqueue appends item without blocking. It returns false if the buffer
// is full or the queue has been completed.
func (q *Queue[T]) TryEnqueue(item T) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return false
	}
	select {
	case <-q.done:
		return false
	case q.items <- item:
		return true
	default:
		return false
	}
}

// Enqueue appends item, waiting for buffer space if needed. It returns
// false if the queue is completed before the item is accepted or ctx is
// cancelled while waiting.
func (q *Queue[T]) Enqueue(ctx context.Context, item T) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return false
	}
	select {
	case q.items <- item:
		return true
	case <-q.done:
		return false
	case <-ctx.Done():
		return false
	}
}

// Complete marks the end of input. Items already buffered can still be
// dequeued. Calling Complete more than once is a no-op.
func (q *Queue[T]) Complete() {
	q.once.Do(func() {
		close(q.done)
		q.mu.Lock()
		q.closed = true
		close(q.items)
		q.mu.Unlock()
	})
}

// Len returns the number of buffered items, excluding an item held back by
// a cancelled Dequeue.
func (q *Queue[T]) Len() int { return len(q.items) }

// Dequeue removes the next item, suspending until one is available and the
// window admits it. It returns ErrDrained once the queue is completed and
// empty, or ctx.Err() on cancellation. An item popped before a cancelled
// throttling wait is kept and returned by the next call.
func (q *Queue[T]) Dequeue(ctx context.Context) (T, error) {
	var zero T

	if !q.hasPending {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		select {
		case item, ok := <-q.items:
			if !ok {
				return zero, ErrDrained
			}
			q.pending, q.hasPending = item, true
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}

	if err := q.throttle(ctx); err != nil {
		return zero, err
	}

	item := q.pending
	q.pending, q.hasPending = zero, false
	return item, nil
}

// All returns a single-use sequence over the queue. It ends when the queue
// is drained or ctx is cancelled.
func (q *Queue[T]) All(ctx context.Context) iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			item, err := q.Dequeue(ctx)
			if err != nil {
				return
			}
			if !yield(item) {
				return
			}
		}
	}
}

// throttle applies the sliding counter to the item about to leave.
func (q *Queue[T]) throttle(ctx context.Context) error {
	now := q.now()

	if !q.started {
		q.started = true
		q.windowStart = now
		q.count = 1
		return nil
	}

	if q.count < q.maxPerWindow {
		q.count++
		return nil
	}

	if elapsed := now.Sub(q.windowStart); elapsed < q.window {
		t := time.NewTimer(q.window - elapsed)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	q.windowStart = q.now()
	q.count = 1
	return nil
}
