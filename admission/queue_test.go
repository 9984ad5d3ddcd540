package admission_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/xraph/quotewatch/admission"
)

func newQueue(t *testing.T, window time.Duration, maxPerWindow int, opts ...admission.Option) *admission.Queue[int] {
	t.Helper()
	q, err := admission.New[int](window, maxPerWindow, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return q
}

func TestNew_RejectsInvalidLimits(t *testing.T) {
	if _, err := admission.New[int](0, 1); !errors.Is(err, admission.ErrInvalidLimit) {
		t.Errorf("zero window: got %v, want ErrInvalidLimit", err)
	}
	if _, err := admission.New[int](time.Second, 0); !errors.Is(err, admission.ErrInvalidLimit) {
		t.Errorf("zero rate: got %v, want ErrInvalidLimit", err)
	}
}

func TestRateBound_OnePerSecond(t *testing.T) {
	q := newQueue(t, time.Second, 1)
	for i := range 5 {
		if !q.TryEnqueue(i) {
			t.Fatalf("enqueue %d rejected", i)
		}
	}
	q.Complete()

	var stamps []time.Time
	start := time.Now()
	for item := range q.All(context.Background()) {
		_ = item
		stamps = append(stamps, time.Now())
	}
	total := time.Since(start)

	if len(stamps) != 5 {
		t.Fatalf("drained %d items, want 5", len(stamps))
	}
	for i := 1; i < len(stamps); i++ {
		if gap := stamps[i].Sub(stamps[i-1]); gap < 990*time.Millisecond {
			t.Errorf("gap %d = %v, want >= 1s", i, gap)
		}
	}
	if total < 4*time.Second-10*time.Millisecond {
		t.Errorf("total %v, want >= 4s", total)
	}
}

func TestBurstThenPause(t *testing.T) {
	q := newQueue(t, time.Second, 2)
	for i := range 10 {
		q.TryEnqueue(i)
	}

	ctx := context.Background()
	first := time.Now()
	for i := range 2 {
		if _, err := q.Dequeue(ctx); err != nil {
			t.Fatalf("dequeue %d: %v", i, err)
		}
	}
	if burst := time.Since(first); burst > 100*time.Millisecond {
		t.Errorf("first two dequeues took %v, want immediate", burst)
	}

	if _, err := q.Dequeue(ctx); err != nil {
		t.Fatalf("third dequeue: %v", err)
	}
	if elapsed := time.Since(first); elapsed < 990*time.Millisecond {
		t.Errorf("third dequeue after %v, want >= 1s", elapsed)
	}
}

func TestDequeue_PreservesFIFO(t *testing.T) {
	q := newQueue(t, time.Millisecond, 100)
	for i := range 50 {
		q.TryEnqueue(i)
	}
	q.Complete()

	want := 0
	for got := range q.All(context.Background()) {
		if got != want {
			t.Fatalf("got %d, want %d", got, want)
		}
		want++
	}
	if want != 50 {
		t.Errorf("drained %d items, want 50", want)
	}
}

func TestEnqueueAfterComplete(t *testing.T) {
	q := newQueue(t, time.Second, 1)
	q.Complete()
	q.Complete()

	if q.TryEnqueue(1) {
		t.Error("TryEnqueue after Complete should fail")
	}
	if q.Enqueue(context.Background(), 1) {
		t.Error("Enqueue after Complete should fail")
	}
}

func TestDrainAfterComplete(t *testing.T) {
	q := newQueue(t, time.Millisecond, 10)
	q.TryEnqueue(1)
	q.TryEnqueue(2)
	q.Complete()

	ctx := context.Background()
	for range 2 {
		if _, err := q.Dequeue(ctx); err != nil {
			t.Fatalf("buffered item lost: %v", err)
		}
	}
	if _, err := q.Dequeue(ctx); !errors.Is(err, admission.ErrDrained) {
		t.Errorf("got %v, want ErrDrained", err)
	}
}

func TestTryEnqueue_FullBuffer(t *testing.T) {
	q := newQueue(t, time.Second, 1, admission.WithCapacity(2))
	if !q.TryEnqueue(1) || !q.TryEnqueue(2) {
		t.Fatal("expected space for two items")
	}
	if q.TryEnqueue(3) {
		t.Error("TryEnqueue on full buffer should fail")
	}
	if q.Len() != 2 {
		t.Errorf("Len() = %d, want 2", q.Len())
	}
}

func TestEnqueue_BlocksUntilSpace(t *testing.T) {
	q := newQueue(t, time.Millisecond, 10, admission.WithCapacity(1))
	q.TryEnqueue(1)

	accepted := make(chan bool, 1)
	go func() { accepted <- q.Enqueue(context.Background(), 2) }()

	select {
	case <-accepted:
		t.Fatal("Enqueue should block on a full buffer")
	case <-time.After(50 * time.Millisecond):
	}

	if _, err := q.Dequeue(context.Background()); err != nil {
		t.Fatal(err)
	}

	select {
	case ok := <-accepted:
		if !ok {
			t.Error("Enqueue should succeed once space frees up")
		}
	case <-time.After(time.Second):
		t.Fatal("Enqueue did not unblock")
	}
}

func TestEnqueue_UnblocksOnComplete(t *testing.T) {
	q := newQueue(t, time.Millisecond, 10, admission.WithCapacity(1))
	q.TryEnqueue(1)

	accepted := make(chan bool, 1)
	go func() { accepted <- q.Enqueue(context.Background(), 2) }()

	time.Sleep(20 * time.Millisecond)
	q.Complete()

	select {
	case ok := <-accepted:
		if ok {
			t.Error("Enqueue racing Complete on a full buffer should fail")
		}
	case <-time.After(time.Second):
		t.Fatal("Enqueue did not unblock on Complete")
	}
}

func TestEnqueue_Cancelled(t *testing.T) {
	q := newQueue(t, time.Millisecond, 10, admission.WithCapacity(1))
	q.TryEnqueue(1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if q.Enqueue(ctx, 2) {
		t.Error("Enqueue should fail when cancelled")
	}
}

func TestDequeue_CancelledWhileEmpty(t *testing.T) {
	q := newQueue(t, time.Second, 1)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	if _, err := q.Dequeue(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("cancellation took %v", elapsed)
	}
}

func TestDequeue_CancelledThrottleKeepsItem(t *testing.T) {
	current := time.Now()
	clock := func() time.Time { return current }
	q := newQueue(t, 10*time.Second, 1, admission.WithClock(clock))
	q.TryEnqueue(1)
	q.TryEnqueue(2)

	if got, err := q.Dequeue(context.Background()); err != nil || got != 1 {
		t.Fatalf("first dequeue = %d, %v", got, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	start := time.Now()
	if _, err := q.Dequeue(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("got %v, want DeadlineExceeded", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("throttle cancellation took %v", elapsed)
	}
	if q.Len() != 0 {
		t.Fatalf("Len() = %d, item should have been popped before throttling", q.Len())
	}

	current = current.Add(11 * time.Second)
	got, err := q.Dequeue(context.Background())
	if err != nil || got != 2 {
		t.Errorf("after cancellation got %d, %v; want 2, nil", got, err)
	}
}

func TestConcurrentProducers(t *testing.T) {
	const producers, perProducer = 8, 50
	q := newQueue(t, time.Millisecond, 1000, admission.WithCapacity(16))

	var wg sync.WaitGroup
	for p := range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perProducer {
				if !q.Enqueue(context.Background(), p*perProducer+i) {
					t.Errorf("enqueue rejected")
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		q.Complete()
	}()

	seen := make(map[int]bool)
	for item := range q.All(context.Background()) {
		if seen[item] {
			t.Fatalf("duplicate item %d", item)
		}
		seen[item] = true
	}
	if len(seen) != producers*perProducer {
		t.Errorf("drained %d items, want %d", len(seen), producers*perProducer)
	}
}
