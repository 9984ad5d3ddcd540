package worker_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/xraph/quotewatch/ext"
	"github.com/xraph/quotewatch/request"
	"github.com/xraph/quotewatch/store/memory"
	"github.com/xraph/quotewatch/worker"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// scriptedRequest runs fn when executed.
type scriptedRequest struct {
	name string
	fn   func(ctx context.Context) request.Outcome
}

func (r scriptedRequest) Execute(ctx context.Context, _ *slog.Logger) request.Outcome {
	return r.fn(ctx)
}

func (r scriptedRequest) String() string { return r.name }

// script maps every work item to the same behavior and counts executions.
type script struct {
	mu    sync.Mutex
	runs  []request.Info
	onRun func(ctx context.Context, info request.Info, n int) request.Outcome
}

func (s *script) Create(info request.Info) (request.Request, error) {
	return scriptedRequest{
		name: info.String(),
		fn: func(ctx context.Context) request.Outcome {
			s.mu.Lock()
			s.runs = append(s.runs, info)
			n := len(s.runs)
			s.mu.Unlock()
			return s.onRun(ctx, info, n)
		},
	}, nil
}

func (s *script) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.runs)
}

func always(o request.Outcome) *script {
	return &script{onRun: func(context.Context, request.Info, int) request.Outcome { return o }}
}

// spyStore records when a dequeue returned items.
type spyStore struct {
	*memory.Store

	mu       sync.Mutex
	dequeues []time.Time
}

func newSpyStore() *spyStore { return &spyStore{Store: memory.New()} }

func (s *spyStore) DequeueRequests(ctx context.Context, tag string, maxCount int) ([]request.Info, error) {
	infos, err := s.Store.DequeueRequests(ctx, tag, maxCount)
	if len(infos) > 0 {
		s.mu.Lock()
		s.dequeues = append(s.dequeues, time.Now())
		s.mu.Unlock()
	}
	return infos, err
}

func (s *spyStore) dequeueTimes() []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Time(nil), s.dequeues...)
}

// recorder captures lifecycle hooks.
type recorder struct {
	mu       sync.Mutex
	dropped  []string
	requeued []request.Outcome
	paused   []time.Duration
}

var (
	_ ext.RequestDropped   = (*recorder)(nil)
	_ ext.RequestRequeued  = (*recorder)(nil)
	_ ext.DispatcherPaused = (*recorder)(nil)
)

func (r *recorder) Name() string { return "recorder" }

func (r *recorder) OnRequestDropped(_ context.Context, _ request.Info, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dropped = append(r.dropped, reason)
	return nil
}

func (r *recorder) OnRequestRequeued(_ context.Context, _ request.Info, outcome request.Outcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requeued = append(r.requeued, outcome)
	return nil
}

func (r *recorder) OnDispatcherPaused(_ context.Context, _ string, pause time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paused = append(r.paused, pause)
	return nil
}

func (r *recorder) pauses() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.paused...)
}

func newRegistry(rec *recorder) *ext.Registry {
	reg := ext.NewRegistry(discardLogger())
	reg.Register(rec)
	return reg
}

func newExecutor(factory request.Factory, st request.Store, reg *ext.Registry) *worker.Executor {
	return worker.NewExecutor(factory, st, reg, discardLogger())
}

func mustDispatcher(t *testing.T, tag string, st request.Store, exec *worker.Executor, opts ...worker.DispatcherOption) *worker.Dispatcher {
	t.Helper()
	opts = append([]worker.DispatcherOption{worker.WithLogger(discardLogger())}, opts...)
	d, err := worker.NewDispatcher(tag, st, exec, opts...)
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	return d
}

func queueLen(t *testing.T, st request.Store, tag string) int64 {
	t.Helper()
	n, err := st.QueueLength(context.Background(), tag)
	if err != nil {
		t.Fatalf("QueueLength: %v", err)
	}
	return n
}

func enqueue(t *testing.T, st request.Store, infos ...request.Info) {
	t.Helper()
	for _, info := range infos {
		if err := st.EnqueueRequest(context.Background(), info); err != nil {
			t.Fatalf("enqueue %s: %v", info, err)
		}
	}
}

func pageOf(info request.Info) string {
	if p, ok := info.Payload.(request.QuoteSnapshotSync); ok {
		return fmt.Sprint(p.Page)
	}
	return string(info.Kind())
}
