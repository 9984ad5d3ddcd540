package middleware_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/xraph/quotewatch"
	"github.com/xraph/quotewatch/middleware"
	"github.com/xraph/quotewatch/request"
)

func newTestInfo() request.Info {
	return request.New(quotewatch.TagPolygon, request.QuoteHistorySync{Symbol: "X:BTCUSD"})
}

func TestChain_ExecutionOrder(t *testing.T) {
	var order []string

	mw1 := func(ctx context.Context, _ request.Info, next middleware.Handler) request.Outcome {
		order = append(order, "mw1-before")
		out := next(ctx)
		order = append(order, "mw1-after")
		return out
	}
	mw2 := func(ctx context.Context, _ request.Info, next middleware.Handler) request.Outcome {
		order = append(order, "mw2-before")
		out := next(ctx)
		order = append(order, "mw2-after")
		return out
	}

	chain := middleware.Chain(mw1, mw2)
	got := chain(context.Background(), newTestInfo(), func(_ context.Context) request.Outcome {
		order = append(order, "handler")
		return request.Ok
	})
	if got != request.Ok {
		t.Fatalf("outcome = %v, want Ok", got)
	}

	expected := []string{"mw1-before", "mw2-before", "handler", "mw2-after", "mw1-after"}
	if len(order) != len(expected) {
		t.Fatalf("expected %d calls, got %d: %v", len(expected), len(order), order)
	}
	for i, want := range expected {
		if order[i] != want {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want)
		}
	}
}

func TestChain_Empty(t *testing.T) {
	chain := middleware.Chain()
	called := false
	got := chain(context.Background(), newTestInfo(), func(_ context.Context) request.Outcome {
		called = true
		return request.Retry
	})
	if !called {
		t.Fatal("handler not called with empty chain")
	}
	if got != request.Retry {
		t.Errorf("outcome = %v, want Retry", got)
	}
}

func TestRecover_PanicIsFatal(t *testing.T) {
	mw := middleware.Recover(slog.Default())

	got := mw(context.Background(), newTestInfo(), func(_ context.Context) request.Outcome {
		panic("test panic")
	})
	if got != request.Fatal {
		t.Errorf("outcome = %v, want Fatal", got)
	}
}

func TestRecover_PassesThrough(t *testing.T) {
	mw := middleware.Recover(slog.Default())

	got := mw(context.Background(), newTestInfo(), func(_ context.Context) request.Outcome {
		return request.WaitAndRetry
	})
	if got != request.WaitAndRetry {
		t.Errorf("outcome = %v, want WaitAndRetry", got)
	}
}

func TestLogging_PassesOutcome(t *testing.T) {
	mw := middleware.Logging(slog.Default())

	got := mw(context.Background(), newTestInfo(), func(_ context.Context) request.Outcome {
		return request.Retry
	})
	if got != request.Retry {
		t.Errorf("outcome = %v, want Retry", got)
	}
}

func TestTimeout_SetsDeadline(t *testing.T) {
	mw := middleware.Timeout(50 * time.Millisecond)

	got := mw(context.Background(), newTestInfo(), func(ctx context.Context) request.Outcome {
		if _, ok := ctx.Deadline(); !ok {
			t.Error("expected deadline on context")
		}
		<-ctx.Done()
		return request.Fatal
	})
	if got != request.Fatal {
		t.Errorf("outcome = %v, want Fatal", got)
	}
}

func TestTimeout_Disabled(t *testing.T) {
	mw := middleware.Timeout(0)

	mw(context.Background(), newTestInfo(), func(ctx context.Context) request.Outcome {
		if _, ok := ctx.Deadline(); ok {
			t.Error("unexpected deadline")
		}
		return request.Ok
	})
}
