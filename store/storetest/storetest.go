// Package storetest provides a conformance suite every store.Store backend
// runs in its own tests.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/quotewatch"
	"github.com/xraph/quotewatch/quote"
	"github.com/xraph/quotewatch/request"
	"github.com/xraph/quotewatch/store"
)

// Factory returns a fresh, empty store. It should register its own cleanup.
// Stores are built with the default hourly retention.
type Factory func(t *testing.T) store.Store

// Run executes the conformance suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("Ping", func(t *testing.T) { testPing(t, newStore(t)) })
	t.Run("FIFO", func(t *testing.T) { testFIFO(t, newStore(t)) })
	t.Run("DequeueEmpty", func(t *testing.T) { testDequeueEmpty(t, newStore(t)) })
	t.Run("TagIsolation", func(t *testing.T) { testTagIsolation(t, newStore(t)) })
	t.Run("BatchValidation", func(t *testing.T) { testBatchValidation(t, newStore(t)) })
	t.Run("RequeuePreservesPayload", func(t *testing.T) { testRequeuePreservesPayload(t, newStore(t)) })
	t.Run("ConcurrentEnqueueDequeue", func(t *testing.T) { testConcurrent(t, newStore(t)) })
	t.Run("DailyQuotes", func(t *testing.T) { testDailyQuotes(t, newStore(t)) })
	t.Run("HourlyQuotes", func(t *testing.T) { testHourlyQuotes(t, newStore(t)) })
	t.Run("RemoveDailyQuotes", func(t *testing.T) { testRemoveDailyQuotes(t, newStore(t)) })
}

func snapshot(page int) request.Info {
	return request.New(quotewatch.TagMessari, request.QuoteSnapshotSync{Page: page})
}

func pages(t *testing.T, infos []request.Info) []int {
	t.Helper()
	out := make([]int, 0, len(infos))
	for _, info := range infos {
		p, ok := info.Payload.(request.QuoteSnapshotSync)
		if !ok {
			t.Fatalf("payload %T, want QuoteSnapshotSync", info.Payload)
		}
		out = append(out, p.Page)
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ──────────────────────────────────────────────────
// Request queue
// ──────────────────────────────────────────────────

func testPing(t *testing.T, s store.Store) {
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func testFIFO(t *testing.T, s store.Store) {
	ctx := context.Background()
	if err := s.EnqueueRequests(ctx, quotewatch.TagMessari, []request.Info{snapshot(1), snapshot(2), snapshot(3)}); err != nil {
		t.Fatal(err)
	}
	if err := s.EnqueueRequest(ctx, snapshot(4)); err != nil {
		t.Fatal(err)
	}

	n, err := s.QueueLength(ctx, quotewatch.TagMessari)
	if err != nil || n != 4 {
		t.Fatalf("QueueLength = %d, %v; want 4", n, err)
	}

	first, err := s.DequeueRequests(ctx, quotewatch.TagMessari, 3)
	if err != nil {
		t.Fatal(err)
	}
	if got := pages(t, first); !equalInts(got, []int{1, 2, 3}) {
		t.Errorf("first batch = %v, want [1 2 3]", got)
	}

	rest, err := s.DequeueRequests(ctx, quotewatch.TagMessari, 10)
	if err != nil {
		t.Fatal(err)
	}
	if got := pages(t, rest); !equalInts(got, []int{4}) {
		t.Errorf("second batch = %v, want [4]", got)
	}
}

func testDequeueEmpty(t *testing.T, s store.Store) {
	ctx := context.Background()
	got, err := s.DequeueRequests(ctx, quotewatch.TagPolygon, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("dequeued %d from empty queue", len(got))
	}
	n, err := s.QueueLength(ctx, quotewatch.TagPolygon)
	if err != nil || n != 0 {
		t.Errorf("QueueLength = %d, %v; want 0", n, err)
	}
}

func testTagIsolation(t *testing.T, s store.Store) {
	ctx := context.Background()
	poly := request.New(quotewatch.TagPolygon, request.QuoteHistorySync{Symbol: "X:BTCUSD"})
	if err := s.EnqueueRequest(ctx, poly); err != nil {
		t.Fatal(err)
	}
	if err := s.EnqueueRequest(ctx, snapshot(1)); err != nil {
		t.Fatal(err)
	}

	got, err := s.DequeueRequests(ctx, quotewatch.TagMessari, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].APITag != quotewatch.TagMessari {
		t.Fatalf("messari dequeue = %v", got)
	}
	n, err := s.QueueLength(ctx, quotewatch.TagPolygon)
	if err != nil || n != 1 {
		t.Errorf("polygon QueueLength = %d, %v; want 1", n, err)
	}
}

func testBatchValidation(t *testing.T, s store.Store) {
	ctx := context.Background()
	mixed := []request.Info{snapshot(1), request.New(quotewatch.TagPolygon, request.Nop{})}
	if err := s.EnqueueRequests(ctx, quotewatch.TagMessari, mixed); !errors.Is(err, quotewatch.ErrTagMismatch) {
		t.Errorf("got %v, want ErrTagMismatch", err)
	}
	if err := s.EnqueueRequest(ctx, request.New("", request.Nop{})); !errors.Is(err, quotewatch.ErrMissingAPITag) {
		t.Errorf("got %v, want ErrMissingAPITag", err)
	}
	byPointer := request.Info{APITag: quotewatch.TagMessari, Payload: &request.QuoteSnapshotSync{Page: 1}}
	if err := s.EnqueueRequest(ctx, byPointer); !errors.Is(err, quotewatch.ErrUnknownRequest) {
		t.Errorf("got %v, want ErrUnknownRequest", err)
	}
	n, _ := s.QueueLength(ctx, quotewatch.TagMessari)
	if n != 0 {
		t.Errorf("rejected batch left %d items", n)
	}
}

func testRequeuePreservesPayload(t *testing.T, s store.Store) {
	ctx := context.Background()
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	info := request.New(quotewatch.TagPolygon, request.TrackerSync{Date: date, QuoteHistoryDays: 30})
	if err := s.EnqueueRequest(ctx, info); err != nil {
		t.Fatal(err)
	}
	got, err := s.DequeueRequests(ctx, quotewatch.TagPolygon, 1)
	if err != nil || len(got) != 1 {
		t.Fatalf("dequeue = %v, %v", got, err)
	}
	if err := s.EnqueueRequest(ctx, got[0]); err != nil {
		t.Fatal(err)
	}
	again, err := s.DequeueRequests(ctx, quotewatch.TagPolygon, 1)
	if err != nil || len(again) != 1 {
		t.Fatalf("second dequeue = %v, %v", again, err)
	}

	if again[0].ID.String() != info.ID.String() {
		t.Errorf("ID changed across requeue: %s -> %s", info.ID, again[0].ID)
	}
	p, ok := again[0].Payload.(request.TrackerSync)
	if !ok || !p.Date.Equal(date) || p.QuoteHistoryDays != 30 {
		t.Errorf("payload = %#v", again[0].Payload)
	}
}

func testConcurrent(t *testing.T, s store.Store) {
	const producers, perProducer = 4, 25
	ctx := context.Background()

	var wg sync.WaitGroup
	for p := range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perProducer {
				if err := s.EnqueueRequest(ctx, snapshot(p*perProducer+i)); err != nil {
					t.Errorf("enqueue: %v", err)
				}
			}
		}()
	}

	seen := make(map[int]bool)
	var mu sync.Mutex
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	collect := func() {
		got, err := s.DequeueRequests(ctx, quotewatch.TagMessari, 7)
		if err != nil {
			t.Errorf("dequeue: %v", err)
			return
		}
		mu.Lock()
		defer mu.Unlock()
		for _, page := range pages(t, got) {
			if seen[page] {
				t.Errorf("duplicate page %d", page)
			}
			seen[page] = true
		}
	}

	deadline := time.After(10 * time.Second)
loop:
	for {
		select {
		case <-done:
			break loop
		case <-deadline:
			t.Fatal("timeout waiting for producers")
		default:
			collect()
		}
	}
	for range producers * perProducer {
		collect()
	}

	if len(seen) != producers*perProducer {
		t.Errorf("collected %d items, want %d", len(seen), producers*perProducer)
	}
}

// ──────────────────────────────────────────────────
// Quotes
// ──────────────────────────────────────────────────

func newQuote(symbol string, date time.Time, closePrice string) quote.Quote {
	c := decimal.RequireFromString(closePrice)
	return quote.Quote{
		Symbol:   symbol,
		Open:     c,
		Close:    c,
		High:     c,
		Low:      c,
		Currency: "USD",
		Date:     date,
	}
}

func testDailyQuotes(t *testing.T, s store.Store) {
	ctx := context.Background()
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	if err := s.PutDailyQuote(ctx, newQuote("BTC", day, "60000.5")); err != nil {
		t.Fatal(err)
	}
	if err := s.PutDailyQuote(ctx, newQuote("BTC", day, "61000.25")); err != nil {
		t.Fatal(err)
	}
	if err := s.PutDailyQuote(ctx, newQuote("ETH", day, "3400")); err != nil {
		t.Fatal(err)
	}

	got, ok, err := s.DailyQuote(ctx, "BTC", day.Add(12*time.Hour))
	if err != nil || !ok {
		t.Fatalf("DailyQuote = %v, %v, %v", got, ok, err)
	}
	if !got.Close.Equal(decimal.RequireFromString("61000.25")) {
		t.Errorf("Close = %s, want replaced value 61000.25", got.Close)
	}
	if _, ok, _ := s.DailyQuote(ctx, "BTC", day.AddDate(0, 0, 1)); ok {
		t.Error("expected no quote for the next day")
	}

	trackers, err := s.DailyTrackers(ctx)
	if err != nil {
		t.Fatal(err)
	}
	symbols := make(map[string]bool)
	for _, tr := range trackers {
		symbols[tr.Symbol] = true
	}
	if len(symbols) != 2 || !symbols["BTC"] || !symbols["ETH"] {
		t.Errorf("DailyTrackers = %v, want BTC and ETH", trackers)
	}
}

func testHourlyQuotes(t *testing.T, s store.Store) {
	ctx := context.Background()
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	total := quote.DefaultMaxHourly + 5

	for h := range total {
		q := newQuote("BTC", start.Add(time.Duration(h)*time.Hour), fmt.Sprintf("%d", 100+h))
		if err := s.PutHourlyQuote(ctx, q); err != nil {
			t.Fatal(err)
		}
	}

	newest, ok, err := s.HourlyQuote(ctx, "BTC", 0)
	if err != nil || !ok {
		t.Fatalf("HourlyQuote(0) = %v, %v", ok, err)
	}
	if want := decimal.NewFromInt(int64(100 + total - 1)); !newest.Close.Equal(want) {
		t.Errorf("newest Close = %s, want %s", newest.Close, want)
	}

	oldest, ok, err := s.HourlyQuote(ctx, "BTC", quote.DefaultMaxHourly-1)
	if err != nil || !ok {
		t.Fatalf("HourlyQuote(max-1) = %v, %v", ok, err)
	}
	if want := decimal.NewFromInt(int64(100 + total - quote.DefaultMaxHourly)); !oldest.Close.Equal(want) {
		t.Errorf("oldest Close = %s, want %s", oldest.Close, want)
	}
	if _, ok, _ := s.HourlyQuote(ctx, "BTC", quote.DefaultMaxHourly); ok {
		t.Error("hourly list was not trimmed")
	}

	trackers, err := s.HourlyTrackers(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(trackers) != 1 || trackers[0].Symbol != "BTC" {
		t.Errorf("HourlyTrackers = %v", trackers)
	}
}

func testRemoveDailyQuotes(t *testing.T, s store.Store) {
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for d := range 5 {
		if err := s.PutDailyQuote(ctx, newQuote("SOL", base.AddDate(0, 0, d), "150")); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := s.RemoveDailyQuotes(ctx, "SOL", base.AddDate(0, 0, 3))
	if err != nil {
		t.Fatal(err)
	}
	if removed != 3 {
		t.Errorf("removed %d, want 3", removed)
	}
	if _, ok, _ := s.DailyQuote(ctx, "SOL", base.AddDate(0, 0, 2)); ok {
		t.Error("quote before threshold still present")
	}
	if _, ok, _ := s.DailyQuote(ctx, "SOL", base.AddDate(0, 0, 3)); !ok {
		t.Error("quote on threshold day was removed")
	}
}
