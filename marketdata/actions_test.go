package marketdata_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xraph/quotewatch"
	"github.com/xraph/quotewatch/cron"
	"github.com/xraph/quotewatch/marketdata"
	"github.com/xraph/quotewatch/quote"
	"github.com/xraph/quotewatch/request"
)

func actionsByName(t *testing.T, deps marketdata.Deps) map[string]cron.Action {
	t.Helper()
	actions, err := marketdata.Actions(deps, quotewatch.DefaultConfig().Schedules, now, discard())
	if err != nil {
		t.Fatal(err)
	}
	byName := make(map[string]cron.Action, len(actions))
	for _, a := range actions {
		byName[a.Name()] = a
	}
	return byName
}

func putDaily(t *testing.T, s quote.Store, symbol string, date time.Time) {
	t.Helper()
	q := quote.Quote{Symbol: symbol, Open: dec("1"), Close: dec("1"), High: dec("1"), Low: dec("1"), Currency: "USD", Date: date}
	if err := s.PutDailyQuote(context.Background(), q); err != nil {
		t.Fatal(err)
	}
}

func TestActions_All(t *testing.T) {
	deps, _ := newDeps(t, nil, nil)
	byName := actionsByName(t, deps)
	for _, name := range []string{
		marketdata.ActionQuoteHistory,
		marketdata.ActionQuoteSnapshot,
		marketdata.ActionTrackers,
		marketdata.ActionCleanup,
		marketdata.ActionInitialize,
	} {
		if _, ok := byName[name]; !ok {
			t.Errorf("missing action %q", name)
		}
	}

	once := byName[marketdata.ActionInitialize].Schedule()
	if next := once.Next(now.Add(-time.Second)); !next.Equal(now) {
		t.Errorf("initialize next = %s, want %s", next, now)
	}
	if next := once.Next(now); !next.IsZero() {
		t.Errorf("initialize fires again at %s", next)
	}
}

func TestActions_InvalidSchedule(t *testing.T) {
	deps, _ := newDeps(t, nil, nil)
	schedules := quotewatch.DefaultConfig().Schedules
	schedules.Cleanup = "not a schedule"
	if _, err := marketdata.Actions(deps, schedules, now, discard()); !errors.Is(err, quotewatch.ErrInvalidConfig) {
		t.Errorf("got %v, want ErrInvalidConfig", err)
	}
}

func TestQuoteHistoryAction(t *testing.T) {
	deps, s := newDeps(t, nil, nil)
	putDaily(t, s, "BTC", now.AddDate(0, 0, -2))
	putDaily(t, s, "ETH", now.AddDate(0, 0, -2))

	cont, err := actionsByName(t, deps)[marketdata.ActionQuoteHistory].Execute(context.Background())
	if err != nil || !cont {
		t.Fatalf("Execute() = %v, %v", cont, err)
	}

	infos := drain(t, s, quotewatch.TagPolygon)
	if len(infos) != 2 {
		t.Fatalf("queued %d items, want 2", len(infos))
	}
	from, to := marketdata.HistoryRange(now, deps.QuoteHistoryDays)
	for i, want := range []string{"X:BTCUSD", "X:ETHUSD"} {
		got := infos[i].Payload.(request.QuoteHistorySync)
		if got.Symbol != want || !got.From.Equal(from) || !got.To.Equal(to) {
			t.Errorf("item %d = %+v, want %s", i, got, want)
		}
	}
}

func TestQuoteSnapshotAction(t *testing.T) {
	deps, s := newDeps(t, nil, nil)

	cont, err := actionsByName(t, deps)[marketdata.ActionQuoteSnapshot].Execute(context.Background())
	if err != nil || !cont {
		t.Fatalf("Execute() = %v, %v", cont, err)
	}
	infos := drain(t, s, quotewatch.TagMessari)
	if len(infos) != 1 || infos[0].Kind() != request.KindQuoteSnapshotSync {
		t.Fatalf("queued %v, want one quote snapshot sync", infos)
	}
	if page := infos[0].Payload.(request.QuoteSnapshotSync).Page; page != 1 {
		t.Errorf("page = %d, want 1", page)
	}
}

func TestTrackersAction(t *testing.T) {
	deps, s := newDeps(t, nil, nil)

	cont, err := actionsByName(t, deps)[marketdata.ActionTrackers].Execute(context.Background())
	if err != nil || !cont {
		t.Fatalf("Execute() = %v, %v", cont, err)
	}
	infos := drain(t, s, quotewatch.TagPolygon)
	if len(infos) != 1 {
		t.Fatalf("queued %d items, want 1", len(infos))
	}
	p, ok := infos[0].Payload.(request.TrackerSync)
	if !ok {
		t.Fatalf("payload %T, want TrackerSync", infos[0].Payload)
	}
	if want := now.AddDate(0, 0, -1); !p.Date.Equal(want) || p.QuoteHistoryDays != deps.QuoteHistoryDays {
		t.Errorf("payload = %+v, want date %s", p, want)
	}
}

func TestCleanupAction(t *testing.T) {
	deps, s := newDeps(t, nil, nil)
	from, _ := marketdata.HistoryRange(now, deps.QuoteHistoryDays)
	old := from.AddDate(0, 0, -1)
	putDaily(t, s, "BTC", old)
	putDaily(t, s, "BTC", from)
	putDaily(t, s, "ETH", old)

	cont, err := actionsByName(t, deps)[marketdata.ActionCleanup].Execute(context.Background())
	if err != nil || !cont {
		t.Fatalf("Execute() = %v, %v", cont, err)
	}

	ctx := context.Background()
	if _, ok, _ := s.DailyQuote(ctx, "BTC", old); ok {
		t.Error("expired BTC quote kept")
	}
	if _, ok, _ := s.DailyQuote(ctx, "BTC", from); !ok {
		t.Error("BTC quote at window start removed")
	}
	trackers, _ := s.DailyTrackers(ctx)
	if len(trackers) != 1 || trackers[0].Symbol != "BTC" {
		t.Errorf("trackers = %v, want [BTC]", trackers)
	}
}

func TestInitializeAction_EmptyStoreQueuesTrackers(t *testing.T) {
	deps, s := newDeps(t, nil, nil)
	ctx := context.Background()
	if err := s.EnqueueRequest(ctx, request.New(quotewatch.TagMessari, request.QuoteSnapshotSync{Page: 1})); err != nil {
		t.Fatal(err)
	}

	cont, err := actionsByName(t, deps)[marketdata.ActionInitialize].Execute(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if cont {
		t.Error("initialize should not continue")
	}
	infos := drain(t, s, quotewatch.TagPolygon)
	if len(infos) != 1 || infos[0].Kind() != request.KindTrackerSync {
		t.Errorf("queued %v, want one tracker sync", infos)
	}
}

func TestInitializeAction_TrackersPresent(t *testing.T) {
	deps, s := newDeps(t, nil, nil)
	putDaily(t, s, "BTC", now.AddDate(0, 0, -2))

	cont, err := actionsByName(t, deps)[marketdata.ActionInitialize].Execute(context.Background())
	if err != nil || cont {
		t.Fatalf("Execute() = %v, %v; want false, nil", cont, err)
	}
	if n, _ := s.QueueLength(context.Background(), quotewatch.TagPolygon); n != 0 {
		t.Errorf("queue length = %d, want 0", n)
	}
}

func TestActions_RunOnce(t *testing.T) {
	deps, s := newDeps(t, nil, nil)
	start := time.Now().UTC().Add(20 * time.Millisecond)
	actions, err := marketdata.Actions(deps, quotewatch.DefaultConfig().Schedules, start, discard())
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- cron.NewRunner(actions, discard()).Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for {
		n, _ := s.QueueLength(context.Background(), quotewatch.TagPolygon)
		if n == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("initialize never queued a tracker sync")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop")
	}
}
