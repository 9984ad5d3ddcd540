package marketdata

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xraph/quotewatch"
	"github.com/xraph/quotewatch/cron"
	"github.com/xraph/quotewatch/request"
	"github.com/xraph/quotewatch/upstream/polygon"
)

// Action names.
const (
	ActionQuoteHistory  = "quote-history"
	ActionQuoteSnapshot = "quote-snapshot"
	ActionTrackers      = "trackers"
	ActionCleanup       = "cleanup"
	ActionInitialize    = "initialize"
)

// Actions builds the producer actions: the four recurring ones from
// schedules plus the one-shot initializer firing at startup.
func Actions(deps Deps, schedules quotewatch.Schedules, startup time.Time, logger *slog.Logger) ([]cron.Action, error) {
	if logger == nil {
		logger = slog.Default()
	}
	p := &producers{deps: deps, logger: logger}

	specs := []struct {
		name string
		expr string
		fn   cron.ActionFunc
	}{
		{ActionQuoteHistory, schedules.QuoteHistory, p.quoteHistory},
		{ActionQuoteSnapshot, schedules.QuoteSnapshot, p.quoteSnapshot},
		{ActionTrackers, schedules.Trackers, p.trackers},
		{ActionCleanup, schedules.Cleanup, p.cleanup},
	}

	actions := make([]cron.Action, 0, len(specs)+1)
	for _, s := range specs {
		sched, err := cron.ParseSchedule(s.expr)
		if err != nil {
			return nil, fmt.Errorf("%w: %s schedule %q: %v", quotewatch.ErrInvalidConfig, s.name, s.expr, err)
		}
		actions = append(actions, cron.NewAction(s.name, sched, s.fn))
	}
	actions = append(actions, cron.NewAction(ActionInitialize, cron.Once(startup), p.initialize))
	return actions, nil
}

type producers struct {
	deps   Deps
	logger *slog.Logger
}

// quoteHistory enqueues a quote history sync for every daily tracker.
func (p *producers) quoteHistory(ctx context.Context) (bool, error) {
	trackers, err := p.deps.Quotes.DailyTrackers(ctx)
	if err != nil {
		return true, fmt.Errorf("list daily trackers: %w", err)
	}
	from, to := HistoryRange(p.deps.now(), p.deps.historyDays())

	infos := make([]request.Info, 0, len(trackers))
	for _, t := range trackers {
		infos = append(infos, request.New(quotewatch.TagPolygon, request.QuoteHistorySync{
			Symbol: polygon.Ticker(t.Symbol, USD),
			From:   from,
			To:     to,
		}))
	}

	p.logger.Info("queue quote history downloads",
		slog.Int("trackers", len(trackers)),
		slog.Time("from", from),
		slog.Time("to", to),
	)
	if err := p.deps.Requests.EnqueueRequests(ctx, quotewatch.TagPolygon, infos); err != nil {
		return true, fmt.Errorf("enqueue quote history downloads: %w", err)
	}
	return true, nil
}

func (p *producers) quoteSnapshot(ctx context.Context) (bool, error) {
	info := request.New(quotewatch.TagMessari, request.QuoteSnapshotSync{Page: 1})
	p.logger.Info("queue quote snapshot download", slog.Any("request", info))
	if err := p.deps.Requests.EnqueueRequest(ctx, info); err != nil {
		return true, fmt.Errorf("enqueue quote snapshot download: %w", err)
	}
	return true, nil
}

// trackers enqueues a tracker sync for yesterday.
func (p *producers) trackers(ctx context.Context) (bool, error) {
	return true, p.enqueueTrackerSync(ctx)
}

func (p *producers) enqueueTrackerSync(ctx context.Context) error {
	info := request.New(quotewatch.TagPolygon, request.TrackerSync{
		Date:             p.deps.now().AddDate(0, 0, -1),
		QuoteHistoryDays: p.deps.historyDays(),
	})
	p.logger.Info("queue tracker download", slog.Any("request", info))
	if err := p.deps.Requests.EnqueueRequest(ctx, info); err != nil {
		return fmt.Errorf("enqueue tracker download: %w", err)
	}
	return nil
}

// cleanup drops daily quotes that fell out of the history window.
func (p *producers) cleanup(ctx context.Context) (bool, error) {
	trackers, err := p.deps.Quotes.DailyTrackers(ctx)
	if err != nil {
		return true, fmt.Errorf("list daily trackers: %w", err)
	}
	before, _ := HistoryRange(p.deps.now(), p.deps.historyDays())

	removed := 0
	for _, t := range trackers {
		n, err := p.deps.Quotes.RemoveDailyQuotes(ctx, t.Symbol, before)
		if err != nil {
			return true, fmt.Errorf("remove daily quotes of %s: %w", t.Symbol, err)
		}
		removed += n
	}
	p.logger.Info("removed expired daily quotes",
		slog.Int("trackers", len(trackers)),
		slog.Int("removed", removed),
		slog.Time("before", before),
	)
	return true, nil
}

// initialize reports the queue backlog left from a previous run and seeds
// an empty quote store. It runs once.
func (p *producers) initialize(ctx context.Context) (bool, error) {
	for _, tag := range []string{quotewatch.TagPolygon, quotewatch.TagMessari} {
		n, err := p.deps.Requests.QueueLength(ctx, tag)
		if err != nil {
			return false, fmt.Errorf("queue length of %s: %w", tag, err)
		}
		if n > 0 {
			p.logger.Warn("request backlog at startup",
				slog.String("tag", tag),
				slog.Int64("length", n),
			)
		}
	}

	trackers, err := p.deps.Quotes.DailyTrackers(ctx)
	if err != nil {
		return false, fmt.Errorf("list daily trackers: %w", err)
	}
	if len(trackers) > 0 {
		p.logger.Info("daily trackers present", slog.Int("count", len(trackers)))
		return false, nil
	}

	p.logger.Info("no daily trackers, queue tracker download")
	return false, p.enqueueTrackerSync(ctx)
}
