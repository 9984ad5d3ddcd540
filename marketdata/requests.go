package marketdata

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xraph/quotewatch"
	"github.com/xraph/quotewatch/quote"
	"github.com/xraph/quotewatch/request"
	"github.com/xraph/quotewatch/upstream/polygon"
)

// USD is the only quote currency tracked from Polygon.
const USD = "USD"

// ──────────────────────────────────────────────────
// Tracker sync
// ──────────────────────────────────────────────────

// TrackerRequest lists the day's crypto tickers and enqueues a quote
// history sync for each USD ticker.
type TrackerRequest struct {
	info request.TrackerSync
	deps Deps
}

func (r *TrackerRequest) String() string {
	return "download crypto trackers for " + r.info.Date.UTC().Format(quote.DateLayout)
}

// Execute implements request.Request.
func (r *TrackerRequest) Execute(ctx context.Context, logger *slog.Logger) request.Outcome {
	resp, err := r.deps.Polygon.GroupedDailyCryptoPrices(ctx, r.info.Date)
	if err != nil {
		return classify(ctx, logger, err, "grouped daily crypto prices")
	}
	if resp.Status != polygon.StatusOK {
		logger.Warn("grouped daily crypto prices: non-ok status",
			slog.String("status", resp.Status),
			slog.String("request_id", resp.RequestID),
		)
	}
	if resp.Results == nil {
		logger.Warn("grouped daily crypto prices: empty result set")
		return request.Retry
	}

	days := r.info.QuoteHistoryDays
	if days < 1 {
		days = r.deps.historyDays()
	}
	from, to := HistoryRange(r.deps.now(), days)

	infos := make([]request.Info, 0, len(resp.Results))
	for _, bar := range resp.Results {
		if polygon.Currency(bar.Symbol) != USD {
			continue
		}
		infos = append(infos, request.New(quotewatch.TagPolygon, request.QuoteHistorySync{
			Symbol: bar.Symbol,
			From:   from,
			To:     to,
		}))
	}

	logger.Info("queue quote history downloads",
		slog.Int("trackers", len(resp.Results)),
		slog.Int("queued", len(infos)),
		slog.Time("from", from),
		slog.Time("to", to),
	)
	if err := r.deps.Requests.EnqueueRequests(ctx, quotewatch.TagPolygon, infos); err != nil {
		logger.Error("enqueue quote history downloads failed", slog.String("error", err.Error()))
		return request.Fatal
	}
	return request.Ok
}

// ──────────────────────────────────────────────────
// Quote history sync
// ──────────────────────────────────────────────────

// QuoteHistoryRequest stores a ticker's daily bars as daily quotes.
type QuoteHistoryRequest struct {
	info request.QuoteHistorySync
	deps Deps
}

func (r *QuoteHistoryRequest) String() string {
	return "download aggregates for " + r.info.Symbol
}

// Execute implements request.Request.
func (r *QuoteHistoryRequest) Execute(ctx context.Context, logger *slog.Logger) request.Outcome {
	logger = logger.With(slog.String("symbol", r.info.Symbol))

	resp, err := r.deps.Polygon.AggregateCryptoPrices(ctx, r.info.Symbol, r.info.From, r.info.To)
	if err != nil {
		return classify(ctx, logger, err, "aggregate crypto prices")
	}
	if resp.Status != polygon.StatusOK {
		logger.Warn("aggregate crypto prices: non-ok status",
			slog.String("status", resp.Status),
			slog.String("request_id", resp.RequestID),
		)
	}
	if resp.Results == nil {
		logger.Warn("aggregate crypto prices: empty result set")
		return request.Retry
	}

	base, err := polygon.BaseSymbol(r.info.Symbol)
	if err != nil {
		logger.Error("cannot store quotes", slog.String("error", err.Error()))
		return request.Fatal
	}
	currency := polygon.Currency(r.info.Symbol)

	for _, bar := range resp.Results {
		q := quote.Quote{
			Symbol:   base,
			Open:     bar.Open,
			Close:    bar.Close,
			High:     bar.High,
			Low:      bar.Low,
			Currency: currency,
			Date:     bar.Time(),
		}
		if err := r.deps.Quotes.PutDailyQuote(ctx, q); err != nil {
			logger.Error("store daily quote failed",
				slog.String("quote", q.String()),
				slog.String("error", err.Error()),
			)
			return request.Fatal
		}
	}
	logger.Info("stored daily quotes", slog.Int("count", len(resp.Results)))
	return request.Ok
}

// ──────────────────────────────────────────────────
// Quote snapshot sync
// ──────────────────────────────────────────────────

// QuoteSnapshotRequest stores the last-hour OHLCV of one page of Messari
// assets as hourly quotes.
type QuoteSnapshotRequest struct {
	info request.QuoteSnapshotSync
	deps Deps
}

func (r *QuoteSnapshotRequest) page() int {
	if r.info.Page < 1 {
		return 1
	}
	return r.info.Page
}

func (r *QuoteSnapshotRequest) String() string {
	return fmt.Sprintf("download quote snapshots page %d", r.page())
}

// Execute implements request.Request.
func (r *QuoteSnapshotRequest) Execute(ctx context.Context, logger *slog.Logger) request.Outcome {
	resp, err := r.deps.Messari.Assets(ctx, r.page())
	if err != nil {
		return classify(ctx, logger, err, "assets")
	}
	if len(resp.Data) == 0 {
		logger.Warn("assets: empty result set", slog.Int("page", r.page()))
		return request.Retry
	}

	at := resp.Status.Timestamp
	if at.IsZero() {
		at = r.deps.now()
	}

	stored := 0
	for _, asset := range resp.Data {
		hour := asset.LastHour()
		if asset.Symbol == "" || hour == nil {
			continue
		}
		q := quote.Quote{
			Symbol:   asset.Symbol,
			Open:     hour.Open,
			Close:    hour.Close,
			High:     hour.High,
			Low:      hour.Low,
			Currency: USD,
			Date:     at,
		}
		if err := r.deps.Quotes.PutHourlyQuote(ctx, q); err != nil {
			logger.Error("store hourly quote failed",
				slog.String("quote", q.String()),
				slog.String("error", err.Error()),
			)
			return request.Fatal
		}
		stored++
	}
	logger.Info("stored hourly quotes", slog.Int("count", stored), slog.Int("assets", len(resp.Data)))
	return request.Ok
}
