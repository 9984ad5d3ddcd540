package marketdata

import (
	"context"
	"time"

	"github.com/xraph/quotewatch/quote"
	"github.com/xraph/quotewatch/request"
	"github.com/xraph/quotewatch/upstream/messari"
	"github.com/xraph/quotewatch/upstream/polygon"
)

// PolygonAPI is the subset of the Polygon client the requests use.
type PolygonAPI interface {
	GroupedDailyCryptoPrices(ctx context.Context, date time.Time) (*polygon.GroupedDailyResponse, error)
	AggregateCryptoPrices(ctx context.Context, symbol string, from, to time.Time) (*polygon.AggregateResponse, error)
}

// MessariAPI is the subset of the Messari client the requests use.
type MessariAPI interface {
	Assets(ctx context.Context, page int) (*messari.AssetListResponse, error)
}

// Compile-time interface checks.
var (
	_ PolygonAPI = (*polygon.Client)(nil)
	_ MessariAPI = (*messari.Client)(nil)
)

// DefaultQuoteHistoryDays is used when Deps.QuoteHistoryDays is not set.
const DefaultQuoteHistoryDays = 100

// Deps are the collaborators shared by requests and actions.
type Deps struct {
	Polygon  PolygonAPI
	Messari  MessariAPI
	Requests request.Store
	Quotes   quote.Store

	// QuoteHistoryDays is how many days of daily quotes are synced and
	// kept.
	QuoteHistoryDays int

	// Now is the clock. Nil means time.Now.
	Now func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now().UTC()
	}
	return time.Now().UTC()
}

func (d Deps) historyDays() int {
	if d.QuoteHistoryDays > 0 {
		return d.QuoteHistoryDays
	}
	return DefaultQuoteHistoryDays
}

// HistoryRange returns the span of days days ending yesterday relative to
// now, in UTC.
func HistoryRange(now time.Time, days int) (from, to time.Time) {
	to = now.UTC().AddDate(0, 0, -1)
	return to.AddDate(0, 0, -days), to
}
