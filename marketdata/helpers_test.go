package marketdata_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/quotewatch/marketdata"
	"github.com/xraph/quotewatch/request"
	"github.com/xraph/quotewatch/store/memory"
	"github.com/xraph/quotewatch/upstream/messari"
	"github.com/xraph/quotewatch/upstream/polygon"
)

var now = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

type fakePolygon struct {
	grouped    *polygon.GroupedDailyResponse
	aggregates *polygon.AggregateResponse
	err        error

	groupedDate time.Time
	symbol      string
	from, to    time.Time
}

func (f *fakePolygon) GroupedDailyCryptoPrices(_ context.Context, date time.Time) (*polygon.GroupedDailyResponse, error) {
	f.groupedDate = date
	if f.err != nil {
		return nil, f.err
	}
	return f.grouped, nil
}

func (f *fakePolygon) AggregateCryptoPrices(_ context.Context, symbol string, from, to time.Time) (*polygon.AggregateResponse, error) {
	f.symbol, f.from, f.to = symbol, from, to
	if f.err != nil {
		return nil, f.err
	}
	return f.aggregates, nil
}

type fakeMessari struct {
	resp *messari.AssetListResponse
	err  error
	page int
}

func (f *fakeMessari) Assets(_ context.Context, page int) (*messari.AssetListResponse, error) {
	f.page = page
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func newDeps(t *testing.T, p *fakePolygon, m *fakeMessari) (marketdata.Deps, *memory.Store) {
	t.Helper()
	s := memory.New()
	t.Cleanup(func() { _ = s.Close() })
	deps := marketdata.Deps{
		Requests:         s,
		Quotes:           s,
		QuoteHistoryDays: 30,
		Now:              func() time.Time { return now },
	}
	if p != nil {
		deps.Polygon = p
	}
	if m != nil {
		deps.Messari = m
	}
	return deps, s
}

func mustCreate(t *testing.T, deps marketdata.Deps, info request.Info) request.Request {
	t.Helper()
	req, err := marketdata.NewFactory(deps).Create(info)
	if err != nil {
		t.Fatalf("Create(%s): %v", info, err)
	}
	return req
}

func drain(t *testing.T, s *memory.Store, tag string) []request.Info {
	t.Helper()
	infos, err := s.DequeueRequests(context.Background(), tag, 1000)
	if err != nil {
		t.Fatal(err)
	}
	return infos
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
