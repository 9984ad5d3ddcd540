// Package polygon is a client for the Polygon.io crypto aggregates API.
package polygon

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/quotewatch/upstream"
)

// StatusOK is the response status of a successful call.
const StatusOK = "OK"

// MaxAggregateRange is the longest [from, to] span one aggregates call may
// cover.
const MaxAggregateRange = 1000 * 24 * time.Hour

const dayLayout = "2006-01-02"

// Bar is one OHLC aggregate.
type Bar struct {
	// Symbol is set on grouped results only, like X:BTCUSD.
	Symbol    string          `json:"T,omitempty"`
	Volume    decimal.Decimal `json:"v"`
	Open      decimal.Decimal `json:"o"`
	Close     decimal.Decimal `json:"c"`
	High      decimal.Decimal `json:"h"`
	Low       decimal.Decimal `json:"l"`
	Timestamp int64           `json:"t"`
}

// Time returns the bar's start as UTC.
func (b Bar) Time() time.Time { return time.UnixMilli(b.Timestamp).UTC() }

// GroupedDailyResponse lists the daily bar of every crypto ticker for one
// day. Results is nil when the API sent none.
type GroupedDailyResponse struct {
	Status    string `json:"status"`
	RequestID string `json:"request_id"`
	Count     int    `json:"resultsCount"`
	Results   []Bar  `json:"results"`
}

// AggregateResponse lists daily bars of one ticker over a range. Results is
// nil when the API sent none.
type AggregateResponse struct {
	Ticker    string `json:"ticker"`
	Status    string `json:"status"`
	RequestID string `json:"request_id"`
	Count     int    `json:"resultsCount"`
	Results   []Bar  `json:"results"`
}

// Client calls the Polygon API.
type Client struct {
	api    *upstream.Client
	apiKey string
}

// New creates a Client. baseURL is the versioned API root, for example
// https://api.polygon.io/v2/.
func New(baseURL, apiKey string, opts ...upstream.Option) (*Client, error) {
	api, err := upstream.NewClient(baseURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("polygon: %w", err)
	}
	return &Client{api: api, apiKey: apiKey}, nil
}

// GroupedDailyCryptoPrices returns the daily bars of all crypto tickers for
// date's UTC day.
func (c *Client) GroupedDailyCryptoPrices(ctx context.Context, date time.Time) (*GroupedDailyResponse, error) {
	path := "aggs/grouped/locale/global/market/crypto/" + date.UTC().Format(dayLayout)

	var resp GroupedDailyResponse
	if err := c.api.GetJSON(ctx, path, c.query(nil), &resp); err != nil {
		return nil, fmt.Errorf("polygon: grouped daily: %w", err)
	}
	return &resp, nil
}

// AggregateCryptoPrices returns symbol's daily bars from from to to, oldest
// first. The range must not be reversed or exceed MaxAggregateRange.
func (c *Client) AggregateCryptoPrices(ctx context.Context, symbol string, from, to time.Time) (*AggregateResponse, error) {
	if strings.TrimSpace(symbol) == "" {
		return nil, fmt.Errorf("polygon: %w: symbol must not be blank", upstream.ErrInvalidArgument)
	}
	if to.Before(from) || to.Sub(from) > MaxAggregateRange {
		return nil, fmt.Errorf("polygon: %w: invalid time range %s..%s",
			upstream.ErrInvalidArgument, from.Format(dayLayout), to.Format(dayLayout))
	}

	path := fmt.Sprintf("aggs/ticker/%s/range/1/day/%s/%s",
		url.PathEscape(symbol), from.UTC().Format(dayLayout), to.UTC().Format(dayLayout))
	q := c.query(url.Values{
		"sort":  {"asc"},
		"limit": {"1000"},
	})

	var resp AggregateResponse
	if err := c.api.GetJSON(ctx, path, q, &resp); err != nil {
		return nil, fmt.Errorf("polygon: aggregates %s: %w", symbol, err)
	}
	return &resp, nil
}

func (c *Client) query(q url.Values) url.Values {
	if q == nil {
		q = url.Values{}
	}
	if c.apiKey != "" {
		q.Set("apiKey", c.apiKey)
	}
	return q
}
