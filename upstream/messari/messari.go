// Package messari is a client for the Messari asset metrics API.
package messari

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/quotewatch/upstream"
)

// assetFields limits the asset list to what a quote snapshot needs.
const assetFields = "id,slug,symbol,metrics/market_data/price_usd,metrics/market_data/ohlcv_last_1_hour"

// DefaultQuoteLimit is the page size used when none is configured.
const DefaultQuoteLimit = 200

// APIKeyHeader carries the optional API key. Anonymous requests get a
// lower rate limit.
const APIKeyHeader = "x-messari-api-key"

// Status carries response metadata.
type Status struct {
	Elapsed   int       `json:"elapsed"`
	Timestamp time.Time `json:"timestamp"`
}

// OHLCV is an open/high/low/close/volume sample.
type OHLCV struct {
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume decimal.Decimal `json:"volume"`
}

// MarketData holds the market metrics of an asset.
type MarketData struct {
	PriceUSD decimal.NullDecimal `json:"price_usd"`
	LastHour *OHLCV              `json:"ohlcv_last_1_hour"`
}

// Metrics groups an asset's metrics.
type Metrics struct {
	MarketData *MarketData `json:"market_data"`
}

// Asset is one entry of the asset list.
type Asset struct {
	ID      string   `json:"id"`
	Slug    string   `json:"slug"`
	Symbol  string   `json:"symbol"`
	Metrics *Metrics `json:"metrics"`
}

// LastHour returns the asset's last-hour sample, or nil if the API sent
// none.
func (a Asset) LastHour() *OHLCV {
	if a.Metrics == nil || a.Metrics.MarketData == nil {
		return nil
	}
	return a.Metrics.MarketData.LastHour
}

// AssetListResponse is one page of assets.
type AssetListResponse struct {
	Status Status  `json:"status"`
	Data   []Asset `json:"data"`
}

// Client calls the Messari API.
type Client struct {
	api        *upstream.Client
	quoteLimit int
}

// New creates a Client. baseURL is the versioned API root, for example
// https://data.messari.io/api/v1/. A quoteLimit below 1 uses
// DefaultQuoteLimit.
func New(baseURL string, quoteLimit int, opts ...upstream.Option) (*Client, error) {
	api, err := upstream.NewClient(baseURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("messari: %w", err)
	}
	if quoteLimit < 1 {
		quoteLimit = DefaultQuoteLimit
	}
	return &Client{api: api, quoteLimit: quoteLimit}, nil
}

// Assets returns one page of assets with their last-hour OHLCV. Pages
// start at 1.
func (c *Client) Assets(ctx context.Context, page int) (*AssetListResponse, error) {
	if page < 1 {
		return nil, fmt.Errorf("messari: %w: page must be >= 1, got %d", upstream.ErrInvalidArgument, page)
	}
	q := url.Values{
		"fields": {assetFields},
		"limit":  {strconv.Itoa(c.quoteLimit)},
		"page":   {strconv.Itoa(page)},
	}

	var resp AssetListResponse
	if err := c.api.GetJSON(ctx, "assets", q, &resp); err != nil {
		return nil, fmt.Errorf("messari: assets page %d: %w", page, err)
	}
	return &resp, nil
}
