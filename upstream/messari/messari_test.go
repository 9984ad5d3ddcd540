package messari_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/xraph/quotewatch/upstream"
	"github.com/xraph/quotewatch/upstream/messari"
)

const assetPage = `{
  "status": {"elapsed": 80, "timestamp": "2021-12-04T11:34:52.030405492Z"},
  "data": [
    {
      "id": "1e31218a-e44e-4285-820c-8282ee222035",
      "slug": "bitcoin",
      "symbol": "BTC",
      "metrics": {"market_data": {
        "price_usd": 46723.941082317535,
        "ohlcv_last_1_hour": {"open": 47395.12, "high": 47570.69, "low": 46602.87, "close": 46722.22, "volume": 504696361.27}
      }}
    },
    {"id": "x", "slug": "nothing", "symbol": "NOPE", "metrics": {"market_data": {"price_usd": null, "ohlcv_last_1_hour": null}}}
  ]
}`

func TestAssets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/assets" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("limit") != "50" || q.Get("page") != "2" {
			t.Errorf("query = %v", q)
		}
		if q.Get("fields") == "" {
			t.Error("fields filter missing")
		}
		fmt.Fprint(w, assetPage)
	}))
	defer srv.Close()

	c, err := messari.New(srv.URL+"/api/v1/", 50)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := c.Assets(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("got %d assets, want 2", len(resp.Data))
	}

	btc := resp.Data[0].LastHour()
	if btc == nil || !btc.Close.Equal(decimal.RequireFromString("46722.22")) {
		t.Errorf("BTC last hour = %+v", btc)
	}
	if resp.Data[1].LastHour() != nil {
		t.Error("asset without metrics should have no last hour")
	}
	if resp.Data[1].Metrics.MarketData.PriceUSD.Valid {
		t.Error("null price_usd should decode as invalid")
	}
	if resp.Status.Timestamp.IsZero() {
		t.Error("status timestamp not decoded")
	}
}

func TestAssets_InvalidPage(t *testing.T) {
	c, err := messari.New("https://data.messari.io/api/v1/", 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Assets(context.Background(), 0); !errors.Is(err, upstream.ErrInvalidArgument) {
		t.Errorf("got %v, want ErrInvalidArgument", err)
	}
}

func TestAssets_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, _ := messari.New(srv.URL, 10)
	if _, err := c.Assets(context.Background(), 1); !upstream.IsRateLimited(err) {
		t.Errorf("IsRateLimited(%v) = false", err)
	}
}
