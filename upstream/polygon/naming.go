package polygon

import (
	"fmt"
	"regexp"

	"github.com/xraph/quotewatch/upstream"
)

// symbolPattern matches tickers like X:BTCUSD: a market prefix, the base
// asset, and a three-letter quote currency.
var symbolPattern = regexp.MustCompile(`^\w+?:(\w+)\w{3}$`)

// BaseSymbol returns the base asset of a ticker: X:BTCUSD -> BTC.
func BaseSymbol(ticker string) (string, error) {
	m := symbolPattern.FindStringSubmatch(ticker)
	if m == nil {
		return "", fmt.Errorf("polygon: %w: ticker %q does not match MARKET:BASEQUOTE", upstream.ErrInvalidArgument, ticker)
	}
	return m[1], nil
}

// Currency returns the quote currency of a ticker, its last three
// characters: X:BTCUSD -> USD. Tickers of three characters or fewer have
// none.
func Currency(ticker string) string {
	if len(ticker) <= 3 {
		return ""
	}
	return ticker[len(ticker)-3:]
}

// Ticker builds the crypto ticker of a base asset in a quote currency:
// (BTC, USD) -> X:BTCUSD.
func Ticker(base, currency string) string {
	return "X:" + base + currency
}
