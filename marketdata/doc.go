// Package marketdata is the price sync domain: the requests that turn work
// items into upstream calls and stored quotes, the [Factory] mapping a work
// item to its request, and the cron actions that produce work items.
//
// Tracker sync lists every crypto ticker Polygon knows for a day and fans
// out one quote history sync per USD ticker. Quote history sync stores a
// ticker's daily bars. Quote snapshot sync stores Messari's last-hour OHLCV
// of every listed asset as hourly quotes.
//
// Every request classifies its own failures: HTTP 429 is WaitAndRetry, a
// response without results is Retry, and anything else unexpected is
// Fatal.
package marketdata
