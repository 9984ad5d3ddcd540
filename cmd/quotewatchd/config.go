package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/xraph/quotewatch"
)

// Store backends.
const (
	storeRedis  = "redis"
	storeSQLite = "sqlite"
	storeMemory = "memory"
)

// settings is everything the daemon reads from its environment.
type settings struct {
	Config quotewatch.Config

	Store      string
	RedisAddr  string
	RedisDB    int
	SQLitePath string

	// BackoffMax enables exponential backoff for consecutive WaitAndRetry
	// pauses, capped at BackoffMax. Zero keeps a one-interval pause.
	BackoffMax time.Duration

	LogLevel  slog.Level
	LogFormat string
}

// loadDotEnv loads files into the environment without overriding variables
// already set. A missing file is not an error.
func loadDotEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// loadSettings builds settings from lookup, falling back to defaults. Every
// malformed value is reported.
func loadSettings(lookup func(string) (string, bool)) (settings, error) {
	env := envReader{lookup: lookup}
	cfg := quotewatch.DefaultConfig()

	cfg.Interval = env.duration("QW_DISPATCH_INTERVAL", cfg.Interval)
	cfg.RequestTimeout = env.duration("QW_REQUEST_TIMEOUT", cfg.RequestTimeout)

	cfg.Polygon.BaseURL = env.str("QW_POLYGON_BASE_URL", cfg.Polygon.BaseURL)
	cfg.Polygon.APIKey = env.str("QW_POLYGON_API_KEY", cfg.Polygon.APIKey)
	cfg.Polygon.MaxRequestsPerInterval = env.integer("QW_POLYGON_MAX_REQUESTS", cfg.Polygon.MaxRequestsPerInterval)

	cfg.Messari.BaseURL = env.str("QW_MESSARI_BASE_URL", cfg.Messari.BaseURL)
	cfg.Messari.APIKey = env.str("QW_MESSARI_API_KEY", cfg.Messari.APIKey)
	cfg.Messari.MaxRequestsPerInterval = env.integer("QW_MESSARI_MAX_REQUESTS", cfg.Messari.MaxRequestsPerInterval)
	cfg.QuoteLimit = env.integer("QW_MESSARI_QUOTE_LIMIT", cfg.QuoteLimit)

	cfg.QuoteHistoryDays = env.integer("QW_QUOTE_HISTORY_DAYS", cfg.QuoteHistoryDays)
	cfg.MaxHourlyQuotes = env.integer("QW_MAX_HOURLY_QUOTES", cfg.MaxHourlyQuotes)

	cfg.Schedules.QuoteHistory = env.str("QW_CRON_QUOTE_HISTORY", cfg.Schedules.QuoteHistory)
	cfg.Schedules.QuoteSnapshot = env.str("QW_CRON_QUOTE_SNAPSHOT", cfg.Schedules.QuoteSnapshot)
	cfg.Schedules.Trackers = env.str("QW_CRON_TRACKERS", cfg.Schedules.Trackers)
	cfg.Schedules.Cleanup = env.str("QW_CRON_CLEANUP", cfg.Schedules.Cleanup)

	s := settings{
		Config:     cfg,
		Store:      strings.ToLower(env.str("QW_STORE", storeRedis)),
		RedisAddr:  env.str("QW_REDIS_ADDR", "localhost:6379"),
		RedisDB:    env.integer("QW_REDIS_DB", 0),
		SQLitePath: env.str("QW_SQLITE_PATH", "quotewatch.db"),
		BackoffMax: env.duration("QW_BACKOFF_MAX", 0),
		LogFormat:  strings.ToLower(env.str("QW_LOG_FORMAT", "text")),
	}

	if err := s.LogLevel.UnmarshalText([]byte(env.str("QW_LOG_LEVEL", "info"))); err != nil {
		env.fail("QW_LOG_LEVEL", err)
	}
	switch s.Store {
	case storeRedis, storeSQLite, storeMemory:
	default:
		env.fail("QW_STORE", fmt.Errorf("unknown store %q", s.Store))
	}
	switch s.LogFormat {
	case "text", "json":
	default:
		env.fail("QW_LOG_FORMAT", fmt.Errorf("unknown format %q", s.LogFormat))
	}

	errs := append(env.errs, cfg.Validate())
	return s, errors.Join(errs...)
}

type envReader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (e *envReader) fail(key string, err error) {
	e.errs = append(e.errs, fmt.Errorf("%w: %s: %v", quotewatch.ErrInvalidConfig, key, err))
}

func (e *envReader) str(key, def string) string {
	if v, ok := e.lookup(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func (e *envReader) integer(key string, def int) int {
	v := e.str(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, err)
		return def
	}
	return n
}

func (e *envReader) duration(key string, def time.Duration) time.Duration {
	v := e.str(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(key, err)
		return def
	}
	return d
}

func newLogger(s settings) *slog.Logger {
	opts := &slog.HandlerOptions{Level: s.LogLevel}
	if s.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
