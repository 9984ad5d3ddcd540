// Command quotewatchd syncs crypto quotes from Polygon and Messari into a
// quote store. Producer cron actions enqueue work items on a durable queue
// per API tag, and one rate-bounded dispatcher per tag drains it.
//
// Configuration comes from QW_* environment variables, optionally loaded
// from a .env file in the working directory.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/xraph/quotewatch"
	"github.com/xraph/quotewatch/backoff"
	"github.com/xraph/quotewatch/cron"
	"github.com/xraph/quotewatch/ext"
	"github.com/xraph/quotewatch/loop"
	"github.com/xraph/quotewatch/marketdata"
	"github.com/xraph/quotewatch/middleware"
	"github.com/xraph/quotewatch/observability"
	"github.com/xraph/quotewatch/upstream"
	"github.com/xraph/quotewatch/upstream/messari"
	"github.com/xraph/quotewatch/upstream/polygon"
	"github.com/xraph/quotewatch/worker"
)

func main() {
	if err := loadDotEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, "quotewatchd:", err)
		os.Exit(1)
	}
	s, err := loadSettings(os.LookupEnv)
	if err != nil {
		fmt.Fprintln(os.Stderr, "quotewatchd:", err)
		os.Exit(2)
	}
	logger := newLogger(s)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, s, logger); err != nil {
		logger.Error("quotewatchd failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, s settings, logger *slog.Logger) error {
	cfg := s.Config

	// ──────────────────────────────────────────────────
	// Store
	// ──────────────────────────────────────────────────

	st, closeStore, err := openStore(ctx, s, logger)
	if err != nil {
		return fmt.Errorf("open %s store: %w", s.Store, err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("close store", slog.String("error", err.Error()))
		}
	}()

	// ──────────────────────────────────────────────────
	// Upstream clients
	// ──────────────────────────────────────────────────

	poly, err := polygon.New(cfg.Polygon.BaseURL, cfg.Polygon.APIKey,
		clientOptions(cfg, cfg.Polygon, logger)...,
	)
	if err != nil {
		return err
	}
	messariOpts := clientOptions(cfg, cfg.Messari, logger)
	if cfg.Messari.APIKey != "" {
		messariOpts = append(messariOpts, upstream.WithHeader(messari.APIKeyHeader, cfg.Messari.APIKey))
	}
	mess, err := messari.New(cfg.Messari.BaseURL, cfg.QuoteLimit, messariOpts...)
	if err != nil {
		return err
	}

	deps := marketdata.Deps{
		Polygon:          poly,
		Messari:          mess,
		Requests:         st,
		Quotes:           st,
		QuoteHistoryDays: cfg.QuoteHistoryDays,
	}

	// ──────────────────────────────────────────────────
	// Hooks and execution
	// ──────────────────────────────────────────────────

	registry := ext.NewRegistry(logger)
	registry.Register(observability.NewMetricsExtension())

	exec := worker.NewExecutor(marketdata.NewFactory(deps), st, registry, logger,
		middleware.Timeout(cfg.RequestTimeout),
		middleware.Tracing(),
		middleware.Metrics(),
		middleware.Logging(logger),
	)

	strategy := backoff.Default(cfg.Interval)
	if s.BackoffMax > cfg.Interval {
		strategy = backoff.WithJitter(backoff.NewExponential(cfg.Interval, s.BackoffMax), 0.1)
	}

	var dispatchers []*worker.Dispatcher
	for tag, api := range cfg.APIConfigs() {
		d, err := worker.NewDispatcher(tag, st, exec,
			worker.WithInterval(cfg.Interval),
			worker.WithMaxPerInterval(api.MaxRequestsPerInterval),
			worker.WithBackoff(strategy),
			worker.WithExtensions(registry),
			worker.WithLogger(logger),
		)
		if err != nil {
			return fmt.Errorf("dispatcher %s: %w", tag, err)
		}
		dispatchers = append(dispatchers, d)
	}

	// ──────────────────────────────────────────────────
	// Producers
	// ──────────────────────────────────────────────────

	actions, err := marketdata.Actions(deps, cfg.Schedules, time.Now().UTC().Add(time.Second), logger)
	if err != nil {
		return err
	}
	runner := cron.NewRunner(actions, logger, cron.WithEmitter(registry))

	logger.Info("quotewatchd started",
		slog.String("store", s.Store),
		slog.Duration("interval", cfg.Interval),
		slog.Int("actions", len(actions)),
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, d := range dispatchers {
		g.Go(func() error {
			loop.Supervise(gctx, logger, "dispatcher:"+d.Tag(), d.Run)
			return nil
		})
	}
	g.Go(func() error { return runner.Run(gctx) })

	err = g.Wait()
	registry.EmitShutdown(context.WithoutCancel(ctx))
	logger.Info("quotewatchd stopped")
	return err
}

// clientOptions paces an upstream client at the tag's dispatch rate.
func clientOptions(cfg quotewatch.Config, api quotewatch.APIConfig, logger *slog.Logger) []upstream.Option {
	limit := rate.Every(cfg.Interval / time.Duration(api.MaxRequestsPerInterval))
	return []upstream.Option{
		upstream.WithTimeout(cfg.RequestTimeout),
		upstream.WithRateLimit(limit, api.MaxRequestsPerInterval),
		upstream.WithLogger(logger),
	}
}
