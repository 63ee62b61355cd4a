// Package app assembles the data pipeline shared by the server and the CLI.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"econdash/backtest"
	"econdash/cache"
	"econdash/config"
	"econdash/fetcher"
	"econdash/forecast"
	"econdash/internal/telemetry"
	"econdash/llm"
	"econdash/series"
)

// App holds the wired components. Close releases cache backends.
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Registry  *prometheus.Registry
	Loader    *series.Loader
	Forecasts *forecast.Provider
	Backtests *backtest.Service

	// Forecaster names the active remote generator, or "trend".
	Forecaster string

	closeCache func() error
}

func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if err := telemetry.Register(reg); err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	store, closeCache, err := cache.Open(ctx, cache.Options{
		Backend:        cfg.Cache.Backend,
		Dir:            cfg.Cache.Dir,
		RedisAddr:      cfg.Cache.RedisAddr,
		RedisPassword:  cfg.Cache.RedisPassword,
		RedisDB:        cfg.Cache.RedisDB,
		RedisRetention: cfg.Cache.RedisRetention,
	})
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	logger.Info("cache opened", zap.String("backend", cfg.Cache.Backend), zap.Duration("ttl", cfg.Cache.TTL))

	ttl := cache.NewTTLCache(store, cfg.Cache.TTL, logger.Named("cache"))
	src := fetcher.NewProxyFetcher(cfg.SourceBaseURL, cfg.SourceTimeout)
	loader := series.NewLoader(src, ttl, logger.Named("series"))

	gen, err := llm.FromConfig(ctx, cfg.LLM, logger.Named("llm"))
	if err != nil {
		_ = closeCache()
		return nil, fmt.Errorf("llm: %w", err)
	}
	provider := forecast.NewProvider(gen, logger.Named("forecast"))
	name := forecast.SourceTrend
	if gen != nil {
		name = gen.Name()
	}

	svc := backtest.NewService(loader, provider, backtest.NewRunStore(0), logger.Named("backtest"),
		backtest.WithPace(cfg.BacktestPace))

	return &App{
		Config:     cfg,
		Logger:     logger,
		Registry:   reg,
		Loader:     loader,
		Forecasts:  provider,
		Backtests:  svc,
		Forecaster: name,
		closeCache: closeCache,
	}, nil
}

// Close waits for in-flight source fetches, then closes the cache backend.
func (a *App) Close() error {
	if a.Loader != nil {
		a.Loader.Wait()
	}
	var errs []error
	if a.closeCache != nil {
		errs = append(errs, a.closeCache())
	}
	_ = a.Logger.Sync()
	return errors.Join(errs...)
}
