// Package econd runs the HTTP server with cache warmup and periodic refresh.
package econd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"econdash/api"
	"econdash/config"
	"econdash/fetcher"
	"econdash/internal/app"
	"econdash/internal/refresh"
)

// Run serves until SIGINT/SIGTERM or ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	logger.Info("econdash starting",
		zap.String("source", cfg.SourceBaseURL),
		zap.String("forecaster", a.Forecaster),
		zap.Duration("refresh_interval", cfg.RefreshInterval))

	// The cache must outlive the refresh goroutine.
	refreshCtx, stopRefresh := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		stopRefresh()
		wg.Wait()
	}()

	keys := fetcher.Keys()
	wg.Add(1)
	go func() {
		defer wg.Done()
		if cfg.Warmup {
			refresh.Warmup(refreshCtx, a.Loader, keys, logger.Named("refresh"))
		}
		refresh.Run(refreshCtx, a.Loader, keys, cfg.RefreshInterval, logger.Named("refresh"))
	}()

	server := api.NewServer(api.Options{
		Port:       cfg.Port,
		Loader:     a.Loader,
		Backtests:  a.Backtests,
		Registry:   a.Registry,
		Logger:     logger.Named("api"),
		Forecaster: a.Forecaster,
	})

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	if err := server.Shutdown(); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("stopped")
	return nil
}
