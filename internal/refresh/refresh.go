// Package refresh keeps the series cache warm: one concurrent pass over all
// indicators at startup, then a periodic sequential pass.
package refresh

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// warmupConcurrency bounds parallel requests to the statistics proxy.
const warmupConcurrency = 4

// Refresher is satisfied by *series.Loader.
type Refresher interface {
	Refresh(ctx context.Context, key string) (int, error)
}

// Warmup refreshes every key with bounded concurrency and returns how many
// succeeded. Failures are logged and never abort the pass.
func Warmup(ctx context.Context, r Refresher, keys []string, logger *zap.Logger) int {
	if logger == nil {
		logger = zap.NewNop()
	}
	results := make([]bool, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(warmupConcurrency)
	for i, key := range keys {
		g.Go(func() error {
			n, err := r.Refresh(gctx, key)
			if err != nil {
				logger.Warn("warmup fetch failed", zap.String("indicator", key), zap.Error(err))
				return nil
			}
			logger.Debug("warmup fetch", zap.String("indicator", key), zap.Int("points", n))
			results[i] = true
			return nil
		})
	}
	_ = g.Wait()

	ok := 0
	for _, v := range results {
		if v {
			ok++
		}
	}
	logger.Info("warmup done", zap.Int("ok", ok), zap.Int("total", len(keys)))
	return ok
}

// Run refreshes all keys every interval until ctx is done. A non-positive
// interval returns immediately.
func Run(ctx context.Context, r Refresher, keys []string, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("refresh stopped")
			return
		case <-ticker.C:
			failed := 0
			for _, key := range keys {
				if ctx.Err() != nil {
					return
				}
				if _, err := r.Refresh(ctx, key); err != nil {
					failed++
					logger.Warn("refresh failed", zap.String("indicator", key), zap.Error(err))
				}
			}
			logger.Info("refresh pass done", zap.Int("indicators", len(keys)), zap.Int("failed", failed))
		}
	}
}
