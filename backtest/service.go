package backtest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"econdash/dates"
	"econdash/fetcher"
	"econdash/forecast"
	"econdash/internal/telemetry"
	"econdash/series"
)

var (
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidRange      = errors.New("start date must be before end date")
	ErrInvalidSampleSize = errors.New("sample size must be between 0 and 15")
	ErrNoData            = errors.New("no data in selected range")
	ErrSourceUnavailable = errors.New("indicator data unavailable")
)

// SeriesLoader is satisfied by *series.Loader.
type SeriesLoader interface {
	LoadRange(ctx context.Context, key string, start, end time.Time) (series.Result, error)
}

// Service validates requests, loads the series and runs the backtest.
type Service struct {
	loader    SeriesLoader
	forecasts *forecast.Provider
	store     *RunStore
	logger    *zap.Logger
	opts      []Option
	now       func() time.Time
}

func NewService(loader SeriesLoader, forecasts *forecast.Provider, store *RunStore, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if forecasts == nil {
		forecasts = forecast.NewProvider(nil, logger)
	}
	if store == nil {
		store = NewRunStore(0)
	}
	return &Service{
		loader:    loader,
		forecasts: forecasts,
		store:     store,
		logger:    logger,
		opts:      opts,
		now:       time.Now,
	}
}

func (s *Service) Store() *RunStore { return s.store }

// Validate checks a request without touching the network.
func Validate(req Request) (fetcher.Indicator, time.Time, time.Time, error) {
	ind, err := fetcher.Lookup(req.Indicator)
	if err != nil {
		return fetcher.Indicator{}, time.Time{}, time.Time{}, err
	}
	start, ok := dates.Parse(strings.TrimSpace(req.Start))
	if !ok {
		return fetcher.Indicator{}, time.Time{}, time.Time{}, fmt.Errorf("%w: start %q", ErrInvalidDate, req.Start)
	}
	end, ok := dates.Parse(strings.TrimSpace(req.End))
	if !ok {
		return fetcher.Indicator{}, time.Time{}, time.Time{}, fmt.Errorf("%w: end %q", ErrInvalidDate, req.End)
	}
	if !start.Before(end) {
		return fetcher.Indicator{}, time.Time{}, time.Time{}, fmt.Errorf("%w: %s >= %s", ErrInvalidRange, dates.Format(start), dates.Format(end))
	}
	if req.SampleSize < 0 || req.SampleSize > MaxSampleSize {
		return fetcher.Indicator{}, time.Time{}, time.Time{}, fmt.Errorf("%w: %d", ErrInvalidSampleSize, req.SampleSize)
	}
	return ind, start, end, nil
}

// RunIndicator evaluates the forecaster on one indicator over the requested
// window. Placeholder data is never evaluated. A cancelled run is stored and
// returned together with the context error.
func (s *Service) RunIndicator(ctx context.Context, req Request, progress ProgressFunc) (*Run, error) {
	ind, start, end, err := Validate(req)
	if err != nil {
		return nil, err
	}

	loaded, err := s.loader.LoadRange(ctx, ind.Key, start, end)
	if err != nil {
		telemetry.RecordBacktestRun(ind.Key, "failure")
		return nil, fmt.Errorf("load %s: %w", ind.Key, err)
	}
	if loaded.Placeholder {
		telemetry.RecordBacktestRun(ind.Key, "failure")
		return nil, fmt.Errorf("%w: %s", ErrSourceUnavailable, ind.Key)
	}
	if len(loaded.Data) == 0 {
		telemetry.RecordBacktestRun(ind.Key, "failure")
		return nil, fmt.Errorf("%w: %s %s..%s", ErrNoData, ind.Key, dates.Format(start), dates.Format(end))
	}

	f := s.forecasts.For(ind.Label)
	run := &Run{
		ID:         uuid.NewString(),
		Indicator:  ind.Key,
		Label:      ind.Label,
		Start:      dates.Format(start),
		End:        dates.Format(end),
		SampleSize: clampSampleSize(req.SampleSize),
		Forecaster: f.Name(),
		StaleData:  loaded.Stale,
		StartedAt:  s.now(),
	}
	logger := s.logger.With(zap.String("run_id", run.ID), zap.String("indicator", ind.Key))
	logger.Info("backtest started",
		zap.String("start", run.Start),
		zap.String("end", run.End),
		zap.Int("points", len(loaded.Data)),
		zap.String("forecaster", run.Forecaster))

	opts := append(append([]Option{}, s.opts...), WithLogger(logger), WithProgress(progress))
	results, runErr := NewRunner(f, opts...).Run(ctx, loaded.Data, req.SampleSize)

	run.Results = results
	run.Metrics = CalculateMetrics(results)
	run.FinishedAt = s.now()
	if s.forecasts.Remote() {
		for _, r := range results {
			if r.Source == forecast.SourceTrend {
				run.Fallbacks++
			}
		}
	}

	if runErr != nil {
		run.Cancelled = true
		s.store.Put(run)
		telemetry.RecordBacktestRun(ind.Key, "cancelled")
		logger.Warn("backtest cancelled", zap.Int("completed", len(results)), zap.Error(runErr))
		return run, runErr
	}

	s.store.Put(run)
	telemetry.RecordBacktestRun(ind.Key, "success")
	telemetry.BacktestMAPE.WithLabelValues(ind.Key).Observe(run.Metrics.MAPE)
	logger.Info("backtest finished",
		zap.Int("points", len(results)),
		zap.Int("fallbacks", run.Fallbacks),
		zap.Float64("mae", run.Metrics.MAE),
		zap.Float64("mape", run.Metrics.MAPE),
		zap.Float64("rmse", run.Metrics.RMSE),
		zap.Float64("r_squared", run.Metrics.RSquared),
		zap.Duration("elapsed", run.FinishedAt.Sub(run.StartedAt)))
	return run, nil
}
