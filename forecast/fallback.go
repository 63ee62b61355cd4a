package forecast

import (
	"context"
	"time"

	"go.uber.org/zap"

	"econdash/internal/telemetry"
	"econdash/model"
)

// Fallback tries Primary and falls back to Secondary on any error. With a
// nil Secondary the local trend estimate is used, so Forecast never fails
// unless the context is done.
type Fallback struct {
	Primary   Forecaster
	Secondary Forecaster
	Logger    *zap.Logger
}

func (f Fallback) Name() string {
	if f.Primary == nil {
		return f.secondary().Name()
	}
	return f.Primary.Name()
}

func (f Fallback) Forecast(ctx context.Context, history []model.Observation, target time.Time) (float64, error) {
	v, _, err := f.ForecastWithSource(ctx, history, target)
	return v, err
}

func (f Fallback) ForecastWithSource(ctx context.Context, history []model.Observation, target time.Time) (float64, string, error) {
	if f.Primary != nil {
		v, err := f.Primary.Forecast(ctx, history, target)
		if err == nil {
			telemetry.Forecasts.WithLabelValues(f.Primary.Name()).Inc()
			return v, f.Primary.Name(), nil
		}
		if ctx.Err() != nil {
			return 0, "", ctx.Err()
		}
		f.logger().Warn("forecast failed, using fallback",
			zap.String("forecaster", f.Primary.Name()),
			zap.Time("target", target),
			zap.Error(err))
		telemetry.ForecastFallbacks.WithLabelValues(f.Primary.Name()).Inc()
	}

	sec := f.secondary()
	v, err := sec.Forecast(ctx, history, target)
	if err != nil {
		// secondary failures still resolve to the trend estimate
		v = TrendForecast(ContextWindow(history, target, DefaultWindow))
		telemetry.Forecasts.WithLabelValues(SourceTrend).Inc()
		return v, SourceTrend, nil
	}
	telemetry.Forecasts.WithLabelValues(sec.Name()).Inc()
	return v, sec.Name(), nil
}

func (f Fallback) secondary() Forecaster {
	if f.Secondary == nil {
		return LinearTrend{}
	}
	return f.Secondary
}

func (f Fallback) logger() *zap.Logger {
	if f.Logger == nil {
		return zap.NewNop()
	}
	return f.Logger
}
