// Package forecast produces one-step-ahead predictions for an indicator
// series. Remote model forecasters are always composed with the linear trend
// estimate so a prediction is produced even when the model is unavailable.
package forecast

import (
	"context"
	"time"

	"econdash/model"
)

const (
	// DefaultWindow is the number of prior observations handed to a forecaster.
	DefaultWindow = 12

	// SourceTrend labels values produced by trend extrapolation.
	SourceTrend = "trend"

	trendPoints = 3
)

// Forecaster predicts the value of a series at target from its history.
type Forecaster interface {
	Name() string
	Forecast(ctx context.Context, history []model.Observation, target time.Time) (float64, error)
}

// sourceReporter is implemented by forecasters that may delegate, so callers
// can tell which implementation actually produced the last value.
type sourceReporter interface {
	ForecastWithSource(ctx context.Context, history []model.Observation, target time.Time) (float64, string, error)
}

// Predict runs f and reports the name of the forecaster that produced the value.
func Predict(ctx context.Context, f Forecaster, history []model.Observation, target time.Time) (float64, string, error) {
	if sr, ok := f.(sourceReporter); ok {
		return sr.ForecastWithSource(ctx, history, target)
	}
	v, err := f.Forecast(ctx, history, target)
	return v, f.Name(), err
}

// ContextWindow returns up to n observations dated strictly before target,
// keeping the most recent ones. history must be sorted ascending.
func ContextWindow(history []model.Observation, target time.Time, n int) []model.Observation {
	end := 0
	for end < len(history) && history[end].Date.Before(target) {
		end++
	}
	start := 0
	if n > 0 && end > n {
		start = end - n
	}
	return model.Clone(history[start:end])
}

// TrendForecast extrapolates the last three values one period ahead using
// the average per-period change. One value is returned unchanged; an empty
// history yields 0.
//
// The change is divided by the number of intervals (count-1), not the number
// of values, so 100, 110, 120 extrapolates to 130.
func TrendForecast(history []model.Observation) float64 {
	pts := history
	if len(pts) > trendPoints {
		pts = pts[len(pts)-trendPoints:]
	}
	switch len(pts) {
	case 0:
		return 0
	case 1:
		return pts[0].Value
	}
	first, last := pts[0].Value, pts[len(pts)-1].Value
	slope := (last - first) / float64(len(pts)-1)
	return last + slope
}

// LinearTrend is the local forecaster. It sees the same window as a remote
// model and never fails.
type LinearTrend struct{}

func (LinearTrend) Name() string { return SourceTrend }

func (LinearTrend) Forecast(_ context.Context, history []model.Observation, target time.Time) (float64, error) {
	return TrendForecast(ContextWindow(history, target, DefaultWindow)), nil
}
