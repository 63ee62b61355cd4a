// Package telemetry defines the Prometheus collectors shared by the data
// pipeline, the forecasters and the backtest runner.
package telemetry

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "econdash"

var (
	SourceFetches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "source_fetches_total",
		Help:      "Statistics proxy fetches by indicator and status",
	}, []string{"indicator", "status"})

	CacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Series cache lookups by result (hit, miss, stale)",
	}, []string{"result"})

	SeriesFallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "series_fallbacks_total",
		Help:      "Series loads served from stale cache or placeholder data",
	}, []string{"indicator", "kind"})

	Forecasts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "forecasts_total",
		Help:      "Forecasts produced by source",
	}, []string{"source"})

	ForecastFallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "forecast_fallbacks_total",
		Help:      "Remote forecasts replaced by the trend estimate",
	}, []string{"forecaster"})

	BacktestRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backtest_runs_total",
		Help:      "Backtest runs by indicator and status",
	}, []string{"indicator", "status"})

	BacktestMAPE = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backtest_mape_percent",
		Help:      "MAPE of completed backtest runs",
		Buckets:   []float64{1, 2, 5, 10, 20, 50, 100},
	}, []string{"indicator"})
)

// Register adds every collector to reg. Collectors already registered are
// left alone so the function can be called once per registry.
func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		SourceFetches,
		CacheLookups,
		SeriesFallbacks,
		Forecasts,
		ForecastFallbacks,
		BacktestRuns,
		BacktestMAPE,
	} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}

// RecordFetch records a statistics proxy fetch.
func RecordFetch(indicator string, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	SourceFetches.WithLabelValues(indicator, status).Inc()
}

// RecordBacktestRun records a backtest run event.
// status should be one of: "success", "failure", "cancelled"
func RecordBacktestRun(indicator, status string) {
	BacktestRuns.WithLabelValues(indicator, status).Inc()
}
