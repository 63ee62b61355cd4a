package backtest

import (
	"time"

	"econdash/dates"
)

// MaxSampleSize caps the number of evaluated points per run.
const MaxSampleSize = 15

// Result is one evaluated point. Error is predicted minus actual.
type Result struct {
	Date         string  `json:"date"`
	Actual       float64 `json:"actual"`
	Predicted    float64 `json:"predicted"`
	Error        float64 `json:"error"`
	ErrorPercent float64 `json:"error_percent"`
	Source       string  `json:"source"`
}

// NewResult pairs a prediction with its actual value. ErrorPercent is 0 when
// the actual value is 0.
func NewResult(date time.Time, actual, predicted float64, source string) Result {
	e := predicted - actual
	pct := 0.0
	if actual != 0 {
		pct = e / actual * 100
	}
	return Result{
		Date:         dates.Format(date),
		Actual:       actual,
		Predicted:    predicted,
		Error:        e,
		ErrorPercent: pct,
		Source:       source,
	}
}

type Metrics struct {
	MAE      float64 `json:"mae"`
	MAPE     float64 `json:"mape"`
	RMSE     float64 `json:"rmse"`
	RSquared float64 `json:"r_squared"`
}

// Request selects an indicator and a date window to evaluate.
type Request struct {
	Indicator  string `json:"indicator" yaml:"indicator" binding:"required"`
	Start      string `json:"start" yaml:"start" binding:"required"`
	End        string `json:"end" yaml:"end" binding:"required"`
	SampleSize int    `json:"sample_size" yaml:"sample_size" binding:"min=0,max=15"`
}

// Run is a completed (or cancelled) backtest.
type Run struct {
	ID         string    `json:"id"`
	Indicator  string    `json:"indicator"`
	Label      string    `json:"label"`
	Start      string    `json:"start"`
	End        string    `json:"end"`
	SampleSize int       `json:"sample_size"`
	Forecaster string    `json:"forecaster"`
	StaleData  bool      `json:"stale_data,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Results    []Result  `json:"results"`
	Metrics    Metrics   `json:"metrics"`
	Fallbacks  int       `json:"fallbacks"`
	Cancelled  bool      `json:"cancelled,omitempty"`
}
