package backtest

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"econdash/forecast"
	"econdash/model"
)

// DefaultPace is the minimum spacing between consecutive forecaster calls.
const DefaultPace = 300 * time.Millisecond

const progressEvery = 5

// ProgressFunc is called after every fifth evaluated point and after the last.
type ProgressFunc func(done, total int)

type Runner struct {
	forecaster forecast.Forecaster
	pace       time.Duration
	logger     *zap.Logger
	progress   ProgressFunc
}

type Option func(*Runner)

// WithPace sets the spacing between forecaster calls. Zero disables pacing.
func WithPace(d time.Duration) Option {
	return func(r *Runner) {
		if d >= 0 {
			r.pace = d
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

func WithProgress(fn ProgressFunc) Option {
	return func(r *Runner) { r.progress = fn }
}

func NewRunner(f forecast.Forecaster, opts ...Option) *Runner {
	if f == nil {
		f = forecast.LinearTrend{}
	}
	r := &Runner{
		forecaster: f,
		pace:       DefaultPace,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Sample returns the indices of series to evaluate. sampleSize is clamped to
// 1..MaxSampleSize (0 means MaxSampleSize). When the series is longer than the
// sample, every step-th index is taken and the last index is always included.
func Sample(series []model.Observation, sampleSize int) []int {
	n := len(series)
	if n == 0 {
		return nil
	}
	size := clampSampleSize(sampleSize)

	if n <= size {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}

	step := n / size
	if step < 1 {
		step = 1
	}
	idx := make([]int, 0, size+2)
	for i := 0; i < n; i += step {
		idx = append(idx, i)
	}
	if idx[len(idx)-1] != n-1 {
		idx = append(idx, n-1)
	}
	return idx
}

func clampSampleSize(n int) int {
	if n <= 0 || n > MaxSampleSize {
		return MaxSampleSize
	}
	return n
}

// Run evaluates the sampled points of series in order. Each point is
// predicted from the observations before it only; the first point, which has
// none, is given itself. A forecaster error never aborts the run: the point
// gets the local trend estimate over strictly earlier observations instead. On cancellation the results gathered
// so far are returned with the context error.
func (r *Runner) Run(ctx context.Context, series []model.Observation, sampleSize int) ([]Result, error) {
	indices := Sample(series, sampleSize)
	results := make([]Result, 0, len(indices))

	var limiter *rate.Limiter
	if r.pace > 0 {
		limiter = rate.NewLimiter(rate.Every(r.pace), 1)
	}

	for k, idx := range indices {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return results, err
			}
		}

		p := series[idx]
		history := series[:idx]
		if idx == 0 {
			history = series[:1]
		}

		predicted, source, err := forecast.Predict(ctx, r.forecaster, history, p.Date)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return results, ctxErr
			}
			r.logger.Warn("forecast failed, using local trend",
				zap.Time("date", p.Date),
				zap.String("forecaster", r.forecaster.Name()),
				zap.Error(err))
			predicted = forecast.TrendForecast(forecast.ContextWindow(history, p.Date, forecast.DefaultWindow))
			source = forecast.SourceTrend
		}

		results = append(results, NewResult(p.Date, p.Value, predicted, source))

		if r.progress != nil && ((k+1)%progressEvery == 0 || k == len(indices)-1) {
			r.progress(k+1, len(indices))
		}
	}
	return results, nil
}
