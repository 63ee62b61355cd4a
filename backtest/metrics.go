package backtest

import "math"

// MAE is the mean absolute error. Empty input yields 0.
func MAE(results []Result) float64 {
	if len(results) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range results {
		sum += math.Abs(r.Error)
	}
	return sum / float64(len(results))
}

// MAPE is the mean absolute percentage error over points whose actual value
// is non-zero.
func MAPE(results []Result) float64 {
	sum, n := 0.0, 0
	for _, r := range results {
		if r.Actual == 0 {
			continue
		}
		sum += math.Abs(r.ErrorPercent)
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// RMSE is the root mean squared error. Empty input yields 0.
func RMSE(results []Result) float64 {
	if len(results) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range results {
		sum += r.Error * r.Error
	}
	return math.Sqrt(sum / float64(len(results)))
}

// RSquared is the coefficient of determination. A constant actual series
// has no variance to explain and yields 0.
func RSquared(results []Result) float64 {
	if len(results) == 0 {
		return 0
	}
	mean := 0.0
	for _, r := range results {
		mean += r.Actual
	}
	mean /= float64(len(results))

	ssRes, ssTot := 0.0, 0.0
	for _, r := range results {
		ssRes += r.Error * r.Error
		d := r.Actual - mean
		ssTot += d * d
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

func CalculateMetrics(results []Result) Metrics {
	return Metrics{
		MAE:      MAE(results),
		MAPE:     MAPE(results),
		RMSE:     RMSE(results),
		RSquared: RSquared(results),
	}
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
