package econctl

import (
	"fmt"
	"time"

	"econdash/backtest"
)

// applyDays sets a rolling window of the last N calendar days ending today.
// Returns a human-readable description for text outputs.
func applyDays(req *backtest.Request, days int, now time.Time) string {
	if req == nil || days <= 0 {
		return ""
	}

	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, 0, -days)

	req.Start = start.Format("2006-01-02")
	req.End = end.Format("2006-01-02")

	return fmt.Sprintf("[BACKTEST] window: %s ~ %s (last %d days)", req.Start, req.End, days)
}
