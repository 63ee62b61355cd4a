package backtest

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"econdash/dates"
)

type YAMLConfig struct {
	Backtest struct {
		Indicator  string `yaml:"indicator"`
		Days       int    `yaml:"days"`
		Start      string `yaml:"start"`
		End        string `yaml:"end"`
		SampleSize int    `yaml:"sample_size"`
	} `yaml:"backtest"`
}

// LoadRequest reads a backtest request file. When start is omitted and days
// is set, the window is the days before end (or before now when end is also
// omitted).
func LoadRequest(path string, now time.Time) (Request, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Request{}, fmt.Errorf("read config: %w", err)
	}

	var yc YAMLConfig
	if err := yaml.Unmarshal(raw, &yc); err != nil {
		return Request{}, fmt.Errorf("parse yaml: %w", err)
	}

	b := yc.Backtest
	req := Request{
		Indicator:  b.Indicator,
		Start:      b.Start,
		End:        b.End,
		SampleSize: b.SampleSize,
	}
	if req.Indicator == "" {
		return Request{}, fmt.Errorf("backtest.indicator is required")
	}

	if req.End == "" {
		req.End = dates.Format(dates.Day(now))
	}
	if req.Start == "" && b.Days > 0 {
		end, ok := dates.Parse(req.End)
		if !ok {
			return Request{}, fmt.Errorf("invalid backtest.end: %q", req.End)
		}
		req.Start = dates.Format(end.AddDate(0, 0, -b.Days))
	}
	if req.Start == "" {
		return Request{}, fmt.Errorf("backtest.start or backtest.days is required")
	}
	return req, nil
}
