package forecast

import (
	"context"
	"errors"
	"fmt"
	"time"

	"econdash/dates"
	"econdash/llm"
	"econdash/model"
)

// ErrNoGenerator is returned by RemoteModel when no text generator is set.
var ErrNoGenerator = errors.New("no text generator configured")

// RemoteModel asks a text generator for the next value and scrapes the first
// number out of its reply.
type RemoteModel struct {
	Generator llm.Generator
	// Label is the human-readable indicator name used in the prompt.
	Label string
	// Window caps the history sent in the prompt; 0 means DefaultWindow.
	Window int
}

func (r RemoteModel) Name() string {
	if r.Generator == nil {
		return "remote"
	}
	return r.Generator.Name()
}

func (r RemoteModel) Forecast(ctx context.Context, history []model.Observation, target time.Time) (float64, error) {
	if r.Generator == nil {
		return 0, ErrNoGenerator
	}
	window := r.Window
	if window <= 0 {
		window = DefaultWindow
	}
	day := dates.Format(target)
	prompt := llm.ForecastPrompt(r.Label, day, ContextWindow(history, target, window))

	text, err := r.Generator.Generate(ctx, llm.SystemForecast(), prompt)
	if err != nil {
		return 0, fmt.Errorf("%s forecast %s: %w", r.Generator.Name(), day, err)
	}
	v, err := llm.ExtractFirstNumber(text)
	if err != nil {
		return 0, fmt.Errorf("%s forecast %s: %w", r.Generator.Name(), day, err)
	}
	return v, nil
}
