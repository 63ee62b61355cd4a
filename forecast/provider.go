package forecast

import (
	"go.uber.org/zap"

	"econdash/llm"
)

// Provider builds per-indicator forecasters around a shared generator.
type Provider struct {
	gen    llm.Generator
	logger *zap.Logger
}

// NewProvider returns a Provider. A nil generator yields trend-only forecasters.
func NewProvider(gen llm.Generator, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{gen: gen, logger: logger}
}

// Remote reports whether forecasts go to a text generator.
func (p *Provider) Remote() bool { return p.gen != nil }

// For returns the forecaster for an indicator labelled label.
func (p *Provider) For(label string) Forecaster {
	if p.gen == nil {
		return LinearTrend{}
	}
	return Fallback{
		Primary: RemoteModel{Generator: p.gen, Label: label},
		Logger:  p.logger.With(zap.String("indicator", label)),
	}
}
