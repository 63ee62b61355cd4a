package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"econdash/config"
)

// ErrNoProvider is returned by FromConfig when an explicitly requested
// provider has no credentials or endpoint configured.
var ErrNoProvider = errors.New("llm provider not configured")

// Generator produces a single completion for a prompt.
type Generator interface {
	Name() string
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// FromConfig selects a Generator. With provider "auto" the first configured
// backend wins in the order gemini, openai, anthropic, ollama; a nil
// Generator with nil error means only trend extrapolation is available.
func FromConfig(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (Generator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = "auto"
	}

	build := func(name string) (Generator, error) {
		switch name {
		case "gemini":
			if cfg.GeminiAPIKey == "" {
				return nil, nil
			}
			return NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModels, logger)
		case "openai":
			if cfg.OpenAIAPIKey == "" {
				return nil, nil
			}
			return NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel), nil
		case "anthropic":
			if cfg.AnthropicAPIKey == "" {
				return nil, nil
			}
			return NewClaudeClient(cfg.AnthropicAPIKey, cfg.AnthropicBaseURL, cfg.AnthropicModel, &http.Client{Timeout: cfg.Timeout}), nil
		case "ollama":
			if cfg.OllamaURL == "" {
				return nil, nil
			}
			return NewOllamaClientWithTimeout(cfg.OllamaURL, cfg.OllamaModel, cfg.Timeout), nil
		}
		return nil, fmt.Errorf("unknown llm provider %q", name)
	}

	switch provider {
	case "none":
		return nil, nil
	case "auto":
		for _, name := range []string{"gemini", "openai", "anthropic", "ollama"} {
			g, err := build(name)
			if err != nil {
				return nil, err
			}
			if g != nil {
				logger.Info("llm provider selected", zap.String("provider", g.Name()))
				return g, nil
			}
		}
		logger.Info("no llm provider configured, forecasts use trend extrapolation")
		return nil, nil
	default:
		g, err := build(provider)
		if err != nil {
			return nil, err
		}
		if g == nil {
			return nil, fmt.Errorf("%w: %s", ErrNoProvider, provider)
		}
		logger.Info("llm provider selected", zap.String("provider", g.Name()))
		return g, nil
	}
}
