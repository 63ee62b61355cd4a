package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiClient tries each configured model in order until one answers.
type GeminiClient struct {
	client *genai.Client
	models []string
	logger *zap.Logger
}

func NewGeminiClient(ctx context.Context, apiKey string, models []string, logger *zap.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	if len(models) == 0 {
		models = []string{"gemini-2.5-flash", "gemini-2.5-flash-lite", "gemini-2.5-pro"}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiClient{client: client, models: models, logger: logger}, nil
}

func (g *GeminiClient) Name() string { return "gemini" }

func (g *GeminiClient) Generate(ctx context.Context, system, prompt string) (string, error) {
	temp := float32(0.1)
	cfg := &genai.GenerateContentConfig{Temperature: &temp}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	var errs []error
	for _, model := range g.models {
		resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(prompt), cfg)
		if err == nil {
			if text := strings.TrimSpace(resp.Text()); text != "" {
				return text, nil
			}
			err = errors.New("empty response")
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		g.logger.Debug("gemini model failed, trying next", zap.String("model", model), zap.Error(err))
		errs = append(errs, fmt.Errorf("%s: %w", model, err))
	}
	return "", fmt.Errorf("all gemini models failed: %w", errors.Join(errs...))
}
