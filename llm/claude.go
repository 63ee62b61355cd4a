package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ClaudeClient calls the Anthropic messages API over plain HTTP.
type ClaudeClient struct {
	apiKey string
	apiURL string
	model  string
	client *http.Client
}

// NewClaudeClient creates a client. apiBase may point at a compatible proxy.
func NewClaudeClient(apiKey, apiBase, model string, client *http.Client) *ClaudeClient {
	if apiBase == "" {
		apiBase = "https://api.anthropic.com"
	}
	if model == "" {
		model = "claude-sonnet-4-5-20250929"
	}
	if client == nil || client.Timeout <= 0 {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &ClaudeClient{
		apiKey: apiKey,
		apiURL: strings.TrimSuffix(apiBase, "/") + "/v1/messages",
		model:  model,
		client: client,
	}
}

func (c *ClaudeClient) Name() string { return "anthropic" }

// Generate runs a single-turn exchange and returns the first text block.
func (c *ClaudeClient) Generate(ctx context.Context, system, prompt string) (string, error) {
	reqBody := map[string]any{
		"model":       c.model,
		"max_tokens":  64,
		"temperature": 0.1,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}
	if system != "" {
		reqBody["system"] = system
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("anthropic request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("anthropic http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	for _, part := range result.Content {
		if part.Text != "" {
			return part.Text, nil
		}
	}
	return "", errors.New("anthropic returned empty content")
}
