package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"econdash/config"
)

func TestOllamaGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		var req GenerateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "m1", req.Model)
		assert.Equal(t, "sys", req.System)
		assert.False(t, req.Stream)
		_ = json.NewEncoder(w).Encode(GenerateResponse{Response: " 3.2 ", Done: true})
	}))
	defer srv.Close()

	c := NewOllamaClientWithTimeout(srv.URL+"/", "m1", time.Second)
	out, err := c.Generate(context.Background(), "sys", "predict")
	require.NoError(t, err)
	assert.Equal(t, " 3.2 ", out)
	assert.Equal(t, "ollama", c.Name())
}

func TestOllamaErrorField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"model not found"}`))
	}))
	defer srv.Close()

	_, err := NewOllamaClient(srv.URL, "").Generate(context.Background(), "", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not found")
}

func TestClaudeGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "k", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "sys", body["system"])
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"101.5"}]}`))
	}))
	defer srv.Close()

	c := NewClaudeClient("k", srv.URL, "", nil)
	out, err := c.Generate(context.Background(), "sys", "predict")
	require.NoError(t, err)
	assert.Equal(t, "101.5", out)
}

func TestClaudeHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewClaudeClient("k", srv.URL, "", nil).Generate(context.Background(), "", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestOpenAIGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"4.1"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient("k", srv.URL+"/v1", "")
	out, err := c.Generate(context.Background(), SystemForecast(), "predict")
	require.NoError(t, err)
	assert.Equal(t, "4.1", out)
}

func TestFromConfig(t *testing.T) {
	ctx := context.Background()

	g, err := FromConfig(ctx, config.LLMConfig{Provider: "auto"}, nil)
	require.NoError(t, err)
	assert.Nil(t, g)

	g, err = FromConfig(ctx, config.LLMConfig{Provider: "none", OpenAIAPIKey: "k"}, nil)
	require.NoError(t, err)
	assert.Nil(t, g)

	g, err = FromConfig(ctx, config.LLMConfig{Provider: "auto", OpenAIAPIKey: "k", OllamaURL: "http://localhost:11434"}, nil)
	require.NoError(t, err)
	require.NotNil(t, g)
	assert.Equal(t, "openai", g.Name())

	g, err = FromConfig(ctx, config.LLMConfig{Provider: "auto", AnthropicAPIKey: "k", OllamaURL: "http://localhost:11434"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", g.Name())

	g, err = FromConfig(ctx, config.LLMConfig{Provider: "ollama", OllamaURL: "http://localhost:11434"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "ollama", g.Name())

	_, err = FromConfig(ctx, config.LLMConfig{Provider: "anthropic"}, nil)
	assert.True(t, errors.Is(err, ErrNoProvider))

	_, err = FromConfig(ctx, config.LLMConfig{Provider: "mistral"}, nil)
	assert.Error(t, err)
}

func TestForecastPromptEmbedsHistory(t *testing.T) {
	p := ForecastPrompt("GDP Growth", "2024-04-01", nil)
	assert.Contains(t, p, "[]")
	assert.Contains(t, p, "Prediction for 2024-04-01:")
}
