package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadFromFile(t *testing.T) {
	p := writeFile(t, `
source:
  base_url: http://proxy.internal:3000
cache:
  backend: Redis
  ttl_hours: 12
llm:
  provider: ollama
  ollama_url: http://gpu:11434
server:
  port: 9000
backtest:
  pace_ms: 0
  sample_size: 8
`)
	cfg, err := LoadFromFile(p)
	require.NoError(t, err)
	assert.Equal(t, "http://proxy.internal:3000", cfg.SourceBaseURL)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, 12*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, 9000, cfg.Port)
	assert.True(t, cfg.Warmup, "warmup stays on unless disabled")
	assert.Equal(t, time.Duration(0), cfg.BacktestPace)
	assert.Equal(t, 8, cfg.SampleSize)
	assert.Equal(t, DefaultConfig.LLM.GeminiModels, cfg.LLM.GeminiModels)
	require.NoError(t, cfg.Validate())
}

func TestGetConfigEnvOverrides(t *testing.T) {
	t.Setenv("ECONDASH_SOURCE_URL", "http://env:1")
	t.Setenv("VITE_GEMINI_API_KEY", "vite-key")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("ANTHROPIC_AUTH_TOKEN", "token")
	t.Setenv("ECONDASH_PORT", "7000")

	cfg, err := GetConfig("")
	require.NoError(t, err)
	assert.Equal(t, "http://env:1", cfg.SourceBaseURL)
	assert.Equal(t, "vite-key", cfg.LLM.GeminiAPIKey)
	assert.Equal(t, "token", cfg.LLM.AnthropicAPIKey)
	assert.Equal(t, 7000, cfg.Port)
}

func TestValidateRejects(t *testing.T) {
	cfg := DefaultConfig
	cfg.SampleSize = 20
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig
	cfg.Cache.Backend = "etcd"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig
	cfg.LLM.Provider = "mistral"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig
	cfg.Port = 0
	assert.Error(t, cfg.Validate())
}

func TestGetConfigMissingFile(t *testing.T) {
	_, err := GetConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
