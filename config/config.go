package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// YAMLConfig YAML配置文件结构
type YAMLConfig struct {
	Source struct {
		BaseURL        string `yaml:"base_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"source"`

	Cache struct {
		Backend        string `yaml:"backend"`
		Dir            string `yaml:"dir"`
		TTLHours       int    `yaml:"ttl_hours"`
		RedisAddr      string `yaml:"redis_addr"`
		RedisPassword  string `yaml:"redis_password"`
		RedisDB        int    `yaml:"redis_db"`
		RetentionHours int    `yaml:"retention_hours"`
	} `yaml:"cache"`

	LLM struct {
		Provider         string   `yaml:"provider"`
		GeminiAPIKey     string   `yaml:"gemini_api_key"`
		GeminiModels     []string `yaml:"gemini_models"`
		OpenAIAPIKey     string   `yaml:"openai_api_key"`
		OpenAIBaseURL    string   `yaml:"openai_base_url"`
		OpenAIModel      string   `yaml:"openai_model"`
		AnthropicAPIKey  string   `yaml:"anthropic_api_key"`
		AnthropicBaseURL string   `yaml:"anthropic_base_url"`
		AnthropicModel   string   `yaml:"anthropic_model"`
		OllamaURL        string   `yaml:"ollama_url"`
		OllamaModel      string   `yaml:"ollama_model"`
		TimeoutSeconds   int      `yaml:"timeout_seconds"`
	} `yaml:"llm"`

	Server struct {
		Port                  int   `yaml:"port"`
		Warmup                *bool `yaml:"warmup"`
		RefreshIntervalMinute int   `yaml:"refresh_interval_minutes"`
	} `yaml:"server"`

	Backtest struct {
		PaceMillis *int `yaml:"pace_ms"`
		SampleSize int  `yaml:"sample_size"`
	} `yaml:"backtest"`
}

// CacheConfig 缓存配置
type CacheConfig struct {
	Backend        string        `validate:"oneof=memory file badger redis"`
	Dir            string        `validate:"required_if=Backend file"`
	TTL            time.Duration `validate:"gt=0"`
	RedisAddr      string        `validate:"required_if=Backend redis"`
	RedisPassword  string
	RedisDB        int `validate:"min=0"`
	RedisRetention time.Duration
}

// LLMConfig 预测模型配置
type LLMConfig struct {
	// auto: 按可用性选择 gemini > openai > anthropic > ollama，全部不可用时只用趋势外推
	Provider string `validate:"oneof=auto gemini openai anthropic ollama none"`

	GeminiAPIKey string
	GeminiModels []string

	OpenAIAPIKey  string
	OpenAIBaseURL string `validate:"omitempty,url"`
	OpenAIModel   string

	AnthropicAPIKey  string
	AnthropicBaseURL string `validate:"omitempty,url"`
	AnthropicModel   string

	OllamaURL   string `validate:"omitempty,url"`
	OllamaModel string

	Timeout time.Duration `validate:"gt=0"`
}

// Config 配置
type Config struct {
	// HTTP 服务端口
	Port int `validate:"min=1,max=65535"`

	// 统计数据代理地址
	SourceBaseURL string `validate:"required,url"`

	// 代理请求超时
	SourceTimeout time.Duration `validate:"gt=0"`

	// 启动时预拉取全部指标
	Warmup bool

	// 后台刷新间隔，0 表示不刷新
	RefreshInterval time.Duration `validate:"min=0"`

	// 回测逐点调用之间的间隔
	BacktestPace time.Duration `validate:"min=0"`

	// 回测默认采样点数
	SampleSize int `validate:"min=1,max=15"`

	Cache CacheConfig
	LLM   LLMConfig
}

// DefaultConfig 默认配置
var DefaultConfig = Config{
	Port:            8787,
	SourceBaseURL:   "http://localhost:3000",
	SourceTimeout:   15 * time.Second,
	Warmup:          true,
	RefreshInterval: 6 * time.Hour,
	BacktestPace:    300 * time.Millisecond,
	SampleSize:      15,
	Cache: CacheConfig{
		Backend:        "memory",
		Dir:            "runtime/cache",
		TTL:            24 * time.Hour,
		RedisAddr:      "localhost:6379",
		RedisRetention: 7 * 24 * time.Hour,
	},
	LLM: LLMConfig{
		Provider:       "auto",
		GeminiModels:   []string{"gemini-2.5-flash", "gemini-2.5-flash-lite", "gemini-2.5-pro"},
		OpenAIModel:    "gpt-4o-mini",
		AnthropicModel: "claude-sonnet-4-5-20250929",
		OllamaModel:    "qwen2.5:7b",
		Timeout:        60 * time.Second,
	},
}

var validate = validator.New()

// LoadFromFile 从YAML文件加载配置
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*Config, error) {
	var yc YAMLConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	config := DefaultConfig
	config.LLM.GeminiModels = append([]string(nil), DefaultConfig.LLM.GeminiModels...)

	// 数据源
	if yc.Source.BaseURL != "" {
		config.SourceBaseURL = yc.Source.BaseURL
	}
	if yc.Source.TimeoutSeconds > 0 {
		config.SourceTimeout = time.Duration(yc.Source.TimeoutSeconds) * time.Second
	}

	// 缓存
	if yc.Cache.Backend != "" {
		config.Cache.Backend = strings.ToLower(yc.Cache.Backend)
	}
	if yc.Cache.Dir != "" {
		config.Cache.Dir = yc.Cache.Dir
	}
	if yc.Cache.TTLHours > 0 {
		config.Cache.TTL = time.Duration(yc.Cache.TTLHours) * time.Hour
	}
	if yc.Cache.RedisAddr != "" {
		config.Cache.RedisAddr = yc.Cache.RedisAddr
	}
	config.Cache.RedisPassword = yc.Cache.RedisPassword
	config.Cache.RedisDB = yc.Cache.RedisDB
	if yc.Cache.RetentionHours > 0 {
		config.Cache.RedisRetention = time.Duration(yc.Cache.RetentionHours) * time.Hour
	}

	// 模型
	if yc.LLM.Provider != "" {
		config.LLM.Provider = strings.ToLower(yc.LLM.Provider)
	}
	config.LLM.GeminiAPIKey = yc.LLM.GeminiAPIKey
	if len(yc.LLM.GeminiModels) > 0 {
		config.LLM.GeminiModels = yc.LLM.GeminiModels
	}
	config.LLM.OpenAIAPIKey = yc.LLM.OpenAIAPIKey
	config.LLM.OpenAIBaseURL = yc.LLM.OpenAIBaseURL
	if yc.LLM.OpenAIModel != "" {
		config.LLM.OpenAIModel = yc.LLM.OpenAIModel
	}
	config.LLM.AnthropicAPIKey = yc.LLM.AnthropicAPIKey
	config.LLM.AnthropicBaseURL = yc.LLM.AnthropicBaseURL
	if yc.LLM.AnthropicModel != "" {
		config.LLM.AnthropicModel = yc.LLM.AnthropicModel
	}
	config.LLM.OllamaURL = yc.LLM.OllamaURL
	if yc.LLM.OllamaModel != "" {
		config.LLM.OllamaModel = yc.LLM.OllamaModel
	}
	if yc.LLM.TimeoutSeconds > 0 {
		config.LLM.Timeout = time.Duration(yc.LLM.TimeoutSeconds) * time.Second
	}

	// 服务
	if yc.Server.Port > 0 {
		config.Port = yc.Server.Port
	}
	if yc.Server.Warmup != nil {
		config.Warmup = *yc.Server.Warmup
	}
	if yc.Server.RefreshIntervalMinute > 0 {
		config.RefreshInterval = time.Duration(yc.Server.RefreshIntervalMinute) * time.Minute
	}

	// 回测
	if yc.Backtest.PaceMillis != nil && *yc.Backtest.PaceMillis >= 0 {
		config.BacktestPace = time.Duration(*yc.Backtest.PaceMillis) * time.Millisecond
	}
	if yc.Backtest.SampleSize > 0 {
		config.SampleSize = yc.Backtest.SampleSize
	}

	return &config, nil
}

// GetConfig 获取配置 (优先级: 环境变量 > 配置文件 > 默认值)
// 配置文件读取失败时返回错误；path 为空时使用默认值
func GetConfig(path string) (*Config, error) {
	config := DefaultConfig
	config.LLM.GeminiModels = append([]string(nil), DefaultConfig.LLM.GeminiModels...)

	if path != "" {
		cfg, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		config = *cfg
	}

	applyEnv(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("配置校验失败: %w", err)
	}
	return nil
}

// applyEnv 环境变量覆盖
func applyEnv(c *Config) {
	if v := os.Getenv("ECONDASH_SOURCE_URL"); v != "" {
		c.SourceBaseURL = v
	}
	if v := os.Getenv("ECONDASH_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Port = p
		}
	}
	if v := os.Getenv("ECONDASH_CACHE_BACKEND"); v != "" {
		c.Cache.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.RedisAddr = v
	}
	if key := getGeminiKey(); key != "" {
		c.LLM.GeminiAPIKey = key
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.LLM.OpenAIAPIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		c.LLM.OpenAIBaseURL = v
	}
	if key := getAnthropicKey(); key != "" {
		c.LLM.AnthropicAPIKey = key
	}
	if v := os.Getenv("ANTHROPIC_BASE_URL"); v != "" {
		c.LLM.AnthropicBaseURL = v
	}
	if v := os.Getenv("OLLAMA_URL"); v != "" {
		c.LLM.OllamaURL = v
	}
}

// getGeminiKey 兼容前端时代的 VITE_ 前缀变量
func getGeminiKey() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return os.Getenv("VITE_GEMINI_API_KEY")
}

// getAnthropicKey 优先使用 AUTH_TOKEN(代理服务常用)
func getAnthropicKey() string {
	if key := os.Getenv("ANTHROPIC_AUTH_TOKEN"); key != "" {
		return key
	}
	return os.Getenv("ANTHROPIC_API_KEY")
}
