package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/newthinker/tickertalk/internal/core"
)

// DefaultSystemPrompt frames the assistant for every session.
const DefaultSystemPrompt = "You are a stock analysis assistant. Answer questions about stocks. " +
	"When a question needs market data or an indicator, call one of the available functions " +
	"with the company's ticker symbol. Keep answers short and factual."

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	LLM     LLMConfig     `mapstructure:"llm"`
	Market  MarketConfig  `mapstructure:"market"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Charts  ChartsConfig  `mapstructure:"charts"`
	Session SessionConfig `mapstructure:"session"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Tracing TracingConfig `mapstructure:"tracing"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	APIKey       string        `mapstructure:"api_key"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
	File        string `mapstructure:"file"`
}

type LLMConfig struct {
	Provider string       `mapstructure:"provider"`
	Claude   ClaudeConfig `mapstructure:"claude"`
	OpenAI   OpenAIConfig `mapstructure:"openai"`
	Ollama   OllamaConfig `mapstructure:"ollama"`
}

type ClaudeConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type OllamaConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Model    string `mapstructure:"model"`
}

// MarketConfig holds market data provider settings.
type MarketConfig struct {
	ChartURL     string        `mapstructure:"chart_url"`
	SearchURL    string        `mapstructure:"search_url"`
	QuotePage    string        `mapstructure:"quote_page"`
	UserAgent    string        `mapstructure:"user_agent"`
	Timeout      time.Duration `mapstructure:"timeout"`
	LookbackDays int           `mapstructure:"lookback_days"`
	NewsLimit    int           `mapstructure:"news_limit"`
	NewsCacheTTL time.Duration `mapstructure:"news_cache_ttl"`
}

// Lookback returns LookbackDays as a duration.
func (m MarketConfig) Lookback() time.Duration {
	return time.Duration(m.LookbackDays) * 24 * time.Hour
}

// CacheConfig holds the optional Redis price cache settings.
type CacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
	Prefix   string        `mapstructure:"prefix"`
}

// ChartsConfig holds chart rendering and artifact storage settings.
type ChartsConfig struct {
	Type          string   `mapstructure:"type"` // "localfs" or "s3"
	Path          string   `mapstructure:"path"` // For localfs
	S3            S3Config `mapstructure:"s3"`   // For S3
	Width         int      `mapstructure:"width"`
	Height        int      `mapstructure:"height"`
	OverlayWindow int      `mapstructure:"overlay_window"`
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// SessionConfig holds conversation settings.
type SessionConfig struct {
	SystemPrompt string        `mapstructure:"system_prompt"`
	MaxTokens    int           `mapstructure:"max_tokens"`
	Temperature  float64       `mapstructure:"temperature"`
	MaxSessions  int           `mapstructure:"max_sessions"`
	TTL          time.Duration `mapstructure:"ttl"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// TracingConfig holds OpenTelemetry settings.
type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	PrettyPrint bool   `mapstructure:"pretty_print"`
	ServiceName string `mapstructure:"service_name"`
}

// LoadDotEnv loads KEY=VALUE files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// Load reads configuration from file on top of Defaults. An empty path
// yields the defaults with environment overrides applied.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Support environment variable overrides
	v.SetEnvPrefix("TICKERTALK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := Defaults()
	bindDefaults(v, cfg)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// bindDefaults registers every default so AutomaticEnv can override keys
// that are absent from the file.
func bindDefaults(v *viper.Viper, c *Config) {
	defaults := map[string]any{
		"server.host":           c.Server.Host,
		"server.port":           c.Server.Port,
		"server.mode":           c.Server.Mode,
		"server.api_key":        c.Server.APIKey,
		"server.read_timeout":   c.Server.ReadTimeout,
		"server.write_timeout":  c.Server.WriteTimeout,
		"log.level":             c.Log.Level,
		"log.development":       c.Log.Development,
		"log.file":              c.Log.File,
		"llm.provider":          c.LLM.Provider,
		"llm.claude.api_key":    "",
		"llm.claude.model":      "",
		"llm.claude.base_url":   "",
		"llm.openai.api_key":    "",
		"llm.openai.model":      "",
		"llm.openai.base_url":   "",
		"llm.ollama.endpoint":   "",
		"llm.ollama.model":      "",
		"market.chart_url":      c.Market.ChartURL,
		"market.search_url":     c.Market.SearchURL,
		"market.quote_page":     c.Market.QuotePage,
		"market.user_agent":     c.Market.UserAgent,
		"market.timeout":        c.Market.Timeout,
		"market.lookback_days":  c.Market.LookbackDays,
		"market.news_limit":     c.Market.NewsLimit,
		"market.news_cache_ttl": c.Market.NewsCacheTTL,
		"cache.enabled":         c.Cache.Enabled,
		"cache.addr":            c.Cache.Addr,
		"cache.password":        "",
		"cache.db":              c.Cache.DB,
		"cache.ttl":             c.Cache.TTL,
		"cache.prefix":          c.Cache.Prefix,
		"charts.type":           c.Charts.Type,
		"charts.path":           c.Charts.Path,
		"charts.s3.bucket":      "",
		"charts.s3.endpoint":    "",
		"charts.s3.region":      "",
		"charts.s3.access_key":  "",
		"charts.s3.secret_key":  "",
		"charts.s3.prefix":      "",
		"charts.width":          c.Charts.Width,
		"charts.height":         c.Charts.Height,
		"charts.overlay_window": c.Charts.OverlayWindow,
		"session.system_prompt": c.Session.SystemPrompt,
		"session.max_tokens":    c.Session.MaxTokens,
		"session.temperature":   c.Session.Temperature,
		"session.max_sessions":  c.Session.MaxSessions,
		"session.ttl":           c.Session.TTL,
		"metrics.enabled":       c.Metrics.Enabled,
		"metrics.path":          c.Metrics.Path,
		"tracing.enabled":       c.Tracing.Enabled,
		"tracing.pretty_print":  c.Tracing.PrettyPrint,
		"tracing.service_name":  c.Tracing.ServiceName,
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			Mode:         "release",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 2 * time.Minute,
		},
		Log: LogConfig{
			Level: "info",
		},
		LLM: LLMConfig{
			Provider: "openai",
		},
		Market: MarketConfig{
			ChartURL:     "https://query1.finance.yahoo.com/v8/finance/chart",
			SearchURL:    "https://query1.finance.yahoo.com/v1/finance/search",
			QuotePage:    "https://finance.yahoo.com/quote",
			UserAgent:    "Mozilla/5.0 (compatible; tickertalk/1.0)",
			Timeout:      10 * time.Second,
			LookbackDays: 365,
			NewsLimit:    10,
			NewsCacheTTL: 5 * time.Minute,
		},
		Cache: CacheConfig{
			Enabled: false,
			Addr:    "localhost:6379",
			TTL:     15 * time.Minute,
			Prefix:  "tickertalk",
		},
		Charts: ChartsConfig{
			Type:          "localfs",
			Path:          "./data/charts",
			Width:         1024,
			Height:        512,
			OverlayWindow: 50,
		},
		Session: SessionConfig{
			SystemPrompt: DefaultSystemPrompt,
			MaxTokens:    1024,
			Temperature:  0,
			MaxSessions:  100,
			TTL:          time.Hour,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Tracing: TracingConfig{
			Enabled:     false,
			ServiceName: "tickertalk",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	switch c.LLM.Provider {
	case "claude":
		if c.LLM.Claude.APIKey == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("claude api_key required when provider is claude"))
		}
	case "openai":
		if c.LLM.OpenAI.APIKey == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("openai api_key required when provider is openai"))
		}
	case "ollama":
		if c.LLM.Ollama.Endpoint == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("ollama endpoint required when provider is ollama"))
		}
	case "":
		return core.WrapError(core.ErrConfigMissing, fmt.Errorf("llm provider required"))
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown llm provider %q", c.LLM.Provider))
	}

	if c.Market.LookbackDays < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("market lookback_days must be positive, got %d", c.Market.LookbackDays))
	}

	switch c.Charts.Type {
	case "localfs":
		if c.Charts.Path == "" {
			return core.WrapError(core.ErrConfigMissing, fmt.Errorf("charts path required for localfs"))
		}
	case "s3":
		if c.Charts.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing, fmt.Errorf("charts s3 bucket required"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("charts type must be localfs or s3, got %q", c.Charts.Type))
	}

	if c.Cache.Enabled && c.Cache.Addr == "" {
		return core.WrapError(core.ErrConfigMissing, fmt.Errorf("cache addr required when cache is enabled"))
	}

	if c.Session.MaxSessions < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("session max_sessions must be positive, got %d", c.Session.MaxSessions))
	}
	if c.Session.Temperature < 0 || c.Session.Temperature > 2 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("session temperature must be between 0 and 2, got %f", c.Session.Temperature))
	}

	return nil
}
