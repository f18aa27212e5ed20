package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"sourcehound/internal/domain"
)

// Config is the top-level application configuration.
type Config struct {
	Pipeline PipelineConfig  `yaml:"pipeline"`
	Search   SearchConfig    `yaml:"search"`
	Scorer   ScorerConfig    `yaml:"scorer"`
	Logger   LoggerConfig    `yaml:"logger"`
	Tracer   TracerConfig    `yaml:"tracer"`
	Channels []ChannelConfig `yaml:"channels"`
}

// PipelineConfig holds tuning for the source-discovery pipeline.
type PipelineConfig struct {
	// DesiredResults is how many search results to collect before scoring.
	DesiredResults int `yaml:"desired_results"`
	// TopN is how many ranked results are returned to the user.
	TopN int `yaml:"top_n"`
	// StageTimeout bounds each outbound provider call.
	StageTimeout time.Duration `yaml:"stage_timeout"`
}

// SearchConfig holds search provider settings.
type SearchConfig struct {
	Provider string        `yaml:"provider"` // "google"
	APIKey   string        `yaml:"api_key"`
	EngineID string        `yaml:"engine_id"`
	BaseURL  string        `yaml:"base_url,omitempty"` // override for testing
	Timeout  time.Duration `yaml:"timeout"`
}

// ScorerConfig holds relevance-scoring provider settings.
type ScorerConfig struct {
	Provider       ProviderConfig       `yaml:"provider"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`
}

// ProviderConfig holds settings for a single LLM provider.
type ProviderConfig struct {
	Name        string        `yaml:"name"`
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	ConnTimeout time.Duration `yaml:"conn_timeout"`
	RespTimeout time.Duration `yaml:"resp_timeout"`
	Pool        PoolConfig    `yaml:"pool"`
}

// PoolConfig holds HTTP connection pool settings for the scoring provider.
type PoolConfig struct {
	MaxIdleConns        int           `yaml:"max_idle_conns"`
	MaxIdleConnsPerHost int           `yaml:"max_idle_conns_per_host"`
	MaxConnsPerHost     int           `yaml:"max_conns_per_host"`
	IdleConnTimeout     time.Duration `yaml:"idle_conn_timeout"`
}

// CircuitBreakerConfig holds circuit breaker settings for the scoring provider.
type CircuitBreakerConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxFailures uint32        `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
	Interval    time.Duration `yaml:"interval"`
}

// ChannelConfig holds settings for a single channel.
type ChannelConfig struct {
	Type string `yaml:"type"` // "telegram" or "webform"

	Telegram *TelegramChannelConfig `yaml:"telegram,omitempty"`
	WebForm  *WebFormChannelConfig  `yaml:"webform,omitempty"`
}

// TelegramChannelConfig holds Telegram channel settings.
type TelegramChannelConfig struct {
	Token string `yaml:"token"`
}

// WebFormChannelConfig holds web form channel settings.
type WebFormChannelConfig struct {
	Addr string `yaml:"addr"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// TracerConfig holds tracing settings.
type TracerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"`
}

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			DesiredResults: 10,
			TopN:           3,
			StageTimeout:   15 * time.Second,
		},
		Search: SearchConfig{
			Provider: "google",
			Timeout:  15 * time.Second,
		},
		Scorer: ScorerConfig{
			Provider: ProviderConfig{
				Name:        "openai",
				Model:       "gpt-4o-mini",
				ConnTimeout: 10 * time.Second,
				RespTimeout: 30 * time.Second,
			},
			CircuitBreaker: CircuitBreakerConfig{
				Enabled:     true,
				MaxFailures: 5,
				Timeout:     30 * time.Second,
				Interval:    60 * time.Second,
			},
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Tracer: TracerConfig{
			Enabled:  false,
			Exporter: "noop",
		},
	}
}

// Load reads a YAML config file and applies env var overrides.
// A missing file is not an error: defaults plus env overrides are used.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			ApplyEnvOverrides(cfg)
			if err := Validate(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrConfigLoad, path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", domain.ErrConfigLoad, path, err)
	}

	ApplyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyEnvOverrides maps SOURCEHOUND_* env vars to config fields.
// Secrets (API keys, bot token) are expected to arrive this way in production.
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SOURCEHOUND_LOGGER_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := os.Getenv("SOURCEHOUND_LOGGER_FORMAT"); v != "" {
		cfg.Logger.Format = v
	}
	if v := os.Getenv("SOURCEHOUND_TRACER_ENABLED"); v == "true" {
		cfg.Tracer.Enabled = true
	}
	if v := os.Getenv("SOURCEHOUND_TRACER_EXPORTER"); v != "" {
		cfg.Tracer.Exporter = v
	}

	if v := os.Getenv("SOURCEHOUND_SEARCH_API_KEY"); v != "" {
		cfg.Search.APIKey = v
	}
	if v := os.Getenv("SOURCEHOUND_SEARCH_ENGINE_ID"); v != "" {
		cfg.Search.EngineID = v
	}
	if v := os.Getenv("SOURCEHOUND_SEARCH_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Search.Timeout = d
		}
	}

	if v := os.Getenv("SOURCEHOUND_SCORER_API_KEY"); v != "" {
		cfg.Scorer.Provider.APIKey = v
	}
	if v := os.Getenv("SOURCEHOUND_SCORER_BASE_URL"); v != "" {
		cfg.Scorer.Provider.BaseURL = v
	}
	if v := os.Getenv("SOURCEHOUND_SCORER_MODEL"); v != "" {
		cfg.Scorer.Provider.Model = v
	}

	if v := os.Getenv("SOURCEHOUND_PIPELINE_DESIRED_RESULTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Pipeline.DesiredResults = n
		}
	}
	if v := os.Getenv("SOURCEHOUND_PIPELINE_TOP_N"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Pipeline.TopN = n
		}
	}
	if v := os.Getenv("SOURCEHOUND_PIPELINE_STAGE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Pipeline.StageTimeout = d
		}
	}

	// Channel token overrides (env vars populate nested config structs).
	if v := os.Getenv("SOURCEHOUND_TELEGRAM_TOKEN"); v != "" {
		for i := range cfg.Channels {
			if cfg.Channels[i].Type == "telegram" {
				if cfg.Channels[i].Telegram == nil {
					cfg.Channels[i].Telegram = &TelegramChannelConfig{}
				}
				cfg.Channels[i].Telegram.Token = v
			}
		}
	}
	if v := os.Getenv("SOURCEHOUND_WEBFORM_ADDR"); v != "" {
		for i := range cfg.Channels {
			if cfg.Channels[i].Type == "webform" {
				if cfg.Channels[i].WebForm == nil {
					cfg.Channels[i].WebForm = &WebFormChannelConfig{}
				}
				cfg.Channels[i].WebForm.Addr = v
			}
		}
	}
}
