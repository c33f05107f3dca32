package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Exa       ExaConfig       `yaml:"exa" mapstructure:"exa"`
	Crustdata CrustdataConfig `yaml:"crustdata" mapstructure:"crustdata"`
	Instantly InstantlyConfig `yaml:"instantly" mapstructure:"instantly"`
	Research  ResearchConfig  `yaml:"research" mapstructure:"research"`
	Scorer    ScorerConfig    `yaml:"scorer" mapstructure:"scorer"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// AnthropicConfig holds Anthropic API settings. Research synthesis runs on
// the haiku model; scoring runs on sonnet. Neither stage uses web search —
// evidence gathering is Exa's job.
type AnthropicConfig struct {
	Key         string `yaml:"key" mapstructure:"key"`
	HaikuModel  string `yaml:"haiku_model" mapstructure:"haiku_model"`
	SonnetModel string `yaml:"sonnet_model" mapstructure:"sonnet_model"`
	MaxTokens   int    `yaml:"max_tokens" mapstructure:"max_tokens"`
	RetryBaseMs int    `yaml:"retry_base_ms" mapstructure:"retry_base_ms"`
}

// ExaConfig holds Exa search/contents API settings.
type ExaConfig struct {
	Key         string `yaml:"key" mapstructure:"key"`
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	RetryBaseMs int    `yaml:"retry_base_ms" mapstructure:"retry_base_ms"`
}

// CrustdataConfig holds Crustdata company/people database settings.
type CrustdataConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	// EnrichRPS paces person-enrichment requests (requests per second).
	EnrichRPS float64 `yaml:"enrich_rps" mapstructure:"enrich_rps"`
}

// InstantlyConfig holds Instantly campaign API settings.
type InstantlyConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// ResearchConfig configures the evidence-gathering phase.
type ResearchConfig struct {
	// MaxAgeHours bounds how stale a cached homepage crawl may be.
	MaxAgeHours int `yaml:"max_age_hours" mapstructure:"max_age_hours"`
	// LivecrawlTimeoutMs bounds each live crawl attempt.
	LivecrawlTimeoutMs int `yaml:"livecrawl_timeout_ms" mapstructure:"livecrawl_timeout_ms"`
	// NewsWindowDays bounds the recency of news results.
	NewsWindowDays int `yaml:"news_window_days" mapstructure:"news_window_days"`
	// LeadershipWindowDays bounds the recency of CEO/leadership content.
	LeadershipWindowDays int `yaml:"leadership_window_days" mapstructure:"leadership_window_days"`
}

// ScorerConfig configures fit classification.
type ScorerConfig struct {
	// ThresholdsFile optionally points at a YAML file overriding the
	// strong/moderate score cutoffs.
	ThresholdsFile string `yaml:"thresholds_file" mapstructure:"thresholds_file"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SCREENER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("batch.concurrency", 2)
	v.SetDefault("anthropic.haiku_model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.sonnet_model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 8096)
	v.SetDefault("anthropic.retry_base_ms", 30000)
	v.SetDefault("exa.base_url", "https://api.exa.ai")
	v.SetDefault("exa.retry_base_ms", 2000)
	v.SetDefault("crustdata.base_url", "https://api.crustdata.com")
	v.SetDefault("crustdata.enrich_rps", 2.0)
	v.SetDefault("instantly.base_url", "https://api.instantly.ai/api/v2")
	v.SetDefault("research.max_age_hours", 24)
	v.SetDefault("research.livecrawl_timeout_ms", 12000)
	v.SetDefault("research.news_window_days", 730)
	v.SetDefault("research.leadership_window_days", 180)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the configuration required for the given mode is
// present. Modes: "screen" (research + scoring), "discover" (company
// database), "contacts" (people search/enrichment), "push" (campaign
// export), "serve" (HTTP API).
func (c *Config) Validate(mode string) error {
	var missing []string

	need := func(val, name string) {
		if val == "" {
			missing = append(missing, name+" is required")
		}
	}
	// SQLite falls back to a local file; every other driver needs a URL.
	needStore := func() {
		if c.Store.Driver != "sqlite" {
			need(c.Store.DatabaseURL, "store.database_url")
		}
	}

	switch mode {
	case "screen":
		needStore()
		need(c.Anthropic.Key, "anthropic.key")
		need(c.Exa.Key, "exa.key")
	case "discover":
		needStore()
		need(c.Crustdata.Key, "crustdata.key")
	case "contacts":
		needStore()
		need(c.Crustdata.Key, "crustdata.key")
	case "push":
		needStore()
		need(c.Instantly.Key, "instantly.key")
	case "serve":
		if c.Server.Port <= 0 {
			missing = append(missing, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Batch.Concurrency < 1 || c.Batch.Concurrency > 50 {
		missing = append(missing, "batch.concurrency must be between 1 and 50")
	}

	if len(missing) > 0 {
		return eris.New("config: " + strings.Join(missing, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
