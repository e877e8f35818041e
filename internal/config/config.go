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
	Catalog   CatalogConfig   `yaml:"catalog" mapstructure:"catalog"`
	Extract   ExtractConfig   `yaml:"extract" mapstructure:"extract"`
	Recon     ReconConfig     `yaml:"recon" mapstructure:"recon"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	OCR       OCRConfig       `yaml:"ocr" mapstructure:"ocr"`
	Session   SessionConfig   `yaml:"session" mapstructure:"session"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the session database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// CatalogConfig points at an optional catalog override file. Empty means the
// built-in catalog.
type CatalogConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ExtractConfig holds the extraction policy constants: per-layer acceptance
// thresholds, OCR handling, and Layer C bounds.
type ExtractConfig struct {
	AcceptA             float64 `yaml:"accept_a" mapstructure:"accept_a"`
	AcceptB             float64 `yaml:"accept_b" mapstructure:"accept_b"`
	AcceptC             float64 `yaml:"accept_c" mapstructure:"accept_c"`
	OCRAcceptance       float64 `yaml:"ocr_acceptance" mapstructure:"ocr_acceptance"`
	OCRPenalty          float64 `yaml:"ocr_penalty" mapstructure:"ocr_penalty"`
	FallbackTimeoutSecs int     `yaml:"fallback_timeout_secs" mapstructure:"fallback_timeout_secs"`
	FallbackRPS         float64 `yaml:"fallback_rps" mapstructure:"fallback_rps"`
	FallbackBurst       int     `yaml:"fallback_burst" mapstructure:"fallback_burst"`
	FieldConcurrency    int     `yaml:"field_concurrency" mapstructure:"field_concurrency"`
}

// ReconConfig holds the reconciliation policy constants.
type ReconConfig struct {
	NumericTolerance float64 `yaml:"numeric_tolerance" mapstructure:"numeric_tolerance"`
}

// AnthropicConfig holds Anthropic API settings for the Layer C fallback.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// OCRConfig configures PDF text acquisition.
type OCRConfig struct {
	Provider      string `yaml:"provider" mapstructure:"provider"`
	PdfToTextPath string `yaml:"pdftotext_path" mapstructure:"pdftotext_path"`
	MistralKey    string `yaml:"mistral_api_key" mapstructure:"mistral_api_key"`
	MistralModel  string `yaml:"mistral_ocr_model" mapstructure:"mistral_ocr_model"`
}

// SessionConfig configures review session retention.
type SessionConfig struct {
	TTLHours int `yaml:"ttl_hours" mapstructure:"ttl_hours"`
}

// ServerConfig configures the HTTP server.
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
	v.SetEnvPrefix("TRADEDOC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "tradedoc.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("session.ttl_hours", 24)
	v.SetDefault("extract.accept_a", 0.75)
	v.SetDefault("extract.accept_b", 0.65)
	v.SetDefault("extract.accept_c", 0.60)
	v.SetDefault("extract.ocr_acceptance", 0.60)
	v.SetDefault("extract.ocr_penalty", 0.05)
	v.SetDefault("extract.fallback_timeout_secs", 20)
	v.SetDefault("extract.fallback_rps", 1.0)
	v.SetDefault("extract.fallback_burst", 4)
	v.SetDefault("extract.field_concurrency", 8)
	v.SetDefault("recon.numeric_tolerance", 0.01)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("ocr.provider", "local")
	v.SetDefault("ocr.pdftotext_path", "pdftotext")
	v.SetDefault("ocr.mistral_ocr_model", "pixtral-large-latest")

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
