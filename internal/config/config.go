package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Storage backend names.
const (
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// Narrator backend names.
const (
	NarratorAnthropic = "anthropic"
	NarratorOpenAI    = "openai"
	NarratorMock      = "mock"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// StorageBackend selects where run state persists: redis or sqlite.
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"redis"`
	RedisURL       string `env:"REDIS_URL" envDefault:"redis://localhost:6379"`
	SQLitePath     string `env:"SQLITE_PATH" envDefault:"tutien.db"`

	// DataDir holds the YAML content tables (scenes, activities, loot).
	DataDir string `env:"DATA_DIR" envDefault:"./data"`

	// Narrator selects the narrative generator: anthropic, openai or mock.
	Narrator        string `env:"NARRATOR" envDefault:"mock"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	AnthropicModel  string `env:"ANTHROPIC_MODEL" envDefault:"claude-sonnet-4-20250514"`
	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	OpenAIModel     string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`

	// ContentRating gates the profanity filter on narrator output.
	ContentRating string `env:"CONTENT_RATING" envDefault:"PG13"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects configurations that would fail at first use.
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case BackendRedis, BackendSQLite:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}
	switch c.Narrator {
	case NarratorMock:
	case NarratorAnthropic:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("NARRATOR=anthropic requires ANTHROPIC_API_KEY")
		}
	case NarratorOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("NARRATOR=openai requires OPENAI_API_KEY")
		}
	default:
		return fmt.Errorf("unknown NARRATOR %q", c.Narrator)
	}
	return nil
}

// SlogLevel maps the configured log level string to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
