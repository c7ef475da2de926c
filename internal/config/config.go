package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	pkgretry "github.com/offlinellm/client-go/internal/pkg/retry"
)

// Config holds the application configuration
type Config struct {
	// Backend connection
	Backend BackendConfig `envPrefix:"BACKEND_"`

	// Model list fetch retry policy
	ModelListRetry pkgretry.RetryConfig `envPrefix:"MODEL_LIST_RETRY_"`

	// Preselected model; empty lets the backend pick its default
	DefaultModel string `env:"DEFAULT_MODEL"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Telegram bot configuration (only needed by cmd/telegram-bot)
	Telegram TelegramConfig `envPrefix:"TELEGRAM_"`

	// Environment (set from flag, not from env var)
	Environment string
}

// BackendConfig holds the HTTP client settings for the OfflineLLM API.
// BaseURL includes any reverse-proxy prefix (e.g. https://host/api).
type BackendConfig struct {
	BaseURL               string        `env:"URL" envDefault:"http://localhost:8000"`
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"2m"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"30s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"2m"`
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken      string        `env:"BOT_TOKEN"`
	UpdateTimeout int           `env:"UPDATE_TIMEOUT" envDefault:"30"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"1h"`
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = *envFlag

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Backend.BaseURL == "" {
		return fmt.Errorf("BACKEND_URL must not be empty")
	}

	if cfg.ModelListRetry.Attempts < 1 || cfg.ModelListRetry.Attempts > 10 {
		return fmt.Errorf("MODEL_LIST_RETRY_ATTEMPTS must be between 1 and 10, got %d", cfg.ModelListRetry.Attempts)
	}

	if cfg.Telegram.UpdateTimeout < 1 || cfg.Telegram.UpdateTimeout > 120 {
		return fmt.Errorf("TELEGRAM_UPDATE_TIMEOUT must be between 1 and 120 seconds, got %d", cfg.Telegram.UpdateTimeout)
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
