package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Port     string `validate:"required,numeric"`
	Env      string `validate:"oneof=development production test"`
	RedisURL string `validate:"required,url"`
	LogLevel string `validate:"oneof=trace debug info warn error"`

	// History retention: newest entries kept per channel, 0 keeps everything.
	HistoryLimit int64 `validate:"min=0"`

	// Upper bound on how long a poll waits for a pending pub/sub message.
	PollTimeout time.Duration `validate:"min=1ms,max=5s"`

	// Cron expression for weather regeneration, empty disables it.
	WeatherReseedCron string

	// Requests allowed per client per window on the HTTP API, 0 disables limiting.
	RateLimitRequests int64         `validate:"min=0"`
	RateLimitWindow   time.Duration `validate:"min=1s"`

	// Reseed the weather table and default facts when the server starts.
	SeedOnStart bool
}

// Load reads configuration from environment variables.
// In development, it loads from .env file if present.
func Load() (*Config, error) {
	// Load .env file if it exists (for development)
	_ = godotenv.Load()

	historyLimit, err := strconv.ParseInt(getEnv("HISTORY_LIMIT", "1000"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid HISTORY_LIMIT: %w", err)
	}

	pollTimeout, err := time.ParseDuration(getEnv("POLL_TIMEOUT", "50ms"))
	if err != nil {
		return nil, fmt.Errorf("invalid POLL_TIMEOUT: %w", err)
	}

	rateLimit, err := strconv.ParseInt(getEnv("RATE_LIMIT_REQUESTS", "120"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_REQUESTS: %w", err)
	}

	rateWindow, err := time.ParseDuration(getEnv("RATE_LIMIT_WINDOW", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_WINDOW: %w", err)
	}

	seedOnStart, err := strconv.ParseBool(getEnv("SEED_ON_START", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid SEED_ON_START: %w", err)
	}

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		Env:               getEnv("ENV", "development"),
		RedisURL:          getEnv("REDIS_URL", "redis://localhost:6379/0"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		HistoryLimit:      historyLimit,
		PollTimeout:       pollTimeout,
		WeatherReseedCron: os.Getenv("WEATHER_RESEED_CRON"),
		RateLimitRequests: rateLimit,
		RateLimitWindow:   rateWindow,
		SeedOnStart:       seedOnStart,
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
