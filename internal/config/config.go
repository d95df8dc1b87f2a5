// Package config loads runtime configuration from the environment.
package config

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	apperrors "github.com/scholaris-app/scholaris/core/internal/errors"
)

// Config holds all runtime configuration for the sync core.
type Config struct {
	APIBaseURL    string        `validate:"required,url"`
	DataDir       string        `validate:"required"`
	SyncInterval  time.Duration `validate:"min=1m"`
	QueueInterval time.Duration `validate:"min=10s"`
	HTTPTimeout   time.Duration `validate:"min=1s"`
	ListenAddr    string        `validate:"required"`
	LogLevel      string        `validate:"oneof=DEBUG INFO WARN ERROR"`
	LogFormat     string        `validate:"oneof=JSON CONSOLE"`
}

// Defaults mirror the scheduler defaults: sync every 15 minutes, drain the
// queue every minute.
func defaults() *Config {
	return &Config{
		DataDir:       "./data",
		SyncInterval:  15 * time.Minute,
		QueueInterval: 1 * time.Minute,
		HTTPTimeout:   30 * time.Second,
		ListenAddr:    "localhost:8090",
		LogLevel:      "INFO",
		LogFormat:     "JSON",
	}
}

// Load reads configuration from a .env file (when present) and the process
// environment, then validates the result. Environment variables always win
// over file values already present in the environment.
func Load() (*Config, error) {
	// Missing .env is fine; the process environment is authoritative
	_ = godotenv.Load()

	cfg := defaults()
	cfg.APIBaseURL = getEnv("SCHOLARIS_API_URL", cfg.APIBaseURL)
	cfg.DataDir = getEnv("SCHOLARIS_DATA_DIR", cfg.DataDir)
	cfg.ListenAddr = getEnv("SCHOLARIS_LISTEN_ADDR", cfg.ListenAddr)
	cfg.LogLevel = getEnv("SCHOLARIS_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("SCHOLARIS_LOG_FORMAT", cfg.LogFormat)

	var err error
	if cfg.SyncInterval, err = getDuration("SCHOLARIS_SYNC_INTERVAL", cfg.SyncInterval); err != nil {
		return nil, err
	}
	if cfg.QueueInterval, err = getDuration("SCHOLARIS_QUEUE_INTERVAL", cfg.QueueInterval); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getDuration("SCHOLARIS_HTTP_TIMEOUT", cfg.HTTPTimeout); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration against its struct constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return apperrors.Wrap(apperrors.ErrValidation, "invalid configuration", err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInvalid, "invalid duration for "+key, err)
	}
	return d, nil
}
