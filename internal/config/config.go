// Package config provides configuration loading from environment variables.
package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds all configuration for the application.
//
// Provider API keys are intentionally not required at load time: a
// server started without them still serves traffic, and jobs that need
// a missing key fail individually with a readable error.
type Config struct {
	// Server settings
	Port           int      `env:"PORT, default=8080" json:"port"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS, default=*" json:"allowed_origins"`

	// Provider settings
	TavilyAPIKey  string `env:"TAVILY_API_KEY" json:"-"` // Masked in JSON
	TavilyBaseURL string `env:"TAVILY_BASE_URL" json:"tavily_base_url,omitempty"`
	OpenAIAPIKey  string `env:"OPENAI_API_KEY" json:"-"` // Masked in JSON
	OpenAIBaseURL string `env:"OPENAI_BASE_URL" json:"openai_base_url,omitempty"`
	OpenAIModel   string `env:"OPENAI_MODEL, default=gpt-4o-mini" json:"openai_model"`
	KlingAPIKey   string `env:"KLING_API_KEY" json:"-"` // Masked in JSON
	KlingBaseURL  string `env:"KLING_BASE_URL" json:"kling_base_url,omitempty"`

	// Render polling settings
	PollIntervalSec int `env:"POLL_INTERVAL_SEC, default=15" json:"poll_interval_sec"`
	PollMaxAttempts int `env:"POLL_MAX_ATTEMPTS, default=30" json:"poll_max_attempts"`
	PollTimeoutSec  int `env:"POLL_TIMEOUT_SEC, default=420" json:"poll_timeout_sec"`

	// Optional Redis settings for the durable job ledger
	RedisAddr     string `env:"REDIS_ADDR" json:"redis_addr,omitempty"`
	RedisPassword string `env:"REDIS_PASSWORD" json:"-"` // Masked in JSON
	RedisDB       int    `env:"REDIS_DB, default=0" json:"redis_db"`

	// Optional S3 settings for artifact mirroring
	S3Bucket           string `env:"S3_BUCKET" json:"s3_bucket,omitempty"`
	S3Region           string `env:"S3_REGION" json:"s3_region,omitempty"`
	S3Endpoint         string `env:"S3_ENDPOINT" json:"s3_endpoint,omitempty"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" json:"-"`     // Masked in JSON
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" json:"-"` // Masked in JSON

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" json:"log_format"` // "json" or "text"
	LogLevel  string `env:"LOG_LEVEL, default=info" json:"log_level"`   // "debug", "info", "warn", "error"
}

// S3Enabled returns true if S3 configuration is provided.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3Region != ""
}

// RedisEnabled returns true if a Redis address is provided.
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

// PollInterval returns the render poll interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSec) * time.Second
}

// PollTimeout returns the render poll wall-clock budget as a duration.
func (c *Config) PollTimeout() time.Duration {
	return time.Duration(c.PollTimeoutSec) * time.Second
}

// Load reads configuration from environment variables using go-envconfig.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := envconfig.Process(context.Background(), cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// NewLogger creates a structured logger based on the configuration.
// When LogFormat is "json", it outputs JSON logs suitable for production.
// Otherwise, it outputs human-readable text logs.
func (c *Config) NewLogger() *slog.Logger {
	level := parseLogLevel(c.LogLevel)

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}

	return slog.New(handler)
}

// String returns a string representation of the config with sensitive values masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Port: %d, OpenAIModel: %s, PollIntervalSec: %d, PollMaxAttempts: %d, PollTimeoutSec: %d, RedisAddr: %s, S3Bucket: %s, S3Region: %s, LogFormat: %s, LogLevel: %s}",
		c.Port,
		c.OpenAIModel,
		c.PollIntervalSec,
		c.PollMaxAttempts,
		c.PollTimeoutSec,
		c.RedisAddr,
		c.S3Bucket,
		c.S3Region,
		c.LogFormat,
		c.LogLevel,
	)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
