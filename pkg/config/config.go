// Package config loads application configuration from the environment, with
// optional .env file support.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/ram-tools/ram-client/pkg/client"
	"github.com/ram-tools/ram-client/pkg/retry"
)

// Config holds the application configuration.
type Config struct {
	// RESTBaseURL is the base URL of the REST-style endpoint.
	RESTBaseURL string

	// GraphQLURL is the URL of the query-based endpoint.
	GraphQLURL string

	// UserAgent is sent with every request.
	UserAgent string

	// Timeout per request round trip.
	Timeout time.Duration

	// MaxAttempts is the total attempts per page, including the first.
	MaxAttempts int

	// InitialBackoff is the delay after the first failed attempt.
	InitialBackoff time.Duration

	// OutputDir receives exported CSV files.
	OutputDir string

	// LogLevel is the minimum log level (debug, info, warn, error).
	LogLevel string

	// LogPretty enables human-readable console output.
	LogPretty bool
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		RESTBaseURL:    "https://rickandmortyapi.com/api",
		GraphQLURL:     "https://rickandmortyapi.com/graphql",
		UserAgent:      "ram-client/0.1.0",
		Timeout:        30 * time.Second,
		MaxAttempts:    3,
		InitialBackoff: 1 * time.Second,
		OutputDir:      "output",
		LogLevel:       "info",
	}
}

// FromEnv loads configuration from the environment, reading a .env file
// first when one exists. Unset variables keep their defaults.
func FromEnv() Config {
	// Missing .env is fine; the environment alone is enough.
	_ = godotenv.Load()

	cfg := Default()
	cfg.RESTBaseURL = getEnv("RAM_REST_BASE_URL", cfg.RESTBaseURL)
	cfg.GraphQLURL = getEnv("RAM_GRAPHQL_URL", cfg.GraphQLURL)
	cfg.UserAgent = getEnv("RAM_USER_AGENT", cfg.UserAgent)
	cfg.Timeout = getEnvDuration("RAM_TIMEOUT", cfg.Timeout)
	cfg.MaxAttempts = getEnvInt("RAM_MAX_ATTEMPTS", cfg.MaxAttempts)
	cfg.InitialBackoff = getEnvDuration("RAM_INITIAL_BACKOFF", cfg.InitialBackoff)
	cfg.OutputDir = getEnv("RAM_OUTPUT_DIR", cfg.OutputDir)
	cfg.LogLevel = getEnv("RAM_LOG_LEVEL", cfg.LogLevel)
	cfg.LogPretty = getEnvBool("RAM_LOG_PRETTY", cfg.LogPretty)
	return cfg
}

// ClientConfig derives the HTTP client configuration.
func (c Config) ClientConfig() client.Config {
	return client.Config{
		UserAgent: c.UserAgent,
		Timeout:   c.Timeout,
	}
}

// RetryPolicy derives the retry policy.
func (c Config) RetryPolicy() retry.Policy {
	policy := retry.DefaultPolicy()
	if c.MaxAttempts > 0 {
		policy.MaxAttempts = c.MaxAttempts
	}
	if c.InitialBackoff > 0 {
		policy.InitialBackoff = c.InitialBackoff
	}
	return policy
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
