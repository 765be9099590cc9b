package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const defaultTimeout = 300 * time.Second

// Error reports a missing or invalid configuration value. The driver
// maps it to a distinct exit code so callers can tell configuration
// problems from runtime failures.
type Error struct {
	msg string
}

func (e *Error) Error() string {
	return e.msg
}

func errorf(format string, args ...any) *Error {
	return &Error{msg: fmt.Sprintf(format, args...)}
}

// Config holds everything the reporting commands need. It is built once
// at startup; nothing reads the environment after FromEnv returns.
type Config struct {
	EnvName  string
	URL      string
	APIKey   string
	Timeout  time.Duration
	LogLevel string
}

// FromEnv builds a Config from environment variables, merging a local
// .env file first. Required variables fail here, before any network
// activity.
func FromEnv() (Config, error) {
	// Best-effort: a missing .env file is not an error.
	_ = godotenv.Load()

	cfg := Config{
		EnvName:  Get("ENV_NAME", "env_name"),
		URL:      Get("QDRANT_URL", "qdrant_url"),
		APIKey:   getAPIKey(),
		LogLevel: Get("LOG_LEVEL", "log_level"),
	}

	if cfg.EnvName == "" {
		return Config{}, errorf("ENV_NAME environment variable is required")
	}
	if cfg.URL == "" {
		return Config{}, errorf("QDRANT_URL environment variable is required")
	}
	if cfg.APIKey == "" {
		return Config{}, errorf("QDRANT_API_KEY environment variable is required")
	}

	cfg.Timeout = defaultTimeout
	if raw := Get("TIMEOUT", "timeout"); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs <= 0 {
			return Config{}, errorf("TIMEOUT must be a positive number of seconds, got %q", raw)
		}
		cfg.Timeout = time.Duration(secs) * time.Second
	}

	return cfg, nil
}

func getAPIKey() string {
	return Get(
		"QDRANT_API_KEY",
		"qdrant_api_key",
		"QDRANT_API_TOKEN",
		"qdrant_api_token",
		"QDRANT_AUTH_TOKEN",
		"qdrant_auth_token",
	)
}
