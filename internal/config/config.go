// Package config loads the environment configuration shared by the CLI and
// the sync server.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/mmynk/duoledger/pkg/logging"
)

type Config struct {
	// Database
	DBPath string

	// Sync client
	SyncBaseURL  string
	SyncCooldown time.Duration
	SyncTimeout  time.Duration

	// Sync server
	ServerAddr    string
	ServerDataDir string
	ServerToken   string

	LogLevel string

	// invalid collects values that could not be parsed during Load.
	invalid []string
}

// LoadDotEnv reads a .env file from the working directory when present.
// Variables already set in the environment win.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to load .env file", "error", err)
	}
}

func Load() *Config {
	cfg := &Config{
		DBPath: getEnv("DB_PATH", "./data/duoledger.db"),

		SyncBaseURL: getEnv("SYNC_BASE_URL", "http://localhost:8080"),

		ServerAddr:    getEnv("SERVER_ADDR", ":8080"),
		ServerDataDir: getEnv("SERVER_DATA_DIR", "./data/sync"),
		ServerToken:   os.Getenv("PIA_TOKEN"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
	cfg.SyncCooldown = cfg.getEnvDuration("SYNC_COOLDOWN", 10*time.Second)
	cfg.SyncTimeout = cfg.getEnvDuration("SYNC_TIMEOUT", 10*time.Second)

	return cfg
}

// Validate validates the configuration and returns an error listing every problem.
func (c *Config) Validate() error {
	errors := append([]string(nil), c.invalid...)

	if c.DBPath == "" {
		errors = append(errors, "DB_PATH cannot be empty")
	}

	if parsedURL, err := url.Parse(c.SyncBaseURL); err != nil {
		errors = append(errors, fmt.Sprintf("invalid SYNC_BASE_URL '%s': %v", c.SyncBaseURL, err))
	} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		errors = append(errors, fmt.Sprintf("invalid SYNC_BASE_URL scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
	} else if parsedURL.Host == "" {
		errors = append(errors, fmt.Sprintf("invalid SYNC_BASE_URL '%s': missing host", c.SyncBaseURL))
	}

	if c.SyncCooldown < 0 {
		errors = append(errors, fmt.Sprintf("invalid sync cooldown %v: must not be negative", c.SyncCooldown))
	}
	if c.SyncTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("invalid sync timeout %v: must be positive", c.SyncTimeout))
	} else if c.SyncTimeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid sync timeout %v: must be at most 5 minutes", c.SyncTimeout))
	}

	if c.ServerAddr == "" {
		errors = append(errors, "SERVER_ADDR cannot be empty")
	}
	if c.ServerDataDir == "" {
		errors = append(errors, "SERVER_DATA_DIR cannot be empty")
	}

	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, err.Error())
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (c *Config) getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		c.invalid = append(c.invalid, fmt.Sprintf("invalid %s '%s': %v", key, value, err))
		return defaultValue
	}
	return d
}
