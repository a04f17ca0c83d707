// Package config loads the server configuration from environment variables
// and an optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the application configuration.
type Config struct {
	Port     int    // BOOKS_PORT
	DBPath   string // BOOKS_DB, ":memory:" for an in-memory database
	SeedFile string // BOOKS_SEED, ledger file loaded into an empty database
	Currency string // BOOKS_CURRENCY, default for accounts without one
	LogLevel string // LOG_LEVEL

	// SyncInterval is how often the seed file is checked for changes
	// (BOOKS_SYNC_INTERVAL, e.g. "30s"). Zero disables the check.
	SyncInterval time.Duration
}

// Load loads configuration from environment variables.
// It loads .env from the current directory if present, or the given path.
func Load(envPath ...string) (*Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		// A missing .env is fine.
		_ = godotenv.Load()
	}

	port, err := parseIntEnv("BOOKS_PORT", 8080)
	if err != nil {
		return nil, err
	}

	interval, err := parseDurationEnv("BOOKS_SYNC_INTERVAL", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:         port,
		DBPath:       getEnvOrDefault("BOOKS_DB", "books.db"),
		SeedFile:     os.Getenv("BOOKS_SEED"),
		Currency:     strings.ToUpper(getEnvOrDefault("BOOKS_CURRENCY", "USD")),
		LogLevel:     getEnvOrDefault("LOG_LEVEL", "info"),
		SyncInterval: interval,
	}
	return cfg, cfg.Validate()
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.DBPath == "" {
		return fmt.Errorf("database path is required")
	}
	if c.SyncInterval < 0 {
		return fmt.Errorf("invalid sync interval %s", c.SyncInterval)
	}
	if len(c.Currency) != 3 {
		return fmt.Errorf("invalid currency code %q", c.Currency)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value for %s: %s", key, value)
	}
	return parsed, nil
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration value for %s: %s", key, value)
	}
	return parsed, nil
}
