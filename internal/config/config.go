// Package config loads application configuration from command-line flags,
// environment variables, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Database DatabaseConfig
	Server   ServerConfig
	Session  SessionConfig
	Ratings  RatingsConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	// URL is the database connection string. Required; the server refuses
	// to start without it.
	URL string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	ListenAddr   string        // Address to listen on (default: :8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
}

// SessionConfig holds session lifetime configuration.
type SessionConfig struct {
	TTL             time.Duration // Session lifetime (default: 720h, 30 days)
	CleanupInterval time.Duration // Expired session sweep interval (default: 1h)
}

// RatingsConfig holds external rating source configuration.
type RatingsConfig struct {
	// Enabled turns the community stats lookup on. Requires an API key.
	Enabled bool
	BaseURL string
	APIKey  string
	Timeout time.Duration // Per-request timeout for the external call (default: 5s)
}

// Load builds configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	databaseURL := flag.String("database-url", "", "Database connection string")
	listenAddr := flag.String("listen-addr", "", "Address to listen on (default: :8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	sessionTTL := flag.String("session-ttl", "", "Session lifetime (default: 720h)")
	cleanupInterval := flag.String("session-cleanup-interval", "", "Expired session sweep interval (default: 1h)")
	ratingsBaseURL := flag.String("ratings-base-url", "", "Base URL of the community ratings API")
	ratingsAPIKey := flag.String("ratings-api-key", "", "API key for the community ratings API")
	ratingsTimeout := flag.String("ratings-timeout", "", "Timeout for community ratings calls (default: 5s)")
	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// .env is optional; a missing file is not an error.
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			URL: getConfigValue(*databaseURL, "DATABASE_URL", ""),
		},
		Server: ServerConfig{
			ListenAddr: getConfigValue(*listenAddr, "LISTEN_ADDR", ":8080"),
		},
		Ratings: RatingsConfig{
			BaseURL: getConfigValue(*ratingsBaseURL, "RATINGS_BASE_URL", "https://www.goodreads.com/book/review_counts.json"),
			APIKey:  getConfigValue(*ratingsAPIKey, "RATINGS_API_KEY", ""),
		},
	}

	durations := []struct {
		dst        *time.Duration
		flagValue  string
		envKey     string
		defaultVal string
		label      string
	}{
		{&cfg.Server.ReadTimeout, *readTimeout, "SERVER_READ_TIMEOUT", "15s", "read timeout"},
		{&cfg.Server.WriteTimeout, *writeTimeout, "SERVER_WRITE_TIMEOUT", "15s", "write timeout"},
		{&cfg.Server.IdleTimeout, *idleTimeout, "SERVER_IDLE_TIMEOUT", "60s", "idle timeout"},
		{&cfg.Session.TTL, *sessionTTL, "SESSION_TTL", "720h", "session TTL"},
		{&cfg.Session.CleanupInterval, *cleanupInterval, "SESSION_CLEANUP_INTERVAL", "1h", "session cleanup interval"},
		{&cfg.Ratings.Timeout, *ratingsTimeout, "RATINGS_TIMEOUT", "5s", "ratings timeout"},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flagValue, d.envKey, d.defaultVal)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.label, raw, err)
		}
		*d.dst = parsed
	}

	// The stats lookup only runs with a key to send.
	cfg.Ratings.Enabled = cfg.Ratings.APIKey != ""

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}

	if c.Server.ListenAddr == "" {
		return errors.New("listen address cannot be empty")
	}

	if c.Session.TTL <= 0 {
		return errors.New("session TTL must be positive")
	}

	if c.Ratings.Enabled && c.Ratings.BaseURL == "" {
		return errors.New("ratings base URL is required when a ratings API key is set")
	}

	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments). Real environment
// variables take precedence over file entries.
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), `"'`)

		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
