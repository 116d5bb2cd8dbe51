// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr    string
	DBPath        string
	UnlockPIN     string
	SeedDemo      bool
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	AITimeout     time.Duration
}

// UsesSQLite reports whether records are persisted to a SQLite file rather
// than held in memory.
func (c *Config) UsesSQLite() bool {
	return c.DBPath != ""
}

// HasGeminiKey reports whether the assistant can be enabled.
func (c *Config) HasGeminiKey() bool {
	return c.GeminiAPIKey != ""
}

// Load reads configuration from environment variables and returns a validated Config.
// Every variable is optional. Defaults: PINVAULT_LISTEN_ADDR (127.0.0.1:8080),
// PINVAULT_DB_PATH (empty, in-memory store), PINVAULT_UNLOCK_PIN (1234),
// PINVAULT_SEED_DEMO (true), PINVAULT_GEMINI_MODEL (gemini-2.5-flash-preview-05-20),
// PINVAULT_GEMINI_BASE_URL (https://generativelanguage.googleapis.com),
// PINVAULT_AI_TIMEOUT (30s). PINVAULT_GEMINI_API_KEY has no default; without it
// smart search and password analysis report an error message.
func Load() (*Config, error) {
	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("PINVAULT_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	dbPath := os.Getenv("PINVAULT_DB_PATH")

	pin := "1234"
	if v, ok := os.LookupEnv("PINVAULT_UNLOCK_PIN"); ok {
		if !isFourDigits(v) {
			return nil, errors.New("PINVAULT_UNLOCK_PIN must be exactly 4 digits")
		}
		pin = v
	}

	seedDemo := true
	if v, ok := os.LookupEnv("PINVAULT_SEED_DEMO"); ok {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("PINVAULT_SEED_DEMO has invalid boolean %q: %w", v, err)
		}
		seedDemo = parsed
	}

	model := "gemini-2.5-flash-preview-05-20"
	if v, ok := os.LookupEnv("PINVAULT_GEMINI_MODEL"); ok && v != "" {
		model = v
	}

	baseURL := "https://generativelanguage.googleapis.com"
	if v, ok := os.LookupEnv("PINVAULT_GEMINI_BASE_URL"); ok && v != "" {
		baseURL = v
	}

	aiTimeout := 30 * time.Second
	if v, ok := os.LookupEnv("PINVAULT_AI_TIMEOUT"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("PINVAULT_AI_TIMEOUT has invalid duration %q: %w", v, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("PINVAULT_AI_TIMEOUT must be positive, got %s", parsed)
		}
		aiTimeout = parsed
	}

	return &Config{
		ListenAddr:    listenAddr,
		DBPath:        dbPath,
		UnlockPIN:     pin,
		SeedDemo:      seedDemo,
		GeminiAPIKey:  os.Getenv("PINVAULT_GEMINI_API_KEY"),
		GeminiModel:   model,
		GeminiBaseURL: baseURL,
		AITimeout:     aiTimeout,
	}, nil
}

func isFourDigits(s string) bool {
	if len(s) != 4 {
		return false
	}
	for i := range len(s) {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
