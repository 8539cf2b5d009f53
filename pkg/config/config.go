// Package config loads application configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv   string
	LogLevel string

	// Reasoning fallback service
	ReasoningURL              string
	ReasoningTimeout          time.Duration
	ReasoningFailureThreshold int

	// Scheduling defaults
	WorkDayStartMinute int
	WorkDayEndMinute   int
	SlotStepMinutes    int
}

// Load loads configuration from environment variables. A .env file is
// honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:                    getEnv("APP_ENV", "development"),
		LogLevel:                  getEnv("LOG_LEVEL", "info"),
		ReasoningURL:              getEnv("REASONING_URL", ""),
		ReasoningTimeout:          getEnvDuration("REASONING_TIMEOUT", 10*time.Second),
		ReasoningFailureThreshold: getEnvInt("REASONING_FAILURE_THRESHOLD", 3),
		WorkDayStartMinute:        getEnvInt("WORK_DAY_START_MINUTE", 9*60),
		WorkDayEndMinute:          getEnvInt("WORK_DAY_END_MINUTE", 17*60),
		SlotStepMinutes:           getEnvInt("SLOT_STEP_MINUTES", 30),
	}
	return cfg, nil
}

// IsDevelopment reports whether the app runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
