// Package config provides application configuration loading from environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Default sweep cadence and bill reminder lead time.
const (
	DefaultSweepInterval    = 30 * time.Minute
	DefaultReminderLeadDays = 3
)

// Config holds all configuration for the application.
type Config struct {
	DatabaseURL      string
	LogLevel         string
	Timezone         string
	SweepInterval    time.Duration
	ReminderLeadDays int
	SweepConcurrency int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		LogLevel:         os.Getenv("LOG_LEVEL"),
		SweepInterval:    DefaultSweepInterval,
		ReminderLeadDays: DefaultReminderLeadDays,
		SweepConcurrency: 4,
	}

	cfg.Timezone = "UTC"
	if tz := os.Getenv("TIMEZONE"); tz != "" {
		if _, err := time.LoadLocation(tz); err == nil {
			cfg.Timezone = tz
		}
	}

	if intervalStr := os.Getenv("SWEEP_INTERVAL"); intervalStr != "" {
		if d, err := time.ParseDuration(intervalStr); err == nil && d > 0 {
			cfg.SweepInterval = d
		}
	}

	if leadStr := os.Getenv("REMINDER_LEAD_DAYS"); leadStr != "" {
		if n, err := strconv.Atoi(leadStr); err == nil && n > 0 {
			cfg.ReminderLeadDays = n
		}
	}

	if concStr := os.Getenv("SWEEP_CONCURRENCY"); concStr != "" {
		if n, err := strconv.Atoi(concStr); err == nil && n > 0 {
			cfg.SweepConcurrency = n
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks that all required configuration is present.
func (c *Config) validate() error {
	var errs []string

	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// Location resolves the configured timezone. Engine operations use this
// as the user's local zone for month boundaries and reminder instants.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
