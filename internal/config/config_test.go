package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads config from env", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/test")
		t.Setenv("LOG_LEVEL", "debug")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, "postgres://localhost/test", cfg.DatabaseURL)
		require.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("applies defaults", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/test")
		t.Setenv("TIMEZONE", "")
		t.Setenv("SWEEP_INTERVAL", "")
		t.Setenv("REMINDER_LEAD_DAYS", "")
		t.Setenv("SWEEP_CONCURRENCY", "")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, "UTC", cfg.Timezone)
		require.Equal(t, DefaultSweepInterval, cfg.SweepInterval)
		require.Equal(t, DefaultReminderLeadDays, cfg.ReminderLeadDays)
		require.Equal(t, 4, cfg.SweepConcurrency)
	})

	t.Run("fails without DATABASE_URL", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")

		_, err := Load()
		require.Error(t, err)
		require.Contains(t, err.Error(), "DATABASE_URL is required")
	})

	t.Run("parses sweep interval", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/test")
		t.Setenv("SWEEP_INTERVAL", "5m")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, 5*time.Minute, cfg.SweepInterval)
	})

	t.Run("rejects invalid sweep interval", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/test")
		t.Setenv("SWEEP_INTERVAL", "soon")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, DefaultSweepInterval, cfg.SweepInterval)
	})

	t.Run("rejects non-positive sweep interval", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/test")
		t.Setenv("SWEEP_INTERVAL", "-10m")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, DefaultSweepInterval, cfg.SweepInterval)
	})

	t.Run("parses reminder lead days", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/test")
		t.Setenv("REMINDER_LEAD_DAYS", "7")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, 7, cfg.ReminderLeadDays)
	})

	t.Run("parses sweep concurrency", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/test")
		t.Setenv("SWEEP_CONCURRENCY", "8")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, 8, cfg.SweepConcurrency)
	})

	t.Run("keeps a valid timezone", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/test")
		t.Setenv("TIMEZONE", "Asia/Singapore")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, "Asia/Singapore", cfg.Timezone)
		require.Equal(t, "Asia/Singapore", cfg.Location().String())
	})

	t.Run("falls back to UTC on bogus timezone", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/test")
		t.Setenv("TIMEZONE", "Mars/Olympus")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, "UTC", cfg.Timezone)
		require.Equal(t, time.UTC, cfg.Location())
	})
}
