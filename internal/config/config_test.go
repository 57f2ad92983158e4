package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_PATH", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("RECONCILE_INTERVAL_HOURS", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "allswell.db", cfg.DatabasePath)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, 6*time.Hour, cfg.ReconcileInterval)
	assert.Equal(t, ":8080", cfg.Address())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_PATH", "/tmp/planner.db")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("RECONCILE_INTERVAL_HOURS", "12")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "/tmp/planner.db", cfg.DatabasePath)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 12*time.Hour, cfg.ReconcileInterval)
}

func TestLoadFallsBackOnBadValues(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	t.Setenv("DATABASE_PATH", "")
	t.Setenv("LOG_LEVEL", "verbose")
	t.Setenv("RECONCILE_INTERVAL_HOURS", "-3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, 6*time.Hour, cfg.ReconcileInterval)
}

func TestValidateRejectsBadPort(t *testing.T) {
	cfg := Config{Port: 70000, DatabasePath: "x.db"}
	assert.Error(t, cfg.Validate())

	cfg = Config{Port: 8080}
	assert.Error(t, cfg.Validate(), "database path is required")
}
