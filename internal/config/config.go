package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
)

// Config keeps runtime settings for the server.
type Config struct {
	Port              int
	DatabasePath      string
	LogLevel          slog.Level
	ReconcileInterval time.Duration
}

// Address returns the HTTP listen address.
func (c Config) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate checks the loaded configuration.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.DatabasePath, validation.Required),
	)
}

// Load reads configuration from the environment (and an optional .env file)
// with sane defaults.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:              parsePort(strings.TrimSpace(os.Getenv("PORT"))),
		DatabasePath:      strings.TrimSpace(os.Getenv("DATABASE_PATH")),
		LogLevel:          parseLevel(strings.TrimSpace(os.Getenv("LOG_LEVEL"))),
		ReconcileInterval: parseInterval(strings.TrimSpace(os.Getenv("RECONCILE_INTERVAL_HOURS"))),
	}

	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = "allswell.db"
	}
	if cfg.ReconcileInterval == 0 {
		cfg.ReconcileInterval = 6 * time.Hour
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func parsePort(raw string) int {
	if raw == "" {
		return 0
	}
	port, err := strconv.Atoi(raw)
	if err != nil || port < 0 {
		return 0
	}
	return port
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(raw) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseInterval(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	hours, err := time.ParseDuration(raw + "h")
	if err != nil || hours <= 0 {
		return 0
	}
	return hours
}
