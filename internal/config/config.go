package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Config keeps runtime settings for the API server, the bot and the scheduler.
type Config struct {
	HTTPAddr        string
	StoreDriver     string
	DatabaseURL     string
	SimulateLatency bool
	TelegramToken   string
	ReportInterval  time.Duration
	ReportDailyAt   string
	LogLevel        string
	LogJSON         bool
	ShutdownTimeout time.Duration
}

// BotEnabled reports whether a Telegram token was supplied.
func (c Config) BotEnabled() bool {
	return c.TelegramToken != ""
}

// ReportsEnabled reports whether a digest schedule is configured.
func (c Config) ReportsEnabled() bool {
	return c.ReportDailyAt != "" || c.ReportInterval > 0
}

// Load reads configuration from a .env file, if present, and the environment. When
// CONFIG_FILE names a TOML file its values apply to variables the environment leaves empty.
func Load() (Config, error) {
	_ = godotenv.Load()

	getenv := os.Getenv
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		values, err := readFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("CONFIG_FILE: %w", err)
		}
		getenv = layered(os.Getenv, values)
	}
	return FromEnv(getenv)
}

// FromEnv builds a Config from a lookup function. Empty variables take their defaults.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key string) string { return strings.TrimSpace(getenv(key)) }

	cfg := Config{
		HTTPAddr:        get("HTTP_ADDR"),
		StoreDriver:     strings.ToLower(get("STORE_DRIVER")),
		DatabaseURL:     get("DATABASE_URL"),
		SimulateLatency: true,
		TelegramToken:   get("TELEGRAM_TOKEN"),
		ReportDailyAt:   get("REPORT_DAILY_AT"),
		LogLevel:        strings.ToLower(get("LOG_LEVEL")),
		ShutdownTimeout: 10 * time.Second,
	}

	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "taskboard.db"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	switch cfg.StoreDriver {
	case "":
		cfg.StoreDriver = DriverMemory
	case DriverMemory, DriverSQLite:
	default:
		return cfg, fmt.Errorf("STORE_DRIVER: unknown driver %q, want memory or sqlite", cfg.StoreDriver)
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return cfg, fmt.Errorf("LOG_LEVEL: unknown level %q", cfg.LogLevel)
	}

	var err error
	if raw := get("SIMULATE_LATENCY"); raw != "" {
		if cfg.SimulateLatency, err = strconv.ParseBool(raw); err != nil {
			return cfg, fmt.Errorf("SIMULATE_LATENCY: %w", err)
		}
	}
	if raw := get("LOG_JSON"); raw != "" {
		if cfg.LogJSON, err = strconv.ParseBool(raw); err != nil {
			return cfg, fmt.Errorf("LOG_JSON: %w", err)
		}
	}
	if cfg.ReportInterval, err = parseInterval(get("REPORT_INTERVAL_HOURS")); err != nil {
		return cfg, fmt.Errorf("REPORT_INTERVAL_HOURS: %w", err)
	}
	if cfg.ReportDailyAt != "" {
		if _, err := time.Parse("15:04", cfg.ReportDailyAt); err != nil {
			return cfg, fmt.Errorf("REPORT_DAILY_AT: %q is not HH:MM", cfg.ReportDailyAt)
		}
	}
	if raw := get("SHUTDOWN_TIMEOUT"); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil || timeout <= 0 {
			return cfg, fmt.Errorf("SHUTDOWN_TIMEOUT: %q is not a positive duration", raw)
		}
		cfg.ShutdownTimeout = timeout
	}

	return cfg, nil
}

// parseInterval reads a number of hours, fractions allowed. Empty or zero disables reports.
func parseInterval(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	hours, err := time.ParseDuration(raw + "h")
	if err != nil || hours < 0 {
		return 0, fmt.Errorf("%q is not a number of hours", raw)
	}
	return hours, nil
}
