package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// fileConfig is the optional TOML file named by CONFIG_FILE. Keys mirror the environment
// variables in lower case. The Telegram token is only read from the environment.
type fileConfig struct {
	HTTPAddr            string  `toml:"http_addr"`
	StoreDriver         string  `toml:"store_driver"`
	DatabaseURL         string  `toml:"database_url"`
	SimulateLatency     *bool   `toml:"simulate_latency"`
	ReportIntervalHours float64 `toml:"report_interval_hours"`
	ReportDailyAt       string  `toml:"report_daily_at"`
	LogLevel            string  `toml:"log_level"`
	LogJSON             *bool   `toml:"log_json"`
	ShutdownTimeout     string  `toml:"shutdown_timeout"`
}

// readFile decodes path into environment-style values. Unknown keys are an error.
func readFile(path string) (map[string]string, error) {
	var fc fileConfig
	md, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("read %s: unknown keys %s", path, strings.Join(keys, ", "))
	}

	values := map[string]string{
		"HTTP_ADDR":        fc.HTTPAddr,
		"STORE_DRIVER":     fc.StoreDriver,
		"DATABASE_URL":     fc.DatabaseURL,
		"REPORT_DAILY_AT":  fc.ReportDailyAt,
		"LOG_LEVEL":        fc.LogLevel,
		"SHUTDOWN_TIMEOUT": fc.ShutdownTimeout,
	}
	if fc.SimulateLatency != nil {
		values["SIMULATE_LATENCY"] = strconv.FormatBool(*fc.SimulateLatency)
	}
	if fc.LogJSON != nil {
		values["LOG_JSON"] = strconv.FormatBool(*fc.LogJSON)
	}
	if md.IsDefined("report_interval_hours") {
		values["REPORT_INTERVAL_HOURS"] = strconv.FormatFloat(fc.ReportIntervalHours, 'f', -1, 64)
	}
	return values, nil
}

// layered looks a key up in the environment first and falls back to file values.
func layered(getenv func(string) string, file map[string]string) func(string) string {
	return func(key string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return file[key]
	}
}
