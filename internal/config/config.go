// Package config validates environment-driven configuration, following
// the teacher's getenv(key, default) idiom generalized with typed range
// validation in the style of the example corpus's ValidateEnv.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds every environment-tunable value spec.md §6 names, plus the
// ambient settings every deployment of this kind of service needs.
type Config struct {
	Port string

	MaxPeers              int
	MaxRooms              int
	UserTimeoutSec        int
	ConnectionTimeoutSec  int
	CleanupIntervalSec    int
	MonitoringIntervalSec int
	MaxAttempts           int
	MonitoringEnabled     bool

	Env            string
	LogLevel       string
	AllowedOrigins string

	// SnapshotPublishAddr, if non-empty, enables the Redis-backed
	// monitoring snapshot publisher (C9). Empty disables it.
	SnapshotPublishAddr    string
	SnapshotPublishChannel string
}

// Load reads and validates configuration from the process environment.
// It collects every problem found rather than failing on the first, the
// same way the richest config validator in the example corpus does.
func Load() (*Config, error) {
	var errs []string

	cfg := &Config{
		Port:           getenv("PORT", "8000"),
		Env:            getenv("GO_ENV", "production"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		AllowedOrigins: getenv("ALLOWED_ORIGINS", "*"),

		SnapshotPublishAddr:    getenv("SNAPSHOT_PUBLISH_ADDR", ""),
		SnapshotPublishChannel: getenv("SNAPSHOT_PUBLISH_CHANNEL", "operator:snapshot"),
	}

	cfg.MaxPeers = getenvInt("MAX_PEERS", 200, 1, 100_000, &errs)
	cfg.MaxRooms = getenvInt("MAX_ROOMS", 100, 1, 100_000, &errs)
	cfg.UserTimeoutSec = getenvInt("USER_TIMEOUT_SEC", 300, 1, 86_400, &errs)
	cfg.ConnectionTimeoutSec = getenvInt("CONNECTION_TIMEOUT_SEC", 30, 1, 3_600, &errs)
	cfg.CleanupIntervalSec = getenvInt("CLEANUP_INTERVAL_SEC", 60, 1, 3_600, &errs)
	cfg.MonitoringIntervalSec = getenvInt("MONITORING_INTERVAL_SEC", 30, 1, 3_600, &errs)
	cfg.MaxAttempts = getenvInt("MAX_ATTEMPTS", 3, 1, 1_000, &errs)
	cfg.MonitoringEnabled = getenv("MONITORING_ENABLED", "true") != "false"

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("PORT must be a valid port number between 1 and 65535 (got %q)", cfg.Port))
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("environment validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return cfg, nil
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func getenvInt(key string, def, min, max int, errs *[]string) int {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("%s must be an integer (got %q)", key, raw))
		return def
	}
	if v < min || v > max {
		*errs = append(*errs, fmt.Sprintf("%s must be between %d and %d (got %d)", key, min, max, v))
		return def
	}
	return v
}
