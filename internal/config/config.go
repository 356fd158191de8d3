// Package config loads process configuration from the environment,
// with github.com/joho/godotenv optionally layering in a local .env
// file for development the way most of the retrieval pack's services
// do, rather than a flag-driven or file-driven config system.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every environment-tunable setting the core and its
// adapters need: the three Reference Store DSNs, the curve refresh
// cadence, and optional S3 archival target.
type Config struct {
	ValidatedDSN       string
	PrimaryDSN         string
	SecondaryDSN       string
	CurveRefreshPeriod time.Duration
	CurveArchivePath   string // local path or s3://bucket/prefix; empty disables archival
	LogLevel           string
}

// Load reads .env (if present, silently ignored otherwise) then the
// process environment, applying defaults matching a local dev setup
// seeded from internal/refstore/testdata.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		ValidatedDSN:       getenv("BONDENGINE_VALIDATED_DSN", "file:validated.db?mode=rwc"),
		PrimaryDSN:         getenv("BONDENGINE_PRIMARY_DSN", "file:primary.db?mode=rwc"),
		SecondaryDSN:       getenv("BONDENGINE_SECONDARY_DSN", "file:secondary.db?mode=rwc"),
		CurveArchivePath:   os.Getenv("BONDENGINE_CURVE_ARCHIVE_PATH"),
		LogLevel:           getenv("BONDENGINE_LOG_LEVEL", "info"),
	}

	periodStr := getenv("BONDENGINE_CURVE_REFRESH_PERIOD", "1h")
	period, err := time.ParseDuration(periodStr)
	if err != nil {
		return Config{}, fmt.Errorf("config: invalid BONDENGINE_CURVE_REFRESH_PERIOD %q: %w", periodStr, err)
	}
	cfg.CurveRefreshPeriod = period

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// BoolEnv reads a boolean flag from the environment, returning fallback
// when the variable is unset or not a valid boolean.
func BoolEnv(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
