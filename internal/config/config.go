// Package config handles modeler configuration and environment loading.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultBatchLimit bounds concurrent syntheses when MODELER_BATCH_LIMIT is unset.
const DefaultBatchLimit = 4

// Config holds the settings of the modeler and its CLI.
type Config struct {
	LogLevel         string // log level: debug, info, warn, error (default "info")
	GeoConfigPath    string // geo role definitions (.properties or .yaml); empty disables geo roles
	MetastorePath    string // SQLite file holding shared dimensions; empty keeps them in memory
	NativeDataSource bool   // publish models with a NATIVE data source instead of JNDI
	BatchLimit       int    // concurrent syntheses in a batch

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		LogLevel:      strings.TrimSpace(os.Getenv("LOG_LEVEL")),
		GeoConfigPath: strings.TrimSpace(os.Getenv("GEO_CONFIG_PATH")),
		MetastorePath: strings.TrimSpace(os.Getenv("METASTORE_PATH")),
		BatchLimit:    DefaultBatchLimit,
	}

	switch strings.ToLower(cfg.LogLevel) {
	case "":
		cfg.LogLevel = "info"
	case "debug", "info", "warn", "warning", "error":
	default:
		cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("unknown LOG_LEVEL %q, using info", cfg.LogLevel))
		cfg.LogLevel = "info"
	}

	native, err := parseBoolEnv("MODELER_NATIVE_DATASOURCE", false)
	if err != nil {
		return nil, err
	}
	cfg.NativeDataSource = native

	if v := strings.TrimSpace(os.Getenv("MODELER_BATCH_LIMIT")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			cfg.Warnings = append(cfg.Warnings,
				fmt.Sprintf("invalid MODELER_BATCH_LIMIT %q, using %d", v, DefaultBatchLimit))
		} else {
			cfg.BatchLimit = n
		}
	}

	if cfg.MetastorePath == "" {
		cfg.Warnings = append(cfg.Warnings, "METASTORE_PATH not set, shared dimensions are kept in memory")
	}

	return cfg, nil
}

func parseBoolEnv(key string, defaultVal bool) (bool, error) {
	switch strings.TrimSpace(strings.ToLower(os.Getenv(key))) {
	case "":
		return defaultVal, nil
	case "0", "false", "no", "off":
		return false, nil
	case "1", "true", "yes", "on":
		return true, nil
	}
	return false, fmt.Errorf("%s must be a boolean, got %q", key, os.Getenv(key))
}

// LoadDotEnv reads .env files and sets any variables not already in the
// environment. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}
