// Package config loads runtime configuration from the environment, with an
// optional .env file for deployment overrides.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds every runtime setting of the service.
type Config struct {
	Host string
	Port int

	DataDir string
	DBPath  string

	LogLevel  string
	LogFormat string

	// LogoPath is the image stamped into document headers; empty draws the
	// text monogram instead.
	LogoPath string

	ArtifactsEnabled bool
	ArtifactsDir     string
	// ArtifactsBaseURL prefixes stored artifact URLs returned to clients.
	ArtifactsBaseURL string

	MetricsEnabled bool
	MetricsPort    int
}

// Load reads configuration. A .env in the data directory is applied first,
// then one in the working directory, then plain environment variables win.
func Load() (*Config, error) {
	dataDir := "/var/lib/certify"
	if dir := os.Getenv("CERTIFY_DATA_DIR"); dir != "" {
		dataDir = dir
	}

	envFile := filepath.Join(dataDir, ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			log.Warn().Err(err).Str("file", envFile).Msg("Failed to load .env file")
		} else {
			log.Info().Str("file", envFile).Msg("Loaded .env file for deployment overrides")
		}
	}
	// Also try the working directory for development.
	if err := godotenv.Load(); err == nil {
		log.Info().Msg("Loaded configuration from .env in current directory")
	}

	// Re-read after godotenv, it may have changed.
	if dir := os.Getenv("CERTIFY_DATA_DIR"); dir != "" {
		dataDir = dir
	}

	cfg := &Config{
		Host:             "0.0.0.0",
		Port:             7810,
		DataDir:          dataDir,
		DBPath:           filepath.Join(dataDir, "certify.db"),
		LogLevel:         "info",
		LogFormat:        "auto",
		ArtifactsEnabled: true,
		ArtifactsDir:     filepath.Join(dataDir, "artifacts"),
		ArtifactsBaseURL: "/artifacts",
		MetricsEnabled:   false,
		MetricsPort:      9810,
	}
	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overlays environment variables onto the current values. Called on
// initial load and again on reload.
func (c *Config) applyEnv() {
	if host := os.Getenv("CERTIFY_HOST"); host != "" {
		c.Host = host
	}
	if port := os.Getenv("CERTIFY_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil && p > 0 && p < 65536 {
			c.Port = p
		} else {
			log.Warn().Str("value", port).Msg("Invalid CERTIFY_PORT, keeping current")
		}
	}
	if path := os.Getenv("CERTIFY_DB_PATH"); path != "" {
		c.DBPath = path
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.LogLevel = level
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		c.LogFormat = format
	}
	if logo := os.Getenv("CERTIFY_LOGO_PATH"); logo != "" {
		c.LogoPath = logo
	}
	if v := os.Getenv("CERTIFY_ARTIFACTS_ENABLED"); v != "" {
		c.ArtifactsEnabled = parseBool(v, c.ArtifactsEnabled)
	}
	if dir := os.Getenv("CERTIFY_ARTIFACTS_DIR"); dir != "" {
		c.ArtifactsDir = dir
	}
	if base := os.Getenv("CERTIFY_ARTIFACTS_BASE_URL"); base != "" {
		c.ArtifactsBaseURL = strings.TrimRight(base, "/")
	}
	if v := os.Getenv("CERTIFY_METRICS_ENABLED"); v != "" {
		c.MetricsEnabled = parseBool(v, c.MetricsEnabled)
	}
	if port := os.Getenv("CERTIFY_METRICS_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil && p > 0 && p < 65536 {
			c.MetricsPort = p
		}
	}
}

// Reload re-applies the .env file and environment to pick up changed
// settings. Only values safe to change at runtime take effect; listeners
// keep their original addresses.
func (c *Config) Reload() {
	envFile := filepath.Join(c.DataDir, ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Overload(envFile); err != nil {
			log.Warn().Err(err).Str("file", envFile).Msg("Failed to reload .env file")
		}
	}
	c.applyEnv()
}

func parseBool(s string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return fallback
	}
}
