package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config captures runtime configuration sourced from environment variables.
type Config struct {
	Environment  string
	HTTPPort     string
	DatabasePath string

	// VelocityThreshold is the minimum successful-transaction count per hour
	// that produces a TXN_VELOCITY_1H signal.
	VelocityThreshold int

	// PipelineCron, when non-empty, schedules periodic pipeline runs
	// (signal generation followed by decisioning).
	PipelineCron string

	// APISecret signs and verifies bearer tokens for the pipeline trigger
	// endpoints. Empty leaves those endpoints unauthenticated (dev mode).
	APISecret string

	// AlertURLs are shoutrrr destinations notified when a BLOCK decision is
	// persisted.
	AlertURLs []string
}

// Load reads env vars and falls back to defaults so the server can boot with zero configuration.
// A .env file in the working directory is applied first when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Environment:       getEnv("AEGIS_ENV", "development"),
		HTTPPort:          getEnv("AEGIS_HTTP_PORT", "8080"),
		DatabasePath:      getEnv("AEGIS_DB_PATH", filepath.Join("data", "aegis.db")),
		VelocityThreshold: getEnvInt("AEGIS_VELOCITY_THRESHOLD", 5),
		PipelineCron:      getEnv("AEGIS_PIPELINE_CRON", ""),
		APISecret:         getEnv("AEGIS_API_SECRET", ""),
		AlertURLs:         splitList(getEnv("AEGIS_ALERT_URLS", "")),
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		return Config{}, fmt.Errorf("ensure data directory: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}

	return fallback
}

func splitList(val string) []string {
	if val == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(val, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
