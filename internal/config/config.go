// Package config contains everything related to configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration. Per-user timer preferences
// live in the settings table; this is only process-level wiring.
type Config struct {
	DatabasePath string
	StateDir     string // session snapshots, cached identity
	LogPath      string
	TickInterval time.Duration
}

const defaultTickInterval = time.Second

// Load reads configuration from a .env file and environment variables.
func Load() (*Config, error) {
	for _, path := range envPaths() {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	cfg := &Config{
		DatabasePath: getEnvString("STUDYBOOST_DB_PATH", defaultDatabasePath()),
		StateDir:     getEnvString("STUDYBOOST_STATE_DIR", defaultStateDir()),
		LogPath:      getEnvString("STUDYBOOST_LOG_PATH", defaultLogPath()),
		TickInterval: getEnvDuration("STUDYBOOST_TICK_INTERVAL", defaultTickInterval),
	}

	if cfg.TickInterval <= 0 {
		return nil, fmt.Errorf("tick interval must be positive, got %s", cfg.TickInterval)
	}

	for _, dir := range []string{filepath.Dir(cfg.DatabasePath), cfg.StateDir, filepath.Dir(cfg.LogPath)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return cfg, nil
}

func envPaths() []string {
	var paths []string
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}
	if cfgDir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(cfgDir, "studyboost", ".env"))
	}
	return paths
}

func defaultDatabasePath() string {
	cfgDir, err := os.UserConfigDir()
	if err != nil {
		return "studyboost.db"
	}
	return filepath.Join(cfgDir, "studyboost", "studyboost.db")
}

func defaultStateDir() string {
	cfgDir, err := os.UserConfigDir()
	if err != nil {
		return "state"
	}
	return filepath.Join(cfgDir, "studyboost", "state")
}

func defaultLogPath() string {
	cfgDir, err := os.UserConfigDir()
	if err != nil {
		return "studyboost.log"
	}
	return filepath.Join(cfgDir, "studyboost", "studyboost.log")
}

func getEnvString(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultValue
	}
	return d
}
