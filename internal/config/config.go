// Package config reads runtime settings from environment variables,
// optionally seeded from a .env file.
package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/tudu-app/tudu/internal/api"
)

// Config aggregates all runtime settings of the client.
type Config struct {
	ServerURL string
	Theme     string
	Logger    LoggerConfig
}

type LoggerConfig struct {
	Level string
	File  string // empty disables file logging
}

// Load reads configuration from environment variables (optionally
// .env) and applies defaults so the client can run unconfigured
// against a local server.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	logFile := os.Getenv("TUDU_LOG_FILE")
	if logFile == "" {
		// Stdout belongs to the TUI, so logs go to a file by default.
		if home, err := os.UserHomeDir(); err == nil {
			logFile = filepath.Join(home, ".tudu", "tudu.log")
		}
	}

	return &Config{
		ServerURL: getString("TUDU_SERVER", api.DefaultEndpoint),
		Theme:     getString("TUDU_THEME", "classic"),
		Logger: LoggerConfig{
			Level: getString("TUDU_LOG_LEVEL", "info"),
			File:  logFile,
		},
	}, nil
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
