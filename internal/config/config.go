// Package config loads runtime configuration from the environment, with an
// optional .env file next to the binary for print-station installs.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// Config holds everything the client needs to reach the backend and drive
// the label printer. Keys mirror the station's historical config file.
type Config struct {
	SearchAPIURL    string `env:"SEARCH_API_URL,required"`
	LoginAPIURL     string `env:"LOGIN_API_URL,required"`
	LocationsAPIURL string `env:"LOCATIONS_API_URL,required"`

	// PrintAPIURL sends the queue to the remote print service. When
	// DataFilePath is set instead, labels are written locally for the
	// template-based printer.
	PrintAPIURL      string `env:"PRINT_API_URL"`
	DataFilePath     string `env:"DATA_FILE_PATH"`
	TemplateFilePath string `env:"TEMPLATE_FILE_PATH"`

	SessionDBPath string `env:"SESSION_DB_PATH" envDefault:"./data/session.db"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	MetricsAddr   string `env:"METRICS_ADDR"`

	HTTPTimeoutSeconds int `env:"HTTP_TIMEOUT_SECONDS" envDefault:"15"`
}

// HTTPTimeout returns the backend call timeout as a duration.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// Load reads an optional .env file, then parses the environment into a
// validated Config. A missing .env file is fine; missing required keys are
// not.
func Load(envFiles ...string) (*Config, error) {
	// Ignore load errors: environment variables set directly still win,
	// and a fresh install may not have written a .env yet.
	_ = godotenv.Load(envFiles...)

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.PrintAPIURL == "" && cfg.DataFilePath == "" {
		return nil, fmt.Errorf("either PRINT_API_URL or DATA_FILE_PATH must be set")
	}
	if cfg.HTTPTimeoutSeconds < 1 {
		return nil, fmt.Errorf("HTTP_TIMEOUT_SECONDS must be a positive integer, got %d", cfg.HTTPTimeoutSeconds)
	}

	return cfg, nil
}
