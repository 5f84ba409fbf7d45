// Package config loads process configuration for the serve command from
// environment variables, with an optional .env file for local development.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ServeConfig configures the HTTP serving mode.
type ServeConfig struct {
	Addr            string        `env:"DETENT_ADDR" envDefault:":8080"`
	MetricsPath     string        `env:"DETENT_METRICS_PATH" envDefault:"/metrics"`
	LogLevel        string        `env:"DETENT_LOG_LEVEL" envDefault:"info"`
	ShutdownTimeout time.Duration `env:"DETENT_SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// LoadServe reads ServeConfig from the environment.
func LoadServe() (ServeConfig, error) {
	// Ignore errors - the .env file might not exist and that's ok.
	_ = godotenv.Load()

	var cfg ServeConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}
