// Package config holds the ambient process settings. They tune logging and
// lifecycle timeouts only; application identity and windows come from the
// runtime context, never from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// LogLevel follows zerolog level names (trace, debug, info, warn, error).
	LogLevel string `env:"SKIFF_LOG_LEVEL" envDefault:"info"`
	// LogJSON switches from console output to one JSON object per entry.
	LogJSON bool `env:"SKIFF_LOG_JSON" envDefault:"false"`
	// StartTimeout bounds capability module startup before the run loop.
	StartTimeout time.Duration `env:"SKIFF_START_TIMEOUT" envDefault:"15s"`
	// StopTimeout bounds capability module teardown after the run loop ends.
	StopTimeout time.Duration `env:"SKIFF_STOP_TIMEOUT" envDefault:"10s"`
}

// Load reads the SKIFF_* environment variables, applying defaults for
// anything unset.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
