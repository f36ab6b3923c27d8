// Package config loads trialcheck settings from the environment.
package config

import (
	"github.com/caarlos0/env/v10"
)

type Config struct {
	Environment string `env:"ENV" envDefault:"development"`
	Logging     struct {
		Level  string `env:"LOG_LEVEL"`
		Format string `env:"LOG_FORMAT" envDefault:"json"`
		Output string `env:"LOG_OUTPUT" envDefault:"stderr"`
	}
	Check struct {
		// Format is json, yaml or auto (pick by file extension).
		Format       string `env:"TRIALCHECK_FORMAT" envDefault:"auto"`
		CompleteOpen bool   `env:"TRIALCHECK_COMPLETE_OPEN" envDefault:"false"`
		Output       string `env:"TRIALCHECK_OUTPUT"`
		Metrics      bool   `env:"TRIALCHECK_METRICS" envDefault:"false"`
	}
}

func Load() (*Config, error) {
	cfg := &Config{}

	// Parse environment variables
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Set default logging level based on environment
	if cfg.Logging.Level == "" {
		if cfg.Environment == "development" {
			cfg.Logging.Level = "debug"
		} else {
			cfg.Logging.Level = "info"
		}
	}

	return cfg, nil
}
