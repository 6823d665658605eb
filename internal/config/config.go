// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

// Package config loads adawallet defaults from the environment.
// Command-line flags override every value loaded here.
package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Prefix is prepended to every environment variable name.
const Prefix = "ADAWALLET"

// Config contains all configuration parameters for the application.
type Config struct {
	OutputDir string `envconfig:"OUTPUT_DIR" default:"."`
	Words     int    `envconfig:"WORDS" default:"24"`
	Language  string `envconfig:"LANGUAGE" default:"en"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogJSON   bool   `envconfig:"LOG_JSON" default:"false"`
}

// Load reads ADAWALLET_* variables and applies defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process(Prefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that envconfig cannot.
func (c *Config) Validate() error {
	switch c.Words {
	case 12, 15, 18, 21, 24:
	default:
		return fmt.Errorf("invalid %s_WORDS %d (must be 12, 15, 18, 21, or 24)", Prefix, c.Words)
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("%s_OUTPUT_DIR must not be empty", Prefix)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error", "off", "disabled", "none":
	default:
		return fmt.Errorf("invalid %s_LOG_LEVEL %q", Prefix, c.LogLevel)
	}
	return nil
}
