package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvOverrides holds settings that can be set from the environment.
// Unset variables leave the loaded value alone.
type EnvOverrides struct {
	Workers       int           `env:"MZPATCH_WORKERS"`
	PluginWorkers int           `env:"MZPATCH_PLUGIN_WORKERS"`
	Timeout       time.Duration `env:"MZPATCH_TIMEOUT"`
	HistoryDB     string        `env:"MZPATCH_DB"`
	LogLevel      string        `env:"MZPATCH_LOG_LEVEL"`
	FieldsFile    string        `env:"MZPATCH_FIELDS"`
}

// ParseEnv loads overrides from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// ApplyEnv applies MZPATCH_* environment variables on top of cfg.
func ApplyEnv(cfg *Config) error {
	var o EnvOverrides
	if err := ParseEnv(&o); err != nil {
		return err
	}

	if o.Workers > 0 {
		cfg.Workers = o.Workers
	}
	if o.PluginWorkers > 0 {
		cfg.PluginWorkers = o.PluginWorkers
	}
	if o.Timeout > 0 {
		cfg.Timeout = o.Timeout
	}
	if o.HistoryDB != "" {
		cfg.HistoryDB = o.HistoryDB
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
	if o.FieldsFile != "" {
		cfg.FieldsFile = o.FieldsFile
	}
	return nil
}
