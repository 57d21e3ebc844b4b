package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/mzpatch.yaml
var defaultConfigYAML []byte

//go:embed defaults/fields.yaml
var defaultFieldsYAML []byte

// DefaultConfig returns the built-in tool configuration.
func DefaultConfig() Config {
	return Config{
		Workers:       0,
		PluginWorkers: 2,
		Timeout:       10 * time.Minute,
		HistoryDB:     "~/.mzpatch/history.db",
		Backup:        true,
		LogLevel:      "info",
	}
}

// DefaultFieldsYAML returns the embedded field schema source.
func DefaultFieldsYAML() []byte {
	return defaultFieldsYAML
}
