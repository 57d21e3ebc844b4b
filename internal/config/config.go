// Package config provides YAML-based tool configuration and the field
// schema that lists translatable fields per RPG Maker data file.
package config

import "time"

// Config contains the settings of the mzpatch tool itself.
// Patch bundles carry their own config.json; this is not it.
type Config struct {
	Workers       int           `yaml:"workers"`
	PluginWorkers int           `yaml:"plugin_workers"`
	Timeout       time.Duration `yaml:"timeout"`
	HistoryDB     string        `yaml:"history_db"`
	Backup        bool          `yaml:"backup"`
	LogLevel      string        `yaml:"log_level"`
	FieldsFile    string        `yaml:"fields_file"`
}

// FieldSchema lists the translatable fields of each data file kind.
type FieldSchema struct {
	Kinds []FileKind `yaml:"kinds"`
}

// FileKind describes one kind of data file, such as Actors.json or MapNNN.json.
type FileKind struct {
	Name   string      `yaml:"name"`
	Match  string      `yaml:"match"`
	Fields []FieldRule `yaml:"fields"`
	Events []string    `yaml:"events"`
}

// FieldRule selects string fields by a dotted pattern.
type FieldRule struct {
	Path string `yaml:"path"`
	Wrap bool   `yaml:"wrap"`
}
