// Package config loads octave's YAML configuration file and applies
// OCTAVE_* environment overrides.
package config

import "time"

// DefaultPath is the configuration file read when --config is not given.
// A missing default file is not an error.
const DefaultPath = ".octave.yaml"

// Config is the root configuration.
type Config struct {
	Schemas    SchemasConfig    `yaml:"schemas"`
	Validation ValidationConfig `yaml:"validation"`
	Repair     RepairConfig     `yaml:"repair"`
	Create     CreateConfig     `yaml:"create"`
	Store      StoreConfig      `yaml:"store"`
	Logging    LoggingConfig    `yaml:"logging"`
	Watch      WatchConfig      `yaml:"watch"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// SchemasConfig lists directories of schema definition files.
type SchemasConfig struct {
	// Dirs are loaded in order; later definitions replace earlier ones
	// with the same name.
	Dirs []string `yaml:"dirs"`
}

// ValidationConfig controls validation defaults.
type ValidationConfig struct {
	// Strict rejects fields the schema does not declare.
	Strict bool `yaml:"strict"`
}

// RepairConfig controls repair defaults.
type RepairConfig struct {
	// Fix applies repair-tier fixes instead of only suggesting them.
	Fix bool `yaml:"fix"`
}

// CreateConfig controls where create and amend may write.
type CreateConfig struct {
	AllowedExtensions []string `yaml:"allowed_extensions"`
}

// StoreConfig locates the revision ledger.
type StoreConfig struct {
	// Path of the SQLite database. Empty disables the ledger.
	Path string `yaml:"path"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// WatchConfig controls the directory watcher.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// MetricsConfig controls the Prometheus endpoint served by long-running
// commands.
type MetricsConfig struct {
	// Addr is the listen address for /metrics, e.g. ":9464". Empty disables it.
	Addr string `yaml:"addr"`
}
