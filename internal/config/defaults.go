package config

import "time"

// Default values for configuration fields.
const (
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
	DefaultWatchDebounce = 200 * time.Millisecond
)

// DefaultAllowedExtensions are the file extensions create and amend accept.
var DefaultAllowedExtensions = []string{".oct.md", ".octave", ".md"}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills unset fields.
func ApplyDefaults(cfg *Config) {
	if len(cfg.Create.AllowedExtensions) == 0 {
		cfg.Create.AllowedExtensions = append([]string(nil), DefaultAllowedExtensions...)
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = DefaultWatchDebounce
	}
}
