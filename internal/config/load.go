package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// Load reads path, then applies environment overrides and validates the
// result. When required is false a missing file yields the defaults.
//
// The loading sequence is:
// 1. Load YAML from file (or defaults)
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func Load(path string, required bool) (*Config, error) {
	cfg, err := LoadConfig(path)
	if errors.Is(err, fs.ErrNotExist) && !required {
		cfg, err = Default(), nil
	}
	if err != nil {
		return nil, err
	}

	ApplyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}
	return cfg, nil
}

// ApplyEnvOverrides applies OCTAVE_* environment variables. Unparseable
// booleans and durations are ignored.
func ApplyEnvOverrides(cfg *Config) {
	if val := os.Getenv("OCTAVE_SCHEMA_DIRS"); val != "" {
		cfg.Schemas.Dirs = filepath.SplitList(val)
	}
	if val := os.Getenv("OCTAVE_STRICT"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Validation.Strict = b
		}
	}
	if val := os.Getenv("OCTAVE_FIX"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Repair.Fix = b
		}
	}
	if val, ok := os.LookupEnv("OCTAVE_STORE_PATH"); ok {
		cfg.Store.Path = val
	}
	if val := os.Getenv("OCTAVE_LOG_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("OCTAVE_LOG_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}
	if val, ok := os.LookupEnv("OCTAVE_METRICS_ADDR"); ok {
		cfg.Metrics.Addr = val
	}
	if val := os.Getenv("OCTAVE_WATCH_DEBOUNCE"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Watch.Debounce = d
		}
	}
}
