package config

import (
	"fmt"
	"log/slog"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "logging.level").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration. All validation errors are
// collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	for i, dir := range cfg.Schemas.Dirs {
		if strings.TrimSpace(dir) == "" {
			errs = append(errs, FieldError{Field: fmt.Sprintf("schemas.dirs[%d]", i), Message: "must not be empty"})
		}
	}

	if len(cfg.Create.AllowedExtensions) == 0 {
		errs = append(errs, FieldError{Field: "create.allowed_extensions", Message: "at least one extension is required"})
	}
	for i, ext := range cfg.Create.AllowedExtensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("create.allowed_extensions[%d]", i),
				Message: fmt.Sprintf("%q must start with '.'", ext),
			})
		}
	}

	if _, err := ParseLevel(cfg.Logging.Level); err != nil {
		errs = append(errs, FieldError{Field: "logging.level", Message: err.Error()})
	}
	switch cfg.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, FieldError{Field: "logging.format", Message: fmt.Sprintf("must be text or json, got %q", cfg.Logging.Format)})
	}

	if cfg.Watch.Debounce <= 0 {
		errs = append(errs, FieldError{Field: "watch.debounce", Message: "must be positive"})
	}

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

// ParseLevel maps a level name onto slog.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown level %q", s)
}
