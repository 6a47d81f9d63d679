package configloader

import (
	"fmt"
	"strings"

	"github.com/dholab/gitmilk/pkg/config"
	"github.com/dholab/gitmilk/pkg/history"
	"github.com/dholab/gitmilk/pkg/tally"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Field is the path to the invalid field (e.g., "history.dsn").
	Field string

	// Value is the invalid value.
	Value any

	// Message describes the validation error.
	Message string

	// FilePath is the config file containing the error (if known).
	FilePath string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string

	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	parts = append(parts, e.Message)

	return strings.Join(parts, ": ")
}

// Unwrap lets callers match validation failures with errors.Is(err, ErrConfig).
func (e *ValidationError) Unwrap() error {
	return ErrConfig
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	// Errors are validation failures that prevent loading.
	Errors []ValidationError

	// Warnings are non-fatal issues.
	Warnings []ValidationError
}

// Valid returns true if there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// HasWarnings returns true if there are any warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// knownLogLevels lists valid log_level values.
//
//nolint:gochecknoglobals // Read-only lookup table.
var knownLogLevels = map[string]bool{
	"debug":   true,
	"info":    true,
	"warn":    true,
	"warning": true,
	"error":   true,
}

// Validate checks a configuration for errors and warnings.
func Validate(cfg *config.Config) *ValidationResult {
	result := &ValidationResult{}
	if cfg == nil {
		return result
	}

	if _, err := tally.ParseCountPolicy(cfg.CountPolicy); err != nil {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "count_policy",
			Value:   cfg.CountPolicy,
			Message: err.Error(),
		})
	}

	if _, err := tally.ParseJoinAnchor(cfg.JoinAnchor); err != nil {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "join_anchor",
			Value:   cfg.JoinAnchor,
			Message: err.Error(),
		})
	}

	if cfg.DaysPrevious != nil && *cfg.DaysPrevious < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "days_previous",
			Value:   *cfg.DaysPrevious,
			Message: "days_previous must be >= 0",
		})
	}

	if cfg.Format != "" && !cfg.Format.IsValid() {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "format",
			Value:   cfg.Format,
			Message: fmt.Sprintf("invalid format %q; must be one of: tsv, markdown, json, table", cfg.Format),
		})
	}

	if cfg.LogLevel != "" && !knownLogLevels[strings.ToLower(cfg.LogLevel)] {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "log_level",
			Value:   cfg.LogLevel,
			Message: fmt.Sprintf("invalid log level %q; must be one of: debug, info, warn, error", cfg.LogLevel),
		})
	}

	if cfg.History.DSN != "" {
		if _, _, err := history.ParseDSN(cfg.History.DSN); err != nil {
			result.Errors = append(result.Errors, ValidationError{
				Field:   "history.dsn",
				Value:   cfg.History.DSN,
				Message: err.Error(),
			})
		}
	}

	if cfg.Splice.StartHeading != "" && cfg.Splice.StartHeading == cfg.Splice.EndHeading {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "splice.end_heading",
			Value:   cfg.Splice.EndHeading,
			Message: "end heading must differ from start heading",
		})
	}

	if cfg.AssetsDir == "" {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "assets_dir",
			Message: "assets_dir is empty; normalize will resolve asset files against the working directory",
		})
	}

	return result
}

// ValidateWithFile validates configuration and includes file path in errors.
func ValidateWithFile(cfg *config.Config, filePath string) *ValidationResult {
	result := Validate(cfg)

	for i := range result.Errors {
		result.Errors[i].FilePath = filePath
	}
	for i := range result.Warnings {
		result.Warnings[i].FilePath = filePath
	}

	return result
}
