package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/robfig/cron/v3"
)

// ErrEnginePathMissing is matched by a ValidationError when an engine path
// is not configured.
var ErrEnginePathMissing = errors.New("engine path missing")

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "engines.engine1.path").
	Field string

	// Message is a human-readable error message.
	Message string

	// Err is a sentinel the field error matches, if any.
	Err error
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
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

// Is reports whether any field error matches target.
func (e ValidationError) Is(target error) bool {
	for _, fe := range e.Errors {
		if fe.Err != nil && fe.Err == target {
			return true
		}
	}
	return false
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateEngine("engines.engine1", &cfg.Engines.Engine1)...)
	errs = append(errs, validateEngine("engines.engine2", &cfg.Engines.Engine2)...)
	errs = append(errs, validateSwitch(&cfg.Switch)...)
	errs = append(errs, validateLogging(&cfg.Logging)...)
	errs = append(errs, validateSupervisor(&cfg.Supervisor)...)
	errs = append(errs, validateMetrics(&cfg.Metrics)...)
	errs = append(errs, validateJournal(&cfg.Journal)...)
	errs = append(errs, validateTracing(&cfg.Tracing)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// CheckEngines verifies that both engine executables exist. It is separate
// from Validate so configuration can be checked on a machine without the
// engines installed.
func CheckEngines(cfg *Config) error {
	var errs []FieldError
	engines := []struct {
		field string
		path  string
	}{
		{"engines.engine1.path", cfg.Engines.Engine1.Path},
		{"engines.engine2.path", cfg.Engines.Engine2.Path},
	}
	for _, eng := range engines {
		if eng.path == "" {
			continue
		}
		info, err := os.Stat(eng.path)
		switch {
		case err != nil:
			errs = append(errs, FieldError{Field: eng.field, Message: err.Error()})
		case info.IsDir():
			errs = append(errs, FieldError{Field: eng.field, Message: fmt.Sprintf("%q is a directory", eng.path)})
		}
	}

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateEngine(prefix string, cfg *EngineConfig) []FieldError {
	var errs []FieldError

	if strings.TrimSpace(cfg.Path) == "" {
		errs = append(errs, FieldError{
			Field:   prefix + ".path",
			Message: "engine path is required",
			Err:     ErrEnginePathMissing,
		})
	}

	for name := range cfg.Options {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, FieldError{
				Field:   prefix + ".options",
				Message: "option name must not be empty",
			})
		}
	}

	return errs
}

func validateSwitch(cfg *SwitchConfig) []FieldError {
	var errs []FieldError

	if cfg.PieceValue < 0 {
		errs = append(errs, FieldError{
			Field:   "switch.piece_value",
			Message: fmt.Sprintf("must be non-negative, got %d", cfg.PieceValue),
		})
	}
	if cfg.MoveNumber < 0 {
		errs = append(errs, FieldError{
			Field:   "switch.move_number",
			Message: fmt.Sprintf("must be non-negative, got %d", cfg.MoveNumber),
		})
	}

	return errs
}

func validateLogging(cfg *LoggingConfig) []FieldError {
	var errs []FieldError

	switch strings.ToLower(cfg.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "logging.level",
			Message: fmt.Sprintf("must be one of debug, info, warn, error; got %q", cfg.Level),
		})
	}

	switch strings.ToLower(cfg.Format) {
	case "text", "json":
	default:
		errs = append(errs, FieldError{
			Field:   "logging.format",
			Message: fmt.Sprintf("must be text or json, got %q", cfg.Format),
		})
	}

	return errs
}

func validateSupervisor(cfg *SupervisorConfig) []FieldError {
	var errs []FieldError

	if cfg.QueueSize < 1 {
		errs = append(errs, FieldError{
			Field:   "supervisor.queue_size",
			Message: fmt.Sprintf("must be at least 1, got %d", cfg.QueueSize),
		})
	}

	timeouts := []struct {
		field string
		value int64
	}{
		{"supervisor.handshake_timeout", int64(cfg.HandshakeTimeout)},
		{"supervisor.ready_timeout", int64(cfg.ReadyTimeout)},
		{"supervisor.stop_timeout", int64(cfg.StopTimeout)},
		{"supervisor.quit_timeout", int64(cfg.QuitTimeout)},
	}
	for _, t := range timeouts {
		if t.value < 0 {
			errs = append(errs, FieldError{Field: t.field, Message: "must not be negative"})
		}
	}

	return errs
}

func validateMetrics(cfg *MetricsConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress != "" {
		if _, _, err := net.SplitHostPort(cfg.ListenAddress); err != nil {
			errs = append(errs, FieldError{
				Field:   "metrics.listen_address",
				Message: fmt.Sprintf("invalid address %q: %v", cfg.ListenAddress, err),
			})
		}
	}
	if !strings.HasPrefix(cfg.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "metrics.path",
			Message: fmt.Sprintf("must start with /, got %q", cfg.Path),
		})
	}

	return errs
}

func validateJournal(cfg *JournalConfig) []FieldError {
	var errs []FieldError

	switch cfg.Backend {
	case "sqlite":
		if cfg.SQLite.Path == "" {
			errs = append(errs, FieldError{
				Field:   "journal.sqlite.path",
				Message: "path is required for the sqlite backend",
			})
		}
	case "memory":
	default:
		errs = append(errs, FieldError{
			Field:   "journal.backend",
			Message: fmt.Sprintf("must be sqlite or memory, got %q", cfg.Backend),
		})
	}

	if cfg.AsyncBuffer < 1 {
		errs = append(errs, FieldError{
			Field:   "journal.async_buffer",
			Message: fmt.Sprintf("must be at least 1, got %d", cfg.AsyncBuffer),
		})
	}
	if cfg.Retention.Days < 0 {
		errs = append(errs, FieldError{
			Field:   "journal.retention.days",
			Message: fmt.Sprintf("must be non-negative, got %d", cfg.Retention.Days),
		})
	}
	if cfg.Retention.MaxRecords < 0 {
		errs = append(errs, FieldError{
			Field:   "journal.retention.max_records",
			Message: fmt.Sprintf("must be non-negative, got %d", cfg.Retention.MaxRecords),
		})
	}
	if _, err := cron.ParseStandard(cfg.Retention.PruneSchedule); err != nil {
		errs = append(errs, FieldError{
			Field:   "journal.retention.prune_schedule",
			Message: fmt.Sprintf("invalid cron expression %q: %v", cfg.Retention.PruneSchedule, err),
		})
	}

	return errs
}

func validateTracing(cfg *TracingConfig) []FieldError {
	if !cfg.Enabled {
		return nil
	}

	var errs []FieldError
	if _, _, err := net.SplitHostPort(cfg.Endpoint); err != nil {
		errs = append(errs, FieldError{
			Field:   "tracing.endpoint",
			Message: fmt.Sprintf("invalid address %q: %v", cfg.Endpoint, err),
		})
	}
	switch cfg.Sampler {
	case "always", "never":
	case "ratio":
		if cfg.SampleRatio < 0 || cfg.SampleRatio > 1 {
			errs = append(errs, FieldError{
				Field:   "tracing.sample_ratio",
				Message: fmt.Sprintf("must be between 0 and 1, got %g", cfg.SampleRatio),
			})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "tracing.sampler",
			Message: fmt.Sprintf("must be always, never or ratio, got %q", cfg.Sampler),
		})
	}

	return errs
}
