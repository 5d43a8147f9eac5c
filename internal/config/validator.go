package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidConfig is matched by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// FieldError describes a single invalid configuration field.
type FieldError struct {
	Field   string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("config error at %s: %s: %v", e.Field, e.Message, e.Cause)
	}
	return fmt.Sprintf("config error at %s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying error.
func (e *FieldError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrInvalidConfig or another FieldError.
func (e *FieldError) Is(target error) bool {
	if target == ErrInvalidConfig {
		return true
	}
	_, ok := target.(*FieldError)
	return ok
}

// NewFieldError creates a FieldError.
func NewFieldError(field, message string, cause error) *FieldError {
	return &FieldError{Field: field, Message: message, Cause: cause}
}

// ValidationErrors is a collection of field errors.
type ValidationErrors []*FieldError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "\n  %d. %s", i+1, err.Error())
	}
	return sb.String()
}

// Is reports whether target is ErrInvalidConfig.
func (e ValidationErrors) Is(target error) bool {
	return target == ErrInvalidConfig
}

// Validate checks cfg for values the proxy cannot run with.
func Validate(cfg *Config) error {
	if cfg == nil {
		return NewFieldError("", "configuration is nil", nil)
	}

	var errs ValidationErrors
	add := func(field, message string) {
		errs = append(errs, NewFieldError(field, message, nil))
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		add("server.port", fmt.Sprintf("must be between 1 and 65535, got %d", cfg.Server.Port))
	}

	if cfg.Upstream.BaseURL == "" {
		add("upstream.baseURL", "is required")
	} else if u, err := url.Parse(cfg.Upstream.BaseURL); err != nil || u.Host == "" ||
		(u.Scheme != "http" && u.Scheme != "https") {
		add("upstream.baseURL", "must be an absolute http(s) URL")
	}

	if cfg.Upstream.Timeout < 0 {
		add("upstream.timeout", "must not be negative")
	}

	if cfg.Upstream.MaxResponseBytes <= 0 {
		add("upstream.maxResponseBytes", "must be positive")
	}

	if cb := cfg.Upstream.CircuitBreaker; cb.Enabled {
		if cb.Threshold <= 0 {
			add("upstream.circuitBreaker.threshold", "must be positive")
		}
		if cb.Timeout <= 0 {
			add("upstream.circuitBreaker.timeout", "must be positive")
		}
	}

	switch cfg.Logging.Format {
	case "json", "console":
	default:
		add("logging.format", fmt.Sprintf("must be json or console, got %q", cfg.Logging.Format))
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		add("metrics.path", "must start with /")
	}

	if cfg.Tracing.SamplingRate < 0 || cfg.Tracing.SamplingRate > 1 {
		add("tracing.samplingRate", "must be between 0 and 1")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
