package core

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration matches every *ConfigurationError via errors.Is.
	ErrConfiguration = errors.New("configuration error")

	// ErrFormat matches every *FormatError via errors.Is.
	ErrFormat = errors.New("format error")
)

// ConfigurationError reports a designator or converter that does not fit the
// record type, or an otherwise unusable call configuration.
type ConfigurationError struct {
	Field  string
	Reason string
}

// NewConfigurationError creates a ConfigurationError for the given field.
func NewConfigurationError(field, format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return "configuration error: " + e.Reason
	}
	return fmt.Sprintf("configuration error: field %q: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrConfiguration) succeed.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// FormatError reports text that could not be converted to a field's declared
// type: a key string, or a structured-text payload.
type FormatError struct {
	Field string
	Value string
	Err   error
}

// NewFormatError creates a FormatError wrapping err.
func NewFormatError(field, value string, err error) *FormatError {
	return &FormatError{Field: field, Value: value, Err: err}
}

func (e *FormatError) Error() string {
	msg := fmt.Sprintf("format error: field %q", e.Field)
	if e.Value != "" {
		msg += fmt.Sprintf(": value %q", truncate(e.Value, 64))
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrFormat) succeed.
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
