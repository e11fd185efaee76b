// Package compose derives a service catalog from a Docker Compose project,
// so an existing compose-based stack can be imported instead of hand-writing
// harness configuration. Parsing and conversion are pure; the caller reads
// the file.
package compose

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	ErrEmptyInput      = errors.New("compose spec is empty")
	ErrInvalidYAML     = errors.New("invalid YAML syntax")
	ErrNoServices      = errors.New("compose spec must define at least one service")
	ErrNoPublishedPort = errors.New("service publishes no port")
)

// ParseError wraps errors with context about where parsing failed.
type ParseError struct {
	Field   string // e.g., "services.web"
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError.
func NewParseError(field, message string, err error) *ParseError {
	return &ParseError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}
