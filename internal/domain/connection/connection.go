// Package connection provides the connection parameters of the compared
// database engines.
package connection

import (
	"fmt"
	"strings"
)

// Connection defines the contract shared by every backend's connection parameters.
type Connection interface {
	// Validate validates the connection parameters.
	// Returns an error if any required field is missing or invalid.
	Validate() error

	// GetDSN generates a connection string without password (for logging).
	GetDSN() string

	// GetDSNWithPassword generates a complete connection string with password (for actual connection).
	GetDSNWithPassword() string

	// Redact returns a redacted connection string for display.
	// Format: "***@host:port/db".
	Redact() string
}

// ValidatePort validates that a port number is in valid range (1-65535).
func ValidatePort(port int) error {
	if port < 1 || port > 65535 {
		return &ValidationError{
			Field:   "port",
			Message: "port must be between 1 and 65535",
			Value:   port,
		}
	}
	return nil
}

// ValidateRequired validates that a required string field is not empty.
func ValidateRequired(fieldName, value string) error {
	if value == "" {
		return &ValidationError{
			Field:   fieldName,
			Message: fieldName + " is required",
		}
	}
	return nil
}

// ValidationError represents a validation error for a specific field.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

func (e *ValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Value)
	}
	return e.Message
}

// MultiValidationError collects every field error of one Validate call.
type MultiValidationError struct {
	Errors []error
}

func (e *MultiValidationError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Unwrap exposes the individual field errors to errors.Is/As.
func (e *MultiValidationError) Unwrap() []error {
	return e.Errors
}

func collect(errs ...error) error {
	var out []error
	for _, err := range errs {
		if err != nil {
			out = append(out, err)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return &MultiValidationError{Errors: out}
}
