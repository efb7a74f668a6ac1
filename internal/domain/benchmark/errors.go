package benchmark

import (
	"errors"
	"fmt"
)

// ErrorKind classifies benchmark failures.
type ErrorKind string

const (
	KindConnection   ErrorKind = "connection"
	KindQuery        ErrorKind = "query"
	KindAdmin        ErrorKind = "admin"
	KindScenario     ErrorKind = "scenario"
	KindProvisioning ErrorKind = "provisioning"
	KindTimeout      ErrorKind = "timeout"
)

// Sentinels for errors.Is matching by kind.
var (
	ErrConnection   = &Error{Kind: KindConnection}
	ErrQuery        = &Error{Kind: KindQuery}
	ErrAdmin        = &Error{Kind: KindAdmin}
	ErrScenario     = &Error{Kind: KindScenario}
	ErrProvisioning = &Error{Kind: KindProvisioning}
	ErrTimeout      = &Error{Kind: KindTimeout}
)

// Error is the structured error returned by adapters, the runner and provisioning.
type Error struct {
	Kind     ErrorKind
	Backend  BackendID // Empty when not tied to one backend
	Scenario Scenario  // Set on scenario errors
	Op       string    // Operation or statement that failed
	Err      error
}

// Error returns a formatted error string.
func (e *Error) Error() string {
	msg := string(e.Kind) + " error"
	if e.Scenario != "" {
		msg += " in " + string(e.Scenario)
	}
	if e.Backend != "" {
		msg += " on " + string(e.Backend)
	}
	if e.Op != "" {
		msg += fmt.Sprintf(" (%s)", e.Op)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so wrapped chains such as a
// scenario error around a query error satisfy both sentinels.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// NewConnectionError reports an unreachable backend or rejected credentials.
func NewConnectionError(backend BackendID, err error) error {
	return &Error{Kind: KindConnection, Backend: backend, Op: "connect", Err: err}
}

// NewQueryError reports a query the backend rejected or failed to complete.
func NewQueryError(backend BackendID, query string, err error) error {
	return &Error{Kind: KindQuery, Backend: backend, Op: query, Err: err}
}

// NewAdminError reports a rejected administrative command.
func NewAdminError(backend BackendID, command string, err error) error {
	return &Error{Kind: KindAdmin, Backend: backend, Op: command, Err: err}
}

// NewTimeoutError reports a backend call that exceeded its deadline.
func NewTimeoutError(backend BackendID, op string, err error) error {
	return &Error{Kind: KindTimeout, Backend: backend, Op: op, Err: err}
}

// NewScenarioError wraps a backend failure that aborted a paired run.
func NewScenarioError(scenario Scenario, backend BackendID, err error) error {
	return &Error{Kind: KindScenario, Scenario: scenario, Backend: backend, Err: err}
}

// NewProvisioningError reports a schema or load failure during one-shot setup.
func NewProvisioningError(backend BackendID, op string, err error) error {
	return &Error{Kind: KindProvisioning, Backend: backend, Op: op, Err: err}
}

// KindOf returns the kind of the outermost *Error in err's chain, or "" if none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
