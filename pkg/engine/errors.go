package engine

import (
	"errors"
	"fmt"
)

// Common supervisor errors that can be checked with errors.Is().
var (
	// ErrBackendProtocolViolation is returned when a backend does not answer
	// with the expected protocol line.
	ErrBackendProtocolViolation = errors.New("backend protocol violation")

	// ErrBackendProcessDied is returned when the backend process exits or its
	// pipes break while the supervisor still needs it.
	ErrBackendProcessDied = errors.New("backend process died")

	// ErrSpawnFailure is returned when a backend process cannot be started.
	ErrSpawnFailure = errors.New("engine spawn failure")

	// ErrSupervisorClosed is returned for operations issued after Quit.
	ErrSupervisorClosed = errors.New("supervisor closed")

	// ErrSessionBusy is returned when a search is started while another one
	// is still in flight.
	ErrSessionBusy = errors.New("search session busy")

	// ErrInvalidTransition is returned for session state changes that the
	// state machine does not allow.
	ErrInvalidTransition = errors.New("invalid session transition")
)

// SpawnError is returned when the backend executable cannot be started.
type SpawnError struct {
	Engine string
	Path   string
	Cause  error
}

// Error implements the error interface.
func (e *SpawnError) Error() string {
	return fmt.Sprintf("engine %s: failed to start %q: %v", e.Engine, e.Path, e.Cause)
}

// Is implements error matching for errors.Is().
func (e *SpawnError) Is(target error) bool {
	return target == ErrSpawnFailure
}

// Unwrap returns the underlying error.
func (e *SpawnError) Unwrap() error {
	return e.Cause
}

// ProtocolViolationError is returned when an expected terminator line never
// arrives, either because the wait timed out or the output stream ended.
type ProtocolViolationError struct {
	// Engine is the supervisor label.
	Engine string

	// Expected is the line the supervisor was waiting for.
	Expected string

	// Cause is the timeout or process error that ended the wait.
	Cause error
}

// Error implements the error interface.
func (e *ProtocolViolationError) Error() string {
	return fmt.Sprintf("engine %s: expected %q: %v", e.Engine, e.Expected, e.Cause)
}

// Is implements error matching for errors.Is().
func (e *ProtocolViolationError) Is(target error) bool {
	return target == ErrBackendProtocolViolation
}

// Unwrap returns the underlying error.
func (e *ProtocolViolationError) Unwrap() error {
	return e.Cause
}

// ProcessDiedError is returned when the backend went away during an operation.
type ProcessDiedError struct {
	// Engine is the supervisor label.
	Engine string

	// During names the operation that observed the failure.
	During string

	// Cause is the write or exit error, if known.
	Cause error
}

// Error implements the error interface.
func (e *ProcessDiedError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("engine %s: backend process died during %s", e.Engine, e.During)
	}
	return fmt.Sprintf("engine %s: backend process died during %s: %v", e.Engine, e.During, e.Cause)
}

// Is implements error matching for errors.Is().
func (e *ProcessDiedError) Is(target error) bool {
	return target == ErrBackendProcessDied
}

// Unwrap returns the underlying error.
func (e *ProcessDiedError) Unwrap() error {
	return e.Cause
}

// TransitionError reports a rejected session state change.
type TransitionError struct {
	From State
	To   State
}

// Error implements the error interface.
func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid session transition %s -> %s", e.From, e.To)
}

// Is implements error matching for errors.Is().
func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
