package uci

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupported is returned for lines whose verb is not in the grammar.
	ErrUnsupported = errors.New("unsupported command")

	// ErrMalformed is returned for known verbs with invalid arguments.
	ErrMalformed = errors.New("malformed command")
)

// SyntaxError describes a line that could not be parsed.
type SyntaxError struct {
	// Line is the offending input, trimmed.
	Line string

	// Reason explains what is wrong with the arguments.
	Reason string

	// Kind is ErrUnsupported or ErrMalformed.
	Kind error
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%v: %q", e.Kind, e.Line)
	}
	return fmt.Sprintf("%v: %q: %s", e.Kind, e.Line, e.Reason)
}

// Is implements error matching for errors.Is().
func (e *SyntaxError) Is(target error) bool {
	return target == e.Kind
}

func unsupported(line string) error {
	return &SyntaxError{Line: line, Kind: ErrUnsupported}
}

func malformed(line, format string, args ...any) error {
	return &SyntaxError{Line: line, Reason: fmt.Sprintf(format, args...), Kind: ErrMalformed}
}
