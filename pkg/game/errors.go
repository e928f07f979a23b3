package game

import (
	"errors"
	"fmt"
)

var (
	// ErrIllegalMove is returned when a move is not legal in the current position.
	ErrIllegalMove = errors.New("illegal move")

	// ErrInvalidFEN is returned when a FEN string cannot be parsed.
	ErrInvalidFEN = errors.New("invalid FEN")
)

// IllegalMoveError reports the first move of a sequence that could not be
// applied. Moves before Index were applied; Move and everything after it
// were not.
type IllegalMoveError struct {
	// Move is the rejected move in UCI notation.
	Move string

	// Index is the position of Move in the submitted sequence.
	Index int

	// Cause is the error returned by the board library.
	Cause error
}

// Error implements the error interface.
func (e *IllegalMoveError) Error() string {
	return fmt.Sprintf("illegal move %q at index %d: %v", e.Move, e.Index, e.Cause)
}

// Is implements error matching for errors.Is().
func (e *IllegalMoveError) Is(target error) bool {
	return target == ErrIllegalMove
}

// Unwrap returns the board library error.
func (e *IllegalMoveError) Unwrap() error {
	return e.Cause
}

// InvalidFENError reports a FEN string rejected by the board library.
type InvalidFENError struct {
	FEN   string
	Cause error
}

// Error implements the error interface.
func (e *InvalidFENError) Error() string {
	return fmt.Sprintf("invalid FEN %q: %v", e.FEN, e.Cause)
}

// Is implements error matching for errors.Is().
func (e *InvalidFENError) Is(target error) bool {
	return target == ErrInvalidFEN
}

// Unwrap returns the board library error.
func (e *InvalidFENError) Unwrap() error {
	return e.Cause
}
