package engine

import (
	"fmt"
	"sync"
)

// State is the search session state of one backend.
type State int

const (
	StateIdle State = iota
	StateSearching
	StatePondering
	StateStopping
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSearching:
		return "searching"
	case StatePondering:
		return "pondering"
	case StateStopping:
		return "stopping"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// transitions lists the allowed state changes.
var transitions = map[State][]State{
	StateIdle:      {StateSearching, StatePondering},
	StateSearching: {StateIdle, StateStopping},
	StatePondering: {StateSearching, StateIdle, StateStopping},
	StateStopping:  {StateIdle},
}

// Session tracks the search state of one backend. The worker changes it;
// the router only reads it.
type Session struct {
	mu    sync.RWMutex
	state State
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Busy reports whether a search is in flight.
func (s *Session) Busy() bool {
	return s.State() != StateIdle
}

// Transition moves the session to next, or returns a *TransitionError.
func (s *Session) Transition(next State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, allowed := range transitions[s.state] {
		if allowed == next {
			s.state = next
			return nil
		}
	}
	return &TransitionError{From: s.state, To: next}
}

// Reset forces the session back to idle after a backend failure.
func (s *Session) Reset() {
	s.mu.Lock()
	s.state = StateIdle
	s.mu.Unlock()
}
