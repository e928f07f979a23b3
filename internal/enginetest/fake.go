// Package enginetest provides an in-memory UCI backend for tests.
package enginetest

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"
)

// Engine is a scripted UCI backend that satisfies the engine Transport
// interface. It answers the handshake and isready, finishes timed searches
// at once and holds infinite and ponder searches until stop.
type Engine struct {
	mu sync.Mutex

	name     string
	author   string
	options  []string
	bestMove string

	hang      bool
	closed    bool
	searching bool
	infinite  bool
	pondering bool

	written    []string
	lines      chan string
	closeCalls int
}

// NewEngine creates a fake backend that declares name.
func NewEngine(name string) *Engine {
	return &Engine{
		name:     name,
		author:   "enginetest",
		options:  []string{"Hash", "Threads", "Ponder"},
		bestMove: "e2e4",
		lines:    make(chan string, 1024),
	}
}

// WithOptions replaces the declared options.
func (e *Engine) WithOptions(names ...string) *Engine {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.options = names
	return e
}

// WithBestMove sets the move every search answers with.
func (e *Engine) WithBestMove(move string) *Engine {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.bestMove = move
	return e
}

// SetHang makes the engine ignore uci and isready.
func (e *Engine) SetHang(hang bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hang = hang
}

// WriteLine records line and produces the scripted answer.
func (e *Engine) WriteLine(line string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return io.ErrClosedPipe
	}
	e.written = append(e.written, line)

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	switch fields[0] {
	case "uci":
		if e.hang {
			return nil
		}
		e.emit("id name " + e.name)
		e.emit("id author " + e.author)
		for _, opt := range e.options {
			e.emit("option name " + opt + " type string default <empty>")
		}
		e.emit("uciok")
	case "isready":
		if !e.hang {
			e.emit("readyok")
		}
	case "go":
		e.searching = true
		e.infinite = contains(fields, "infinite")
		e.pondering = contains(fields, "ponder")
		e.emit("info depth 1 score cp 12 pv " + e.bestMove)
		if !e.infinite && !e.pondering {
			e.finish()
		}
	case "ponderhit":
		if e.searching && e.pondering {
			e.pondering = false
			if !e.infinite {
				e.finish()
			}
		}
	case "stop":
		if e.searching {
			e.finish()
		}
	case "quit":
		e.shutdown()
	}
	return nil
}

// Lines returns the engine output.
func (e *Engine) Lines() <-chan string {
	return e.lines
}

// Close ends the engine.
func (e *Engine) Close(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closeCalls++
	e.shutdown()
	return nil
}

// Emit pushes raw output lines, as if the engine printed them.
func (e *Engine) Emit(lines ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, line := range lines {
		e.emit(line)
	}
}

// Crash ends the output stream as a dying process would.
func (e *Engine) Crash() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.shutdown()
}

// Written returns a copy of every line written to the engine.
func (e *Engine) Written() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.written...)
}

// Searching reports whether a search is running.
func (e *Engine) Searching() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.searching
}

// CloseCalls returns how often Close was called.
func (e *Engine) CloseCalls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closeCalls
}

// WaitWritten polls until a line starting with prefix has been written.
func (e *Engine) WaitWritten(prefix string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		for _, line := range e.Written() {
			if strings.HasPrefix(line, prefix) {
				return true
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func (e *Engine) finish() {
	e.searching = false
	e.infinite = false
	e.pondering = false
	e.emit("bestmove " + e.bestMove)
}

func (e *Engine) emit(line string) {
	if e.closed {
		return
	}
	e.lines <- line
}

func (e *Engine) shutdown() {
	if e.closed {
		return
	}
	e.closed = true
	e.searching = false
	close(e.lines)
}

func contains(fields []string, token string) bool {
	for _, f := range fields {
		if f == token {
			return true
		}
	}
	return false
}

// Recorder collects relayed lines safely across goroutines.
type Recorder struct {
	mu    sync.Mutex
	lines []string
}

// Relay appends line. It matches the supervisor relay callback.
func (r *Recorder) Relay(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, line)
}

// Lines returns a copy of the recorded lines.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

// WaitFor polls until a recorded line starts with prefix.
func (r *Recorder) WaitFor(prefix string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		for _, line := range r.Lines() {
			if strings.HasPrefix(line, prefix) {
				return true
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}
