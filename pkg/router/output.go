package router

import (
	"io"
	"log/slog"
	"sync"
)

// Output serializes protocol lines from the router and both supervisor
// workers onto one writer.
type Output struct {
	mu     sync.Mutex
	w      io.Writer
	logger *slog.Logger
}

// NewOutput wraps w. logger may be nil.
func NewOutput(w io.Writer, logger *slog.Logger) *Output {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Output{w: w, logger: logger.With("component", "router.output")}
}

// WriteLine writes line followed by a newline. Write errors are logged; the
// GUI side of a pipe going away is noticed by the input loop.
func (o *Output) WriteLine(line string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, err := io.WriteString(o.w, line+"\n"); err != nil {
		o.logger.Warn("write to GUI failed", "error", err)
		return
	}
	o.logger.Debug(">> " + line)
}
