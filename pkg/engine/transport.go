package engine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"
)

// Transport is a line-oriented duplex channel to a backend engine.
//
// Lines delivers every output line in order from a dedicated reader and is
// closed once the output ends. WriteLine appends the newline. Close ends the
// backend, waiting until ctx is done before forcing it.
type Transport interface {
	WriteLine(line string) error
	Lines() <-chan string
	Close(ctx context.Context) error
}

// ProcessConfig describes how to start a backend executable.
type ProcessConfig struct {
	// Path is the executable.
	Path string

	// Args are passed to the executable.
	Args []string

	// Dir is the working directory; empty means the current one.
	Dir string

	// LineBuffer is the capacity of the output channel.
	// Default: 256
	LineBuffer int
}

// Process is a Transport backed by an operating system process speaking UCI
// on its standard streams.
type Process struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	writer *bufio.Writer
	lines  chan string
	logger *slog.Logger

	writeMu   sync.Mutex
	closing   chan struct{}
	closeOnce sync.Once
	exited    chan struct{}
	waitErr   error
}

// Spawn starts the executable described by cfg. label names the engine in
// errors and logs.
func Spawn(label string, cfg ProcessConfig, logger *slog.Logger) (*Process, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.LineBuffer <= 0 {
		cfg.LineBuffer = 256
	}

	cmd := exec.Command(cfg.Path, cfg.Args...) //nolint:gosec // path comes from the operator's config
	cmd.Dir = cfg.Dir

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, &SpawnError{Engine: label, Path: cfg.Path, Cause: err}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &SpawnError{Engine: label, Path: cfg.Path, Cause: err}
	}
	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Engine: label, Path: cfg.Path, Cause: err}
	}

	p := &Process{
		cmd:     cmd,
		stdin:   stdin,
		writer:  bufio.NewWriter(stdin),
		lines:   make(chan string, cfg.LineBuffer),
		logger:  logger.With("component", "engine.process", "engine", label),
		closing: make(chan struct{}),
		exited:  make(chan struct{}),
	}

	go p.read(stdout)

	p.logger.Debug("backend process started", "path", cfg.Path, "pid", cmd.Process.Pid)
	return p, nil
}

// read forwards stdout lines until EOF, then reaps the process.
func (p *Process) read(stdout io.Reader) {
	defer close(p.exited)

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

scan:
	for scanner.Scan() {
		select {
		case p.lines <- scanner.Text():
		case <-p.closing:
			break scan
		}
	}
	close(p.lines)

	if err := scanner.Err(); err != nil {
		p.logger.Debug("backend output ended with error", "error", err)
	}
	p.waitErr = p.cmd.Wait()
	p.logger.Debug("backend process exited", "error", p.waitErr)
}

// WriteLine writes line and a newline to the process.
func (p *Process) WriteLine(line string) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	if _, err := p.writer.WriteString(line + "\n"); err != nil {
		return err
	}
	return p.writer.Flush()
}

// Lines returns the output channel.
func (p *Process) Lines() <-chan string {
	return p.lines
}

// Close closes stdin and waits for the process to exit. If ctx ends first
// the process is killed.
func (p *Process) Close(ctx context.Context) error {
	p.closeOnce.Do(func() {
		close(p.closing)
		_ = p.stdin.Close()
	})

	select {
	case <-p.exited:
	case <-ctx.Done():
		p.logger.Warn("backend did not exit in time, killing it")
		if err := p.cmd.Process.Kill(); err != nil {
			p.logger.Debug("kill failed", "error", err)
		}
		<-p.exited
	}

	var exitErr *exec.ExitError
	if p.waitErr != nil && !errors.As(p.waitErr, &exitErr) {
		return fmt.Errorf("wait for backend: %w", p.waitErr)
	}
	return nil
}
