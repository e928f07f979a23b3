package engine

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"headsup-hq/headsup/pkg/uci"
)

// Identity is what a backend declares during the handshake.
type Identity struct {
	Name    string
	Author  string
	Options []string
}

// LookupOption returns the declared spelling of an option, matching names
// case-insensitively.
func (id Identity) LookupOption(name string) (string, bool) {
	for _, opt := range id.Options {
		if strings.EqualFold(opt, name) {
			return opt, true
		}
	}
	return "", false
}

// Options configures a Supervisor.
type Options struct {
	// Label names the backend in logs and protocol messages ("engine1").
	Label string

	// QueueSize is the capacity of the command queue.
	// Default: 64
	QueueSize int

	// HandshakeTimeout bounds the wait for uciok. Zero disables it.
	HandshakeTimeout time.Duration

	// ReadyTimeout bounds the wait for readyok. Zero disables it.
	ReadyTimeout time.Duration

	// StopTimeout bounds the wait for bestmove after stop. Zero disables it.
	StopTimeout time.Duration

	// QuitTimeout is how long the backend may take to exit after quit before
	// it is killed.
	// Default: 3s
	QuitTimeout time.Duration

	// Relay receives the info and bestmove lines meant for the GUI. It is
	// called from the worker goroutine.
	Relay func(line string)

	// Observer receives search lifecycle events.
	Observer Observer

	// Logger is the base logger; nil means slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions(label string) Options {
	return Options{
		Label:            label,
		QueueSize:        64,
		HandshakeTimeout: 10 * time.Second,
		ReadyTimeout:     10 * time.Second,
		StopTimeout:      10 * time.Second,
		QuitTimeout:      3 * time.Second,
	}
}

// SearchRequest is a search to run on a backend.
type SearchRequest struct {
	// Position is the `position` line describing the board.
	Position string

	// FEN is the current position, recorded in reports.
	FEN string

	// FullMove and Material are the selection inputs, recorded in reports.
	FullMove int
	Material int

	// Params is the search limit.
	Params uci.SearchParams
}

type opKind int

const (
	opHandshake opKind = iota
	opIsReady
	opSetOption
	opNewGame
	opSearch
	opStop
	opPonderHit
	opQuit
)

var opNames = [...]string{"handshake", "isready", "setoption", "ucinewgame", "search", "stop", "ponderhit", "quit"}

func (o opKind) String() string { return opNames[o] }

// interrupts reports whether the request raises the cancellation signal.
func (o opKind) interrupts() bool {
	return o == opStop || o == opPonderHit || o == opQuit
}

type result struct {
	identity Identity
	err      error
}

// request is one queued operation. reply is nil for fire-and-forget
// operations.
type request struct {
	op       opKind
	ctx      context.Context
	name     string
	value    string
	search   SearchRequest
	reply    chan result
	answered bool
}

func (r *request) answer(res result) {
	if r.reply == nil || r.answered {
		return
	}
	r.answered = true
	r.reply <- res
}

// Supervisor owns one backend process. All traffic to the backend goes
// through a FIFO queue consumed by a single worker goroutine, so operations
// never overlap on the wire.
type Supervisor struct {
	opts      Options
	transport Transport
	observer  Observer
	logger    *slog.Logger

	queue   chan *request
	cancel  *cancelSignal
	session Session
	done    chan struct{}

	// pending counts searches enqueued and not yet finished.
	pending atomic.Int32

	mu       sync.RWMutex
	identity Identity
	failure  error

	// active is the search in flight. Worker only.
	active *SearchReport
}

// New starts a supervisor worker on an established transport.
func New(t Transport, opts Options) *Supervisor {
	defaults := DefaultOptions(opts.Label)
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaults.QueueSize
	}
	if opts.QuitTimeout <= 0 {
		opts.QuitTimeout = defaults.QuitTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	observer := opts.Observer
	if observer == nil {
		observer = NopObserver{}
	}

	s := &Supervisor{
		opts:      opts,
		transport: t,
		observer:  observer,
		logger:    opts.Logger.With("component", "engine.supervisor", "engine", opts.Label),
		queue:     make(chan *request, opts.QueueSize),
		cancel:    newCancelSignal(),
		done:      make(chan struct{}),
	}

	go s.run()

	return s
}

// Start spawns the backend process described by cfg and supervises it.
func Start(cfg ProcessConfig, opts Options) (*Supervisor, error) {
	p, err := Spawn(opts.Label, cfg, opts.Logger)
	if err != nil {
		return nil, err
	}
	return New(p, opts), nil
}

// Label returns the configuration label of the backend.
func (s *Supervisor) Label() string {
	return s.opts.Label
}

// Identity returns what the backend declared during the handshake.
func (s *Supervisor) Identity() Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

// Name returns the declared engine name, or the label before the handshake.
func (s *Supervisor) Name() string {
	if name := s.Identity().Name; name != "" {
		return name
	}
	return s.opts.Label
}

// State returns the session state.
func (s *Supervisor) State() State {
	return s.session.State()
}

// Busy reports whether a search is queued or running.
func (s *Supervisor) Busy() bool {
	return s.pending.Load() > 0 || s.session.Busy()
}

// Err returns the failure that disabled the backend, if any.
func (s *Supervisor) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.failure
}

// Done is closed once the worker has exited.
func (s *Supervisor) Done() <-chan struct{} {
	return s.done
}

// Handshake sends uci and collects the backend's identity and options until
// uciok.
func (s *Supervisor) Handshake(ctx context.Context) (Identity, error) {
	res, err := s.call(ctx, &request{op: opHandshake})
	return res.identity, err
}

// IsReady blocks until the backend answers readyok. A busy backend is
// reported ready without a round trip.
func (s *Supervisor) IsReady(ctx context.Context) error {
	// Backends answer isready mid-search, but the worker is relaying that
	// search and would only send isready after bestmove. Answering here keeps
	// the GUI from waiting out the whole search.
	if s.Busy() {
		return nil
	}
	_, err := s.call(ctx, &request{op: opIsReady})
	return err
}

// SetOption enqueues a setoption command.
func (s *Supervisor) SetOption(ctx context.Context, name, value string) error {
	return s.enqueue(ctx, &request{op: opSetOption, name: name, value: value})
}

// ApplyOptions sets every option in opts that the backend declared and
// returns the names it skipped. Names are matched case-insensitively.
func (s *Supervisor) ApplyOptions(ctx context.Context, opts map[string]string) ([]string, error) {
	names := make([]string, 0, len(opts))
	for name := range opts {
		names = append(names, name)
	}
	sort.Strings(names)

	id := s.Identity()
	var skipped []string
	for _, name := range names {
		declared, ok := id.LookupOption(name)
		if !ok {
			skipped = append(skipped, name)
			continue
		}
		if err := s.SetOption(ctx, declared, opts[name]); err != nil {
			return skipped, err
		}
	}
	return skipped, nil
}

// NewGame enqueues ucinewgame.
func (s *Supervisor) NewGame(ctx context.Context) error {
	return s.enqueue(ctx, &request{op: opNewGame})
}

// StartSearch enqueues a search. Output is relayed as it arrives.
func (s *Supervisor) StartSearch(ctx context.Context, req SearchRequest) error {
	s.pending.Add(1)
	if err := s.enqueue(ctx, &request{op: opSearch, search: req}); err != nil {
		s.pending.Add(-1)
		return err
	}
	return nil
}

// Stop raises the cancellation signal, enqueues stop and blocks until the
// current search has produced its bestmove.
func (s *Supervisor) Stop(ctx context.Context) error {
	_, err := s.interrupt(ctx, &request{op: opStop})
	return err
}

// PonderHit raises the cancellation signal and enqueues ponderhit. It
// returns once the backend has been told and the session searches for real;
// the search itself keeps relaying in the background. A search that is not
// pondering is left alone.
func (s *Supervisor) PonderHit(ctx context.Context) error {
	_, err := s.interrupt(ctx, &request{op: opPonderHit})
	return err
}

// Quit enqueues termination and waits for the worker to exit.
func (s *Supervisor) Quit(ctx context.Context) error {
	_, err := s.interrupt(ctx, &request{op: opQuit})
	select {
	case <-s.done:
	case <-ctx.Done():
		if err == nil {
			err = ctx.Err()
		}
	}
	return err
}

func (s *Supervisor) enqueue(ctx context.Context, req *request) error {
	if req.ctx == nil {
		req.ctx = context.Background()
	}
	select {
	case <-s.done:
		return ErrSupervisorClosed
	default:
	}

	select {
	case s.queue <- req:
		return nil
	case <-s.done:
		return ErrSupervisorClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Supervisor) call(ctx context.Context, req *request) (result, error) {
	req.ctx = ctx
	req.reply = make(chan result, 1)
	if err := s.enqueue(ctx, req); err != nil {
		return result{}, err
	}
	return s.wait(ctx, req)
}

// interrupt is call for requests that must reach the worker while a relay is
// in progress. The signal is raised before enqueueing and taken back by the
// worker when it dequeues the request.
func (s *Supervisor) interrupt(ctx context.Context, req *request) (result, error) {
	req.ctx = ctx
	req.reply = make(chan result, 1)
	s.cancel.Set()
	if err := s.enqueue(ctx, req); err != nil {
		s.cancel.Done()
		return result{}, err
	}
	return s.wait(ctx, req)
}

func (s *Supervisor) wait(ctx context.Context, req *request) (result, error) {
	select {
	case res := <-req.reply:
		return res, res.err
	case <-ctx.Done():
		return result{}, ctx.Err()
	case <-s.done:
		select {
		case res := <-req.reply:
			return res, res.err
		default:
			return result{}, ErrSupervisorClosed
		}
	}
}

// run is the worker loop.
func (s *Supervisor) run() {
	defer close(s.done)

	for req := range s.queue {
		if req.op.interrupts() {
			s.cancel.Done()
		}
		if !s.session.Busy() {
			s.drainStale()
		}

		if req.op == opQuit {
			req.answer(result{err: s.handleQuit()})
			return
		}

		if err := s.Err(); err != nil {
			s.reject(req, err)
			continue
		}

		var err error
		switch req.op {
		case opHandshake:
			var id Identity
			id, err = s.handleHandshake(req.ctx)
			req.answer(result{identity: id, err: err})
		case opIsReady:
			err = s.handleIsReady(req.ctx)
		case opSetOption:
			err = s.write(uci.SetOption(req.name, req.value), "setoption")
		case opNewGame:
			err = s.write(uci.CmdNewGame, "ucinewgame")
		case opSearch:
			err = s.handleSearch(req.search)
		case opStop:
			err = s.handleStop(req.ctx)
		case opPonderHit:
			err = s.handlePonderHit(req)
		}

		if err != nil {
			s.logger.Warn("operation failed", "op", req.op.String(), "error", err)
		}
		req.answer(result{err: err})
	}
}

// reject fails a request on a backend that is already gone.
func (s *Supervisor) reject(req *request, err error) {
	s.logger.Debug("rejecting operation on failed backend", "op", req.op.String(), "error", err)
	if req.op == opSearch {
		s.pending.Add(-1)
		s.emit(uci.InfoString("%s error: %v", s.opts.Label, err))
		s.emit(uci.BestMove(uci.NullMove))
	}
	req.answer(result{err: err})
}

func (s *Supervisor) handleHandshake(ctx context.Context) (Identity, error) {
	ctx, cancel := withTimeout(ctx, s.opts.HandshakeTimeout)
	defer cancel()

	if err := s.write(uci.CmdUCI, "handshake"); err != nil {
		return Identity{}, err
	}

	var id Identity
	err := s.readUntil(ctx, uci.UCIOK, func(line string) {
		switch uci.Classify(line) {
		case uci.LineID:
			field, value, _ := uci.ParseID(line)
			switch field {
			case "name":
				id.Name = value
			case "author":
				id.Author = value
			}
		case uci.LineOption:
			if name, ok := uci.ParseOptionName(line); ok {
				id.Options = append(id.Options, name)
			}
		}
	})
	if err != nil {
		return Identity{}, err
	}

	s.mu.Lock()
	s.identity = id
	s.mu.Unlock()

	s.logger.Info("handshake complete",
		"name", id.Name,
		"author", id.Author,
		"options", len(id.Options),
	)
	return id, nil
}

func (s *Supervisor) handleIsReady(ctx context.Context) error {
	if s.session.Busy() {
		return nil
	}

	ctx, cancel := withTimeout(ctx, s.opts.ReadyTimeout)
	defer cancel()

	if err := s.write(uci.CmdIsReady, "isready"); err != nil {
		return err
	}
	return s.readUntil(ctx, uci.ReadyOK, nil)
}

func (s *Supervisor) handleSearch(req SearchRequest) error {
	if s.session.Busy() {
		s.pending.Add(-1)
		s.emit(uci.InfoString("%s is still searching, go ignored", s.opts.Label))
		return ErrSessionBusy
	}

	next := StateSearching
	if uci.IsPonder(req.Params) {
		next = StatePondering
	}
	if err := s.session.Transition(next); err != nil {
		s.pending.Add(-1)
		return err
	}

	s.active = &SearchReport{
		ID:         uuid.NewString(),
		Engine:     s.opts.Label,
		EngineName: s.Name(),
		Mode:       req.Params.Mode(),
		FEN:        req.FEN,
		Position:   req.Position,
		FullMove:   req.FullMove,
		Material:   req.Material,
		StartedAt:  time.Now(),
	}
	s.observer.SearchStarted(*s.active)
	s.logger.Debug("search started", "search_id", s.active.ID, "mode", s.active.Mode)

	if err := s.write(req.Position, "search"); err != nil {
		return s.abortSearch(err)
	}
	if err := s.write(req.Params.String(), "search"); err != nil {
		return s.abortSearch(err)
	}

	if err := s.follow(context.Background(), true, OutcomeCompleted); err != nil {
		return s.abortSearch(err)
	}
	return nil
}

func (s *Supervisor) handleStop(ctx context.Context) error {
	if !s.session.Busy() {
		return nil
	}
	if err := s.session.Transition(StateStopping); err != nil {
		return err
	}
	if err := s.write(uci.CmdStop, "stop"); err != nil {
		return s.abortSearch(err)
	}

	ctx, cancel := withTimeout(ctx, s.opts.StopTimeout)
	defer cancel()

	if err := s.follow(ctx, false, OutcomeStopped); err != nil {
		if ctx.Err() != nil {
			err = &ProtocolViolationError{Engine: s.opts.Label, Expected: "bestmove", Cause: err}
		}
		return s.abortSearch(err)
	}
	return nil
}

func (s *Supervisor) handlePonderHit(req *request) error {
	if s.session.State() != StatePondering {
		if !s.session.Busy() {
			return nil
		}
		// Nothing to promote; the search already runs and keeps relaying.
		req.answer(result{})
		if err := s.follow(context.Background(), true, OutcomeCompleted); err != nil {
			return s.abortSearch(err)
		}
		return nil
	}
	if err := s.write(uci.CmdPonderHit, "ponderhit"); err != nil {
		return s.abortSearch(err)
	}
	if err := s.session.Transition(StateSearching); err != nil {
		return err
	}
	if s.active != nil {
		s.active.Mode = "ponderhit"
	}

	req.answer(result{})

	if err := s.follow(context.Background(), true, OutcomeCompleted); err != nil {
		return s.abortSearch(err)
	}
	return nil
}

func (s *Supervisor) handleQuit() error {
	if s.Err() == nil {
		if err := s.transport.WriteLine(uci.CmdQuit); err != nil {
			s.logger.Debug("write quit failed", "error", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.opts.QuitTimeout)
	defer cancel()
	err := s.transport.Close(ctx)

	if s.session.Busy() {
		s.session.Reset()
	}
	s.active = nil
	s.pending.Store(0)

	s.logger.Info("backend shut down", "error", err)
	return err
}

// follow relays search output until bestmove. When interruptible, it also
// returns early, without error, while an interrupting request is waiting; the
// search then stays in flight for the stop, ponderhit or quit that follows.
func (s *Supervisor) follow(ctx context.Context, interruptible bool, outcome Outcome) error {
	var cancelled <-chan struct{}
	if interruptible {
		if s.cancel.IsSet() {
			return nil
		}
		cancelled = s.cancel.C()
	}

	lines := s.transport.Lines()
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return s.died("search", nil)
			}
			switch uci.Classify(line) {
			case uci.LineInfo:
				if s.active != nil {
					s.active.InfoLines++
				}
				s.emit(line)
			case uci.LineBestMove:
				s.finishSearch(line, outcome)
				s.emit(line)
				return nil
			default:
				s.logger.Debug("ignoring backend line", "line", line)
			}
		case <-cancelled:
			s.logger.Debug("relay interrupted by cancellation signal")
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// readUntil consumes output until a line equal to expected, passing the
// other lines to fn.
func (s *Supervisor) readUntil(ctx context.Context, expected string, fn func(line string)) error {
	lines := s.transport.Lines()
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return &ProtocolViolationError{
					Engine:   s.opts.Label,
					Expected: expected,
					Cause:    s.died("waiting for "+expected, nil),
				}
			}
			if strings.TrimSpace(line) == expected {
				return nil
			}
			if fn != nil {
				fn(line)
			}
		case <-ctx.Done():
			return &ProtocolViolationError{Engine: s.opts.Label, Expected: expected, Cause: ctx.Err()}
		}
	}
}

// drainStale discards output left over between operations and notices a
// backend that exited while idle.
func (s *Supervisor) drainStale() {
	lines := s.transport.Lines()
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				if s.Err() == nil {
					_ = s.died("idle", nil)
				}
				return
			}
			s.logger.Debug("discarding stale backend line", "line", line)
		default:
			return
		}
	}
}

func (s *Supervisor) finishSearch(line string, outcome Outcome) {
	if err := s.session.Transition(StateIdle); err != nil {
		s.logger.Warn("unexpected bestmove", "line", line, "error", err)
		s.session.Reset()
	}
	if s.active == nil {
		return
	}

	report := *s.active
	s.active = nil

	report.BestMove, report.Ponder, _ = uci.ParseBestMove(line)
	report.Duration = time.Since(report.StartedAt)
	report.Outcome = outcome
	s.observer.SearchFinished(report)
	s.pending.Add(-1)

	s.logger.Debug("search finished",
		"search_id", report.ID,
		"bestmove", report.BestMove,
		"outcome", string(outcome),
		"duration", report.Duration,
	)
}

// abortSearch ends the search in flight after a failure. The GUI gets an
// error line and a null bestmove so it never waits for an answer that will
// not come.
func (s *Supervisor) abortSearch(err error) error {
	s.session.Reset()
	s.observer.BackendFailed(s.opts.Label, err)

	if s.active != nil {
		report := *s.active
		s.active = nil

		report.BestMove = uci.NullMove
		report.Duration = time.Since(report.StartedAt)
		report.Outcome = OutcomeFailed
		report.Error = err.Error()
		s.observer.SearchFinished(report)
		s.pending.Add(-1)
	}

	s.emit(uci.InfoString("%s error: %v", s.opts.Label, err))
	s.emit(uci.BestMove(uci.NullMove))
	return err
}

// write sends one line, marking the backend dead if the pipe is broken.
func (s *Supervisor) write(line, during string) error {
	if err := s.transport.WriteLine(line); err != nil {
		return s.died(during, err)
	}
	s.logger.Debug("sent to backend", "line", line)
	return nil
}

// died records the backend as failed and returns the error describing it.
func (s *Supervisor) died(during string, cause error) error {
	err := &ProcessDiedError{Engine: s.opts.Label, During: during, Cause: cause}

	s.mu.Lock()
	first := s.failure == nil
	if first {
		s.failure = err
	}
	s.mu.Unlock()

	if first {
		s.logger.Error("backend process died", "during", during, "error", cause)
	}
	return err
}

func (s *Supervisor) emit(line string) {
	if s.opts.Relay != nil {
		s.opts.Relay(line)
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
