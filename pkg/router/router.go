package router

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"headsup-hq/headsup/pkg/engine"
	"headsup-hq/headsup/pkg/game"
	"headsup-hq/headsup/pkg/heuristic"
	"headsup-hq/headsup/pkg/uci"
)

// Backend is the part of an engine supervisor the router drives.
// *engine.Supervisor implements it.
type Backend interface {
	Label() string
	Name() string
	Busy() bool
	IsReady(ctx context.Context) error
	SetOption(ctx context.Context, name, value string) error
	NewGame(ctx context.Context) error
	StartSearch(ctx context.Context, req engine.SearchRequest) error
	Stop(ctx context.Context) error
	PonderHit(ctx context.Context) error
	Quit(ctx context.Context) error
}

// Selection describes the outcome of evaluating a position.
type Selection struct {
	Backend  heuristic.Backend
	FullMove int
	Material int

	// Changed is true when the active backend differs from the previous one.
	// The first selection, made by New, never reports a change.
	Changed bool
}

// Options configures a Router.
type Options struct {
	// Name and Version form the "id name" answer.
	Name    string
	Version string

	// Author is the "id author" answer.
	Author string

	// Thresholds are the initial switch values.
	Thresholds heuristic.Thresholds

	// Reload delivers new switch values. They apply from the next position
	// command. A nil channel disables reloading.
	Reload <-chan heuristic.Thresholds

	// QuitTimeout bounds the shutdown of both backends.
	// Default: 5s
	QuitTimeout time.Duration

	// OnSelect is called after every position evaluation.
	OnSelect func(Selection)

	// Logger is the base logger; nil means slog.Default().
	Logger *slog.Logger
}

// Router is the foreground command loop. It owns the game state; nothing
// else reads or writes it.
type Router struct {
	opts     Options
	backends [2]Backend
	out      *Output
	logger   *slog.Logger
	stats    *Stats

	state      *game.State
	active     heuristic.Backend
	selected   bool
	thresholds heuristic.Thresholds
	fullmove   int
	material   int
}

// New creates a router over engine1 (a) and engine2 (b).
func New(a, b Backend, out *Output, opts Options) *Router {
	if opts.Name == "" {
		opts.Name = "HeadsUp"
	}
	if opts.Author == "" {
		opts.Author = "Ferdy"
	}
	if opts.QuitTimeout <= 0 {
		opts.QuitTimeout = 5 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	r := &Router{
		opts:       opts,
		backends:   [2]Backend{a, b},
		out:        out,
		logger:     opts.Logger.With("component", "router"),
		stats:      NewStats(),
		state:      game.New(),
		thresholds: opts.Thresholds,
	}
	r.evaluate()
	return r
}

// Stats returns the router counters.
func (r *Router) Stats() *Stats {
	return r.stats
}

// Active returns the currently selected backend.
func (r *Router) Active() heuristic.Backend {
	return r.active
}

// Thresholds returns the switch values in effect.
func (r *Router) Thresholds() heuristic.Thresholds {
	return r.thresholds
}

// Run reads commands from in until quit, end of input or ctx is done. Both
// backends are shut down before Run returns.
func (r *Router) Run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	readErr := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("context cancelled, shutting down")
			r.quit()
			return ctx.Err()

		case t := <-r.opts.Reload:
			r.logger.Info("switch thresholds reloaded",
				"piece_value", t.PieceValue,
				"move_number", t.MoveNumber,
			)
			r.thresholds = t

		case line, ok := <-lines:
			if !ok {
				var err error
				select {
				case err = <-readErr:
				default:
				}
				r.logger.Info("end of input, shutting down", "error", err)
				r.quit()
				return err
			}
			if r.Handle(ctx, line) {
				return nil
			}
		}
	}
}

// Handle processes one input line and reports whether it was quit.
func (r *Router) Handle(ctx context.Context, line string) bool {
	r.stats.commands.Add(1)
	r.logger.Debug("<< " + line)

	cmd, err := uci.Parse(line)
	if err != nil {
		r.rejectLine(line, err)
		return false
	}

	switch cmd.Kind {
	case uci.KindUCI:
		r.handleUCI()
	case uci.KindIsReady:
		r.handleIsReady(ctx)
	case uci.KindNewGame:
		r.check(r.current().NewGame(ctx), r.current())
	case uci.KindPosition:
		r.handlePosition(ctx, cmd)
	case uci.KindGo:
		r.handleGo(ctx, cmd)
	case uci.KindStop:
		r.check(r.current().Stop(ctx), r.current())
	case uci.KindPonderHit:
		r.check(r.current().PonderHit(ctx), r.current())
	case uci.KindSetOption:
		for _, b := range r.backends {
			r.check(b.SetOption(ctx, cmd.OptionName, cmd.OptionValue), b)
		}
	case uci.KindQuit:
		r.quit()
		return true
	}
	return false
}

func (r *Router) rejectLine(line string, err error) {
	raw, reason := line, err.Error()
	var se *uci.SyntaxError
	if errors.As(err, &se) {
		raw, reason = se.Line, se.Reason
	}

	switch {
	case raw == "":
		// Blank lines are not worth an answer.
	case errors.Is(err, uci.ErrMalformed):
		r.stats.malformed.Add(1)
		r.out.WriteLine(uci.InfoString("command %q is malformed: %s", raw, reason))
	default:
		r.stats.unsupported.Add(1)
		r.out.WriteLine(uci.InfoString("command %q is not supported", raw))
	}
	r.logger.Debug("rejected input", "line", line, "error", err)
}

func (r *Router) handleUCI() {
	name := r.opts.Name
	if r.opts.Version != "" {
		name += " " + r.opts.Version
	}
	r.out.WriteLine(uci.IDName(name))
	r.out.WriteLine(uci.IDAuthor(r.opts.Author))
	r.out.WriteLine(uci.OptionCheck("Ponder", false))
	r.out.WriteLine(uci.OptionSpin("MultiPV", 1, 1, 500))
	for _, b := range r.backends {
		r.out.WriteLine(uci.InfoString("%s is %s", b.Label(), b.Name()))
	}
	r.out.WriteLine(uci.UCIOK)
}

// handleIsReady always answers readyok so the GUI never hangs; a failing
// backend is reported first.
func (r *Router) handleIsReady(ctx context.Context) {
	b := r.current()
	r.check(b.IsReady(ctx), b)
	r.out.WriteLine(uci.ReadyOK)
}

func (r *Router) handlePosition(ctx context.Context, cmd uci.Command) {
	next := game.New()
	if cmd.FEN != "" {
		st, err := game.FromFEN(cmd.FEN)
		if err != nil {
			r.out.WriteLine(uci.InfoString("invalid fen %q, position unchanged", cmd.FEN))
			r.logger.Warn("invalid fen", "fen", cmd.FEN, "error", err)
			return
		}
		next = st
	}

	if err := next.Apply(cmd.Moves); err != nil {
		var ime *game.IllegalMoveError
		if errors.As(err, &ime) {
			r.stats.illegalMoves.Add(1)
			r.out.WriteLine(uci.InfoString("illegal move %s at index %d, remaining moves ignored", ime.Move, ime.Index))
		}
		r.logger.Warn("position truncated", "error", err)
	}

	r.state = next
	previous := r.active
	sel := r.evaluate()

	if sel.Changed {
		r.stats.switches.Add(1)
		r.logger.Info("active engine changed",
			"from", previous.String(),
			"to", sel.Backend.String(),
			"fullmove", sel.FullMove,
			"material", sel.Material,
		)
		if old := r.backends[previous]; old.Busy() {
			r.stats.forcedStops.Add(1)
			r.logger.Info("stopping deselected engine", "engine", old.Label())
			r.check(old.Stop(ctx), old)
		}
	}
}

// evaluate recomputes the active backend from the current state.
func (r *Router) evaluate() Selection {
	fullmove := r.state.FullMoveNumber()
	backend, material := heuristic.SelectPlacement(r.state.Placement(), fullmove, r.thresholds)

	sel := Selection{
		Backend:  backend,
		FullMove: fullmove,
		Material: material,
		Changed:  r.selected && backend != r.active,
	}
	r.active, r.fullmove, r.material = backend, fullmove, material
	r.selected = true
	r.stats.selected(backend)

	r.logger.Debug("engine selected",
		"engine", backend.String(),
		"fullmove", fullmove,
		"material", material,
		"piece_value_switch", r.thresholds.PieceValue,
		"move_number_switch", r.thresholds.MoveNumber,
	)
	if r.opts.OnSelect != nil {
		r.opts.OnSelect(sel)
	}
	return sel
}

func (r *Router) handleGo(ctx context.Context, cmd uci.Command) {
	b := r.current()
	r.stats.searched(r.active)
	r.out.WriteLine(uci.InfoString("search info from %s", b.Name()))

	req := engine.SearchRequest{
		Position: r.state.PositionCommand(),
		FEN:      r.state.FEN(),
		FullMove: r.fullmove,
		Material: r.material,
		Params:   cmd.Search,
	}
	if err := b.StartSearch(ctx, req); err != nil {
		r.stats.errors.Add(1)
		r.out.WriteLine(uci.InfoString("%s error: %v", b.Label(), err))
		r.out.WriteLine(uci.BestMove(uci.NullMove))
		r.logger.Error("search not started", "engine", b.Label(), "error", err)
	}
}

// quit shuts both backends down in parallel and waits for them.
func (r *Router) quit() {
	ctx, cancel := context.WithTimeout(context.Background(), r.opts.QuitTimeout)
	defer cancel()

	var wg sync.WaitGroup
	for _, b := range r.backends {
		wg.Add(1)
		go func(b Backend) {
			defer wg.Done()
			if err := b.Quit(ctx); err != nil && !errors.Is(err, engine.ErrSupervisorClosed) {
				r.logger.Warn("backend quit failed", "engine", b.Label(), "error", err)
			}
		}(b)
	}
	wg.Wait()

	snap := r.stats.Snapshot()
	r.logger.Info("router stopped",
		"commands", snap.Commands,
		"searches", snap.Searches,
		"switches", snap.Switches,
		"errors", snap.Errors,
	)
}

func (r *Router) current() Backend {
	return r.backends[r.active]
}

// check reports a failed backend operation to the GUI and the log.
func (r *Router) check(err error, b Backend) {
	if err == nil {
		return
	}
	r.stats.errors.Add(1)
	r.out.WriteLine(uci.InfoString("%s error: %v", b.Label(), err))
	r.logger.Error("backend operation failed", "engine", b.Label(), "error", err)
}
