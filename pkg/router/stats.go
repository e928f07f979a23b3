package router

import (
	"sync"
	"sync/atomic"
	"time"

	"headsup-hq/headsup/pkg/heuristic"
)

// Stats counts router activity. All counters are updated atomically so a
// snapshot can be taken from any goroutine.
type Stats struct {
	// commands is the number of input lines handled.
	commands atomic.Int64

	// unsupported counts lines outside the command grammar.
	unsupported atomic.Int64

	// malformed counts known commands with invalid arguments.
	malformed atomic.Int64

	// illegalMoves counts position commands cut short by an illegal move.
	illegalMoves atomic.Int64

	// selections counts position evaluations per backend.
	selections [2]atomic.Int64

	// searches counts go commands per backend.
	searches [2]atomic.Int64

	// switches counts re-selections that changed the active backend.
	switches atomic.Int64

	// forcedStops counts deselected backends stopped mid-search.
	forcedStops atomic.Int64

	// errors counts backend operations that failed.
	errors atomic.Int64

	// mu protects startTime
	mu        sync.RWMutex
	startTime time.Time
}

// NewStats creates an empty statistics tracker.
func NewStats() *Stats {
	return &Stats{startTime: time.Now()}
}

// Snapshot is a point-in-time copy of Stats.
type Snapshot struct {
	Commands     int64
	Unsupported  int64
	Malformed    int64
	IllegalMoves int64
	Selections   map[string]int64
	Searches     map[string]int64
	Switches     int64
	ForcedStops  int64
	Errors       int64
	Uptime       time.Duration
}

func (s *Stats) selected(b heuristic.Backend) {
	if int(b) < len(s.selections) {
		s.selections[b].Add(1)
	}
}

func (s *Stats) searched(b heuristic.Backend) {
	if int(b) < len(s.searches) {
		s.searches[b].Add(1)
	}
}

// Snapshot returns the current counter values.
func (s *Stats) Snapshot() Snapshot {
	s.mu.RLock()
	start := s.startTime
	s.mu.RUnlock()

	snap := Snapshot{
		Commands:     s.commands.Load(),
		Unsupported:  s.unsupported.Load(),
		Malformed:    s.malformed.Load(),
		IllegalMoves: s.illegalMoves.Load(),
		Selections:   make(map[string]int64, 2),
		Searches:     make(map[string]int64, 2),
		Switches:     s.switches.Load(),
		ForcedStops:  s.forcedStops.Load(),
		Errors:       s.errors.Load(),
		Uptime:       time.Since(start),
	}
	for _, b := range []heuristic.Backend{heuristic.BackendA, heuristic.BackendB} {
		snap.Selections[b.String()] = s.selections[b].Load()
		snap.Searches[b.String()] = s.searches[b].Load()
	}
	return snap
}

// Reset zeroes every counter.
func (s *Stats) Reset() {
	s.commands.Store(0)
	s.unsupported.Store(0)
	s.malformed.Store(0)
	s.illegalMoves.Store(0)
	for i := range s.selections {
		s.selections[i].Store(0)
		s.searches[i].Store(0)
	}
	s.switches.Store(0)
	s.forcedStops.Store(0)
	s.errors.Store(0)

	s.mu.Lock()
	s.startTime = time.Now()
	s.mu.Unlock()
}
