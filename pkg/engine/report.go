package engine

import "time"

// Outcome is how a search ended.
type Outcome string

const (
	// OutcomeCompleted means the backend finished on its own.
	OutcomeCompleted Outcome = "completed"
	// OutcomeStopped means the search ended after a stop command.
	OutcomeStopped Outcome = "stopped"
	// OutcomeFailed means the backend failed before answering.
	OutcomeFailed Outcome = "failed"
)

// SearchReport describes one search delegated to a backend.
type SearchReport struct {
	ID         string
	Engine     string
	EngineName string
	Mode       string
	FEN        string
	Position   string
	FullMove   int
	Material   int
	BestMove   string
	Ponder     string
	InfoLines  int
	StartedAt  time.Time
	Duration   time.Duration
	Outcome    Outcome
	Error      string
}

// Observer receives search lifecycle events from supervisors. Methods are
// called from supervisor workers and must not block.
type Observer interface {
	SearchStarted(report SearchReport)
	SearchFinished(report SearchReport)
	BackendFailed(engine string, err error)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) SearchStarted(SearchReport)  {}
func (NopObserver) SearchFinished(SearchReport) {}
func (NopObserver) BackendFailed(string, error) {}

// MultiObserver fans events out to several observers in order.
type MultiObserver []Observer

func (m MultiObserver) SearchStarted(r SearchReport) {
	for _, o := range m {
		o.SearchStarted(r)
	}
}

func (m MultiObserver) SearchFinished(r SearchReport) {
	for _, o := range m {
		o.SearchFinished(r)
	}
}

func (m MultiObserver) BackendFailed(engine string, err error) {
	for _, o := range m {
		o.BackendFailed(engine, err)
	}
}
