package journal

import (
	"context"
	"time"

	"headsup-hq/headsup/pkg/engine"
)

// Record is one completed search as delegated to a backend.
type Record struct {
	ID string `json:"id"` // UUID v4, shared with the search report

	// Engine
	Engine     string `json:"engine"`      // Configuration label ("engine1", "engine2")
	EngineName string `json:"engine_name"` // Name from the backend's "id name"

	// Position
	FEN      string `json:"fen"`
	FullMove int    `json:"fullmove"`
	Material int    `json:"material"` // Non-king piece value, both sides

	// Search
	Mode      string `json:"mode"` // movetime, clock, infinite, ponder
	BestMove  string `json:"bestmove"`
	Ponder    string `json:"ponder,omitempty"`
	InfoLines int    `json:"info_lines"`
	Outcome   string `json:"outcome"` // completed, stopped, failed
	Error     string `json:"error,omitempty"`

	// Timing
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
	RecordedAt time.Time     `json:"recorded_at"`
}

// FromReport converts a finished search report into a record.
func FromReport(r engine.SearchReport) *Record {
	return &Record{
		ID:         r.ID,
		Engine:     r.Engine,
		EngineName: r.EngineName,
		FEN:        r.FEN,
		FullMove:   r.FullMove,
		Material:   r.Material,
		Mode:       r.Mode,
		BestMove:   r.BestMove,
		Ponder:     r.Ponder,
		InfoLines:  r.InfoLines,
		Outcome:    string(r.Outcome),
		Error:      r.Error,
		StartedAt:  r.StartedAt,
		Duration:   r.Duration,
		RecordedAt: time.Now(),
	}
}

// Query defines filter parameters for querying records.
type Query struct {
	// Time range on StartedAt
	StartTime *time.Time `json:"start_time,omitempty"` // Inclusive start time
	EndTime   *time.Time `json:"end_time,omitempty"`   // Inclusive end time

	// Filters
	Engine  string `json:"engine,omitempty"`  // Filter by configuration label
	Mode    string `json:"mode,omitempty"`    // Filter by search mode
	Outcome string `json:"outcome,omitempty"` // Filter by outcome

	// Pagination
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`

	// SortOrder is "asc" or "desc" on StartedAt. Default: "desc".
	SortOrder string `json:"sort_order,omitempty"`
}

// Matches reports whether r satisfies the filters of q. Pagination and
// ordering are ignored.
func (q *Query) Matches(r *Record) bool {
	if q.StartTime != nil && r.StartedAt.Before(*q.StartTime) {
		return false
	}
	if q.EndTime != nil && r.StartedAt.After(*q.EndTime) {
		return false
	}
	if q.Engine != "" && r.Engine != q.Engine {
		return false
	}
	if q.Mode != "" && r.Mode != q.Mode {
		return false
	}
	if q.Outcome != "" && r.Outcome != q.Outcome {
		return false
	}
	return true
}

// Storage defines the interface for journal storage backends.
// Implementations must be safe for concurrent use.
type Storage interface {
	// Store persists a record.
	Store(ctx context.Context, record *Record) error

	// Query retrieves records matching the query filters.
	// Returns an empty slice if no records match.
	Query(ctx context.Context, query *Query) ([]*Record, error)

	// Count returns the number of records matching the query filters.
	Count(ctx context.Context, query *Query) (int64, error)

	// Delete removes records matching the query filters and returns the
	// number of records deleted. Pagination is ignored.
	Delete(ctx context.Context, query *Query) (int64, error)

	// Close releases any resources held by the storage backend.
	Close() error
}
