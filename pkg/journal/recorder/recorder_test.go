package recorder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"headsup-hq/headsup/pkg/engine"
	"headsup-hq/headsup/pkg/journal"
	"headsup-hq/headsup/pkg/journal/storage"
)

// blockingStorage holds every Store call until release is closed.
type blockingStorage struct {
	*storage.MemoryStorage
	release chan struct{}
	once    sync.Once
}

func (s *blockingStorage) Store(ctx context.Context, r *journal.Record) error {
	<-s.release
	return s.MemoryStorage.Store(ctx, r)
}

func (s *blockingStorage) unblock() {
	s.once.Do(func() { close(s.release) })
}

func report(id, label string, outcome engine.Outcome) engine.SearchReport {
	return engine.SearchReport{
		ID:         id,
		Engine:     label,
		EngineName: "Alpha",
		Mode:       "movetime",
		FEN:        "8/8/8/8/8/8/8/K6k w - - 0 40",
		FullMove:   40,
		Material:   0,
		BestMove:   "a1a2",
		InfoLines:  3,
		StartedAt:  time.Now().Add(-time.Second),
		Duration:   time.Second,
		Outcome:    outcome,
	}
}

func TestRecorder_SearchFinishedIsStored(t *testing.T) {
	store := storage.NewMemoryStorage()
	rec := NewRecorder(store, DefaultConfig(), nil)

	rec.SearchStarted(report("s1", "engine1", ""))
	rec.SearchFinished(report("s1", "engine1", engine.OutcomeCompleted))
	rec.SearchFinished(report("s2", "engine2", engine.OutcomeFailed))

	if err := rec.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	records, err := store.Query(context.Background(), &journal.Query{SortOrder: "asc"})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	byID := map[string]*journal.Record{}
	for _, r := range records {
		byID[r.ID] = r
	}
	if r := byID["s1"]; r == nil || r.Engine != "engine1" || r.Outcome != "completed" || r.BestMove != "a1a2" {
		t.Errorf("unexpected record s1: %+v", r)
	}
	if r := byID["s2"]; r == nil || r.Outcome != "failed" {
		t.Errorf("unexpected record s2: %+v", r)
	}
	if byID["s1"].RecordedAt.IsZero() {
		t.Error("expected RecordedAt to be set")
	}
}

func TestRecorder_AssignsID(t *testing.T) {
	store := storage.NewMemoryStorage()
	rec := NewRecorder(store, DefaultConfig(), nil)

	r := &journal.Record{Engine: "engine1", Outcome: "completed", StartedAt: time.Now()}
	if err := rec.Record(r); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	rec.Close()

	if r.ID == "" {
		t.Error("expected a generated ID")
	}
	if n, _ := store.Count(context.Background(), &journal.Query{}); n != 1 {
		t.Errorf("expected 1 record, got %d", n)
	}
}

func TestRecorder_BufferFullDropsRecord(t *testing.T) {
	store := &blockingStorage{MemoryStorage: storage.NewMemoryStorage(), release: make(chan struct{})}
	rec := NewRecorder(store, &Config{Enabled: true, AsyncBuffer: 1, WriteTimeout: time.Second}, nil)
	defer func() {
		store.unblock()
		rec.Close()
	}()

	// The worker takes the first record and blocks in Store; the second
	// fills the buffer.
	if err := rec.Record(&journal.Record{ID: "a"}); err != nil {
		t.Fatalf("first Record() error = %v", err)
	}
	deadline := time.Now().Add(time.Second)
	for len(rec.recordChan) != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if err := rec.Record(&journal.Record{ID: "b"}); err != nil {
		t.Fatalf("second Record() error = %v", err)
	}

	start := time.Now()
	err := rec.Record(&journal.Record{ID: "c"})
	if !errors.Is(err, journal.ErrBufferFull) {
		t.Fatalf("expected ErrBufferFull, got %v", err)
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Error("Record must not block when the buffer is full")
	}
}

func TestRecorder_CloseDrainsAndRejects(t *testing.T) {
	store := storage.NewMemoryStorage()
	rec := NewRecorder(store, &Config{Enabled: true, AsyncBuffer: 16, WriteTimeout: time.Second}, nil)

	for _, id := range []string{"a", "b", "c"} {
		if err := rec.Record(&journal.Record{ID: id, StartedAt: time.Now()}); err != nil {
			t.Fatalf("Record(%s) error = %v", id, err)
		}
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := rec.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	if n, _ := store.Count(context.Background(), &journal.Query{}); n != 3 {
		t.Errorf("expected buffered records to be written, got %d", n)
	}

	err := rec.Record(&journal.Record{ID: "d"})
	var recErr *journal.RecorderError
	if !errors.As(err, &recErr) || !errors.Is(err, journal.ErrRecorderClosed) {
		t.Errorf("expected closed RecorderError, got %v", err)
	}
}

func TestRecorder_Disabled(t *testing.T) {
	store := storage.NewMemoryStorage()
	rec := NewRecorder(store, &Config{Enabled: false}, nil)

	rec.SearchFinished(report("s1", "engine1", engine.OutcomeCompleted))
	rec.Close()

	if n, _ := store.Count(context.Background(), &journal.Query{}); n != 0 {
		t.Errorf("expected nothing recorded, got %d", n)
	}
}
