package recorder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"headsup-hq/headsup/pkg/engine"
	"headsup-hq/headsup/pkg/journal"
)

// Config contains configuration for the journal recorder.
type Config struct {
	// Enabled enables recording.
	Enabled bool

	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 256
	AsyncBuffer int

	// WriteTimeout is the timeout for writing a record to storage.
	// Default: 5 seconds
	WriteTimeout time.Duration
}

// DefaultConfig returns the default recorder configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:      true,
		AsyncBuffer:  256,
		WriteTimeout: 5 * time.Second,
	}
}

// Recorder writes finished searches to storage. It implements
// engine.Observer; records are queued and written by a background worker so
// supervisors never wait on storage.
type Recorder struct {
	storage    journal.Storage
	config     *Config
	recordChan chan *journal.Record
	wg         sync.WaitGroup
	logger     *slog.Logger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

var _ engine.Observer = (*Recorder)(nil)

// NewRecorder creates a recorder over storage and starts its worker.
func NewRecorder(storage journal.Storage, config *Config, logger *slog.Logger) *Recorder {
	if config == nil {
		config = DefaultConfig()
	}
	if config.AsyncBuffer <= 0 {
		config.AsyncBuffer = 256
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := &Recorder{
		storage:    storage,
		config:     config,
		recordChan: make(chan *journal.Record, config.AsyncBuffer),
		done:       make(chan struct{}),
		logger:     logger.With("component", "journal.recorder"),
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Debug("journal recorder initialized",
		"async_buffer", config.AsyncBuffer,
		"write_timeout", config.WriteTimeout,
	)

	return r
}

// SearchStarted implements engine.Observer. Searches are recorded when they
// finish.
func (r *Recorder) SearchStarted(engine.SearchReport) {}

// SearchFinished implements engine.Observer.
func (r *Recorder) SearchFinished(report engine.SearchReport) {
	if err := r.Record(journal.FromReport(report)); err != nil {
		r.logger.Warn("search not journaled", "search_id", report.ID, "error", err)
	}
}

// BackendFailed implements engine.Observer. The failed search, if any, is
// reported separately through SearchFinished.
func (r *Recorder) BackendFailed(name string, err error) {
	r.logger.Debug("backend failure noted", "engine", name, "error", err)
}

// Record enqueues a record for writing. It never blocks: a full buffer drops
// the record.
func (r *Recorder) Record(record *journal.Record) error {
	if !r.config.Enabled {
		return nil
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.RecordedAt.IsZero() {
		record.RecordedAt = time.Now()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return journal.NewRecorderError(record.ID, journal.ErrRecorderClosed)
	}

	select {
	case r.recordChan <- record:
		return nil
	default:
		r.logger.Error("journal channel full, dropping record",
			"record_id", record.ID,
			"channel_capacity", r.config.AsyncBuffer,
		)
		return journal.NewRecorderError(record.ID, journal.ErrBufferFull)
	}
}

// Close stops accepting records, drains the buffer and waits for the
// pending writes. It does not close the storage.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.done)
	r.mu.Unlock()

	r.wg.Wait()
	r.logger.Debug("journal recorder shut down")
	return nil
}

func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case record := <-r.recordChan:
			r.writeRecord(record)

		case <-r.done:
			for {
				select {
				case record := <-r.recordChan:
					r.writeRecord(record)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) writeRecord(record *journal.Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	start := time.Now()
	if err := r.storage.Store(ctx, record); err != nil {
		r.logger.Error("failed to store journal record",
			"record_id", record.ID,
			"error", err,
		)
		return
	}

	duration := time.Since(start)
	r.logger.Debug("search journaled",
		"record_id", record.ID,
		"engine", record.Engine,
		"outcome", record.Outcome,
		"duration_ms", duration.Milliseconds(),
	)

	if duration > r.config.WriteTimeout/2 {
		r.logger.Warn("slow journal write",
			"record_id", record.ID,
			"duration_ms", duration.Milliseconds(),
			"threshold_ms", (r.config.WriteTimeout / 2).Milliseconds(),
		)
	}
}
