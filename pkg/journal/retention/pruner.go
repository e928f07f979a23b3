package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"headsup-hq/headsup/pkg/journal"
)

// Config contains configuration for the retention pruner.
type Config struct {
	// RetentionDays is the number of days to keep records.
	// 0 means keep them forever.
	RetentionDays int

	// MaxRecords is the maximum number of records to keep.
	// 0 means unlimited.
	MaxRecords int64

	// PruneSchedule is a cron expression for scheduling pruning.
	// Example: "0 4 * * *" (daily at 4 AM)
	PruneSchedule string
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		RetentionDays: 30,
		PruneSchedule: "0 4 * * *",
	}
}

// Pruner enforces retention on journal records.
type Pruner struct {
	storage   journal.Storage
	config    *Config
	logger    *slog.Logger
	scheduler *Scheduler
	now       func() time.Time
}

// NewPruner creates a new retention pruner.
func NewPruner(storage journal.Storage, config *Config, logger *slog.Logger) *Pruner {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	p := &Pruner{
		storage: storage,
		config:  config,
		logger:  logger.With("component", "journal.retention"),
		now:     time.Now,
	}
	p.scheduler = NewScheduler(p)

	return p
}

// Prune deletes records older than the retention period, then the oldest
// records beyond MaxRecords. It returns the total number deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	var totalDeleted int64

	if p.config.RetentionDays > 0 {
		deleted, err := p.pruneByAge(ctx)
		if err != nil {
			return totalDeleted, fmt.Errorf("prune by age failed: %w", err)
		}
		totalDeleted += deleted
	}

	if p.config.MaxRecords > 0 {
		deleted, err := p.pruneByCount(ctx)
		if err != nil {
			return totalDeleted, fmt.Errorf("prune by count failed: %w", err)
		}
		totalDeleted += deleted
	}

	if totalDeleted > 0 {
		p.logger.Info("journal pruning completed",
			"total_deleted", totalDeleted,
			"retention_days", p.config.RetentionDays,
			"max_records", p.config.MaxRecords,
		)
	}

	return totalDeleted, nil
}

func (p *Pruner) pruneByAge(ctx context.Context) (int64, error) {
	cutoff := p.now().AddDate(0, 0, -p.config.RetentionDays)

	deleted, err := p.storage.Delete(ctx, &journal.Query{EndTime: &cutoff})
	if err != nil {
		return 0, journal.NewRetentionError(p.config.RetentionDays, err)
	}
	return deleted, nil
}

// pruneByCount deletes the oldest records so that at most MaxRecords remain.
func (p *Pruner) pruneByCount(ctx context.Context) (int64, error) {
	count, err := p.storage.Count(ctx, &journal.Query{})
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	if count <= p.config.MaxRecords {
		return 0, nil
	}

	toDelete := count - p.config.MaxRecords
	oldest, err := p.storage.Query(ctx, &journal.Query{SortOrder: "asc", Limit: int(toDelete)})
	if err != nil {
		return 0, fmt.Errorf("failed to query records: %w", err)
	}
	if len(oldest) == 0 {
		return 0, nil
	}

	cutoff := oldest[len(oldest)-1].StartedAt
	deleted, err := p.storage.Delete(ctx, &journal.Query{EndTime: &cutoff})
	if err != nil {
		return 0, fmt.Errorf("delete failed: %w", err)
	}
	return deleted, nil
}

// Start starts the automatic pruning scheduler.
func (p *Pruner) Start(ctx context.Context) error {
	return p.scheduler.Start(ctx)
}

// Stop stops the automatic pruning scheduler.
func (p *Pruner) Stop() {
	p.scheduler.Stop()
}

// NextPruning returns the time of the next scheduled pruning.
func (p *Pruner) NextPruning() *time.Time {
	return p.scheduler.NextRun()
}
