package retention

import (
	"context"
	"fmt"
	"testing"
	"time"

	"headsup-hq/headsup/pkg/journal"
	"headsup-hq/headsup/pkg/journal/storage"
)

var now = time.Date(2026, 6, 15, 4, 0, 0, 0, time.UTC)

func seedDays(t *testing.T, s journal.Storage, ages ...int) {
	t.Helper()
	for i, days := range ages {
		r := &journal.Record{
			ID:        fmt.Sprintf("rec-%02d", i),
			Engine:    "engine1",
			Outcome:   "completed",
			StartedAt: now.AddDate(0, 0, -days),
		}
		if err := s.Store(context.Background(), r); err != nil {
			t.Fatalf("Store() error = %v", err)
		}
	}
}

func newTestPruner(s journal.Storage, cfg *Config) *Pruner {
	p := NewPruner(s, cfg, nil)
	p.now = func() time.Time { return now }
	return p
}

func TestPruner_Prune(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		ages        []int
		wantDeleted int64
		wantLeft    int64
	}{
		{
			name:        "by age",
			config:      Config{RetentionDays: 30},
			ages:        []int{1, 10, 29, 31, 60},
			wantDeleted: 2,
			wantLeft:    3,
		},
		{
			name:        "by count",
			config:      Config{MaxRecords: 2},
			ages:        []int{1, 2, 3, 4},
			wantDeleted: 2,
			wantLeft:    2,
		},
		{
			name:        "age then count",
			config:      Config{RetentionDays: 30, MaxRecords: 1},
			ages:        []int{1, 5, 45},
			wantDeleted: 2,
			wantLeft:    1,
		},
		{
			name:        "keep forever",
			config:      Config{},
			ages:        []int{1, 400},
			wantDeleted: 0,
			wantLeft:    2,
		},
		{
			name:        "count within limit",
			config:      Config{MaxRecords: 5},
			ages:        []int{1, 2},
			wantDeleted: 0,
			wantLeft:    2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := storage.NewMemoryStorage()
			seedDays(t, s, tt.ages...)

			cfg := tt.config
			deleted, err := newTestPruner(s, &cfg).Prune(context.Background())
			if err != nil {
				t.Fatalf("Prune() error = %v", err)
			}
			if deleted != tt.wantDeleted {
				t.Errorf("deleted = %d, want %d", deleted, tt.wantDeleted)
			}

			left, _ := s.Count(context.Background(), &journal.Query{})
			if left != tt.wantLeft {
				t.Errorf("left = %d, want %d", left, tt.wantLeft)
			}
		})
	}
}

func TestPruner_CountKeepsNewest(t *testing.T) {
	s := storage.NewMemoryStorage()
	seedDays(t, s, 3, 1, 2)

	if _, err := newTestPruner(s, &Config{MaxRecords: 1}).Prune(context.Background()); err != nil {
		t.Fatalf("Prune() error = %v", err)
	}

	records, _ := s.Query(context.Background(), &journal.Query{})
	if len(records) != 1 || records[0].ID != "rec-01" {
		t.Errorf("expected only the newest record, got %+v", records)
	}
}

func TestScheduler_StartStop(t *testing.T) {
	p := newTestPruner(storage.NewMemoryStorage(), &Config{RetentionDays: 30, PruneSchedule: "0 4 * * *"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := p.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !p.scheduler.IsRunning() {
		t.Fatal("expected scheduler to be running")
	}

	next := p.NextPruning()
	if next == nil {
		t.Fatal("expected a next pruning time")
	}
	if next.Hour() != 4 || next.Minute() != 0 {
		t.Errorf("expected next run at 04:00, got %v", next)
	}

	p.Stop()
	if p.scheduler.IsRunning() {
		t.Error("expected scheduler to be stopped")
	}
}

func TestScheduler_StopsOnContextCancel(t *testing.T) {
	p := newTestPruner(storage.NewMemoryStorage(), &Config{PruneSchedule: "@every 1h"})

	ctx, cancel := context.WithCancel(context.Background())
	if err := p.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	cancel()

	deadline := time.Now().Add(time.Second)
	for p.scheduler.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if p.scheduler.IsRunning() {
		t.Error("expected scheduler to stop after cancellation")
	}
}

func TestScheduler_Schedules(t *testing.T) {
	tests := []struct {
		name     string
		schedule string
		wantErr  bool
		running  bool
	}{
		{"empty disables", "", false, false},
		{"invalid", "every day", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPruner(storage.NewMemoryStorage(), &Config{PruneSchedule: tt.schedule})
			err := p.Start(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("Start() error = %v, wantErr %v", err, tt.wantErr)
			}
			if p.scheduler.IsRunning() != tt.running {
				t.Errorf("running = %v, want %v", p.scheduler.IsRunning(), tt.running)
			}
			if p.NextPruning() != nil {
				t.Error("expected no scheduled run")
			}
		})
	}
}
