package storage

import (
	"context"
	"sort"
	"sync"

	"headsup-hq/headsup/pkg/journal"
)

// MemoryStorage implements journal.Storage using an in-memory map. The
// history is lost when the process exits.
type MemoryStorage struct {
	records map[string]*journal.Record
	mu      sync.RWMutex
}

var _ journal.Storage = (*MemoryStorage)(nil)

// NewMemoryStorage creates a new in-memory storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		records: make(map[string]*journal.Record),
	}
}

// Store persists a record to memory.
func (s *MemoryStorage) Store(ctx context.Context, record *journal.Record) error {
	if err := ctx.Err(); err != nil {
		return journal.NewStorageError("memory", "store", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recordCopy := *record
	s.records[record.ID] = &recordCopy

	return nil
}

// Query retrieves records matching the query filters.
func (s *MemoryStorage) Query(ctx context.Context, query *journal.Query) ([]*journal.Record, error) {
	s.mu.RLock()
	results := s.filter(query)
	s.mu.RUnlock()

	sortRecords(results, query.SortOrder)

	start := query.Offset
	if start > len(results) {
		return []*journal.Record{}, nil
	}
	results = results[start:]

	if query.Limit > 0 && query.Limit < len(results) {
		results = results[:query.Limit]
	}

	return results, nil
}

// Count returns the number of records matching the query filters.
func (s *MemoryStorage) Count(ctx context.Context, query *journal.Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, record := range s.records {
		if query.Matches(record) {
			count++
		}
	}
	return count, nil
}

// Delete removes records matching the query filters.
func (s *MemoryStorage) Delete(ctx context.Context, query *journal.Query) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, record := range s.records {
		if query.Matches(record) {
			delete(s.records, id)
			deleted++
		}
	}
	return deleted, nil
}

// Close releases resources held by the storage backend.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*journal.Record)
	return nil
}

// filter returns copies of the matching records. The caller holds s.mu.
func (s *MemoryStorage) filter(query *journal.Query) []*journal.Record {
	results := []*journal.Record{}
	for _, record := range s.records {
		if query.Matches(record) {
			recordCopy := *record
			results = append(results, &recordCopy)
		}
	}
	return results
}

func sortRecords(records []*journal.Record, order string) {
	asc := order == "asc" || order == "ASC"
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i].StartedAt, records[j].StartedAt
		if a.Equal(b) {
			return records[i].ID < records[j].ID
		}
		if asc {
			return a.Before(b)
		}
		return a.After(b)
	})
}
