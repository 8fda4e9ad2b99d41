package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"mercator-hq/chatrelay/pkg/calls"
)

// MemoryStorage implements calls.Storage using an in-memory map.
// Records are lost when the process exits.
type MemoryStorage struct {
	records map[string]*calls.CallRecord
	mu      sync.RWMutex
	closed  bool
}

// NewMemoryStorage creates a new in-memory storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		records: make(map[string]*calls.CallRecord),
	}
}

// Store saves a copy of record. An existing uuid is rejected.
func (s *MemoryStorage) Store(ctx context.Context, record *calls.CallRecord) error {
	if err := ctx.Err(); err != nil {
		return calls.NewStorageError("memory", "store", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return calls.NewStorageError("memory", "store", fmt.Errorf("storage is closed"))
	}
	if _, exists := s.records[record.UUID]; exists {
		return calls.NewStorageError("memory", "store", fmt.Errorf("%w: %s", calls.ErrDuplicate, record.UUID))
	}

	if record.CallTime.IsZero() {
		record.CallTime = time.Now().UTC()
	}

	// Round-trip through the stored layout so reads match the SQLite backend.
	recordCopy := *record
	recordCopy.CallTime = recordCopy.CallTime.UTC().Truncate(time.Microsecond)
	s.records[record.UUID] = &recordCopy

	return nil
}

// Get returns a copy of the record with the given uuid.
func (s *MemoryStorage) Get(ctx context.Context, uuid string) (*calls.CallRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[uuid]
	if !ok {
		return nil, calls.ErrNotFound
	}
	recordCopy := *record
	return &recordCopy, nil
}

// List retrieves records matching the query filters, newest first.
func (s *MemoryStorage) List(ctx context.Context, query *calls.Query) ([]*calls.CallRecord, error) {
	if query == nil {
		query = &calls.Query{}
	}

	s.mu.RLock()
	results := []*calls.CallRecord{}
	for _, record := range s.records {
		if matchesQuery(record, query) {
			recordCopy := *record
			results = append(results, &recordCopy)
		}
	}
	s.mu.RUnlock()

	sort.Slice(results, func(i, j int) bool {
		if !results[i].CallTime.Equal(results[j].CallTime) {
			return results[i].CallTime.After(results[j].CallTime)
		}
		return results[i].UUID < results[j].UUID
	})

	start := query.Offset
	if start > len(results) {
		return []*calls.CallRecord{}, nil
	}

	limit := calls.DefaultListLimit
	if query.Limit > 0 {
		limit = query.Limit
	}
	end := start + limit
	if end > len(results) {
		end = len(results)
	}

	return results[start:end], nil
}

// Count returns the number of records matching the query filters.
func (s *MemoryStorage) Count(ctx context.Context, query *calls.Query) (int64, error) {
	if query == nil {
		query = &calls.Query{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, record := range s.records {
		if matchesQuery(record, query) {
			count++
		}
	}
	return count, nil
}

// Ping reports an error once the storage is closed.
func (s *MemoryStorage) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return calls.NewStorageError("memory", "ping", fmt.Errorf("storage is closed"))
	}
	return nil
}

// Close marks the storage closed. Stored records remain readable.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

func matchesQuery(record *calls.CallRecord, query *calls.Query) bool {
	if query.Model != "" && record.Model != query.Model {
		return false
	}
	if query.Since != nil && record.CallTime.Before(*query.Since) {
		return false
	}
	if query.Until != nil && !record.CallTime.Before(*query.Until) {
		return false
	}
	if query.ErrorFlag != nil && record.ErrorFlag != *query.ErrorFlag {
		return false
	}
	return true
}
