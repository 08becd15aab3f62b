package storage

import (
	"context"
	"sort"
	"sync"

	"keelson-hq/sprintgate/pkg/audit"
)

// MemoryStorage implements the audit.Storage interface in memory. It backs
// tests and the "memory" backend, which keeps records only for the life of
// the process.
type MemoryStorage struct {
	records map[string]*audit.Record
	mu      sync.RWMutex
}

// NewMemoryStorage creates a new in-memory storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{records: make(map[string]*audit.Record)}
}

// Store saves a copy of the record.
func (s *MemoryStorage) Store(ctx context.Context, record *audit.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[record.ID] = copyRecord(record)
	return nil
}

// Query retrieves records matching the query filters, newest first unless
// the query asks for ascending order.
func (s *MemoryStorage) Query(ctx context.Context, q *audit.Query) ([]*audit.Record, error) {
	s.mu.RLock()
	matched := make([]*audit.Record, 0, len(s.records))
	for _, r := range s.records {
		if matchesQuery(r, q) {
			matched = append(matched, copyRecord(r))
		}
	}
	s.mu.RUnlock()

	asc := ascending(q)
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			if asc {
				return a.Timestamp.Before(b.Timestamp)
			}
			return a.Timestamp.After(b.Timestamp)
		}
		if asc {
			return a.ID < b.ID
		}
		return a.ID > b.ID
	})

	start := 0
	if q != nil && q.Offset > 0 {
		start = q.Offset
	}
	if start >= len(matched) {
		return []*audit.Record{}, nil
	}
	end := start + limitOf(q)
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], nil
}

// Count returns the number of records matching the filters.
func (s *MemoryStorage) Count(ctx context.Context, q *audit.Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, r := range s.records {
		if matchesQuery(r, q) {
			n++
		}
	}
	return n, nil
}

// Delete removes records matching the filters.
func (s *MemoryStorage) Delete(ctx context.Context, q *audit.Query) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, r := range s.records {
		if matchesQuery(r, q) {
			delete(s.records, id)
			n++
		}
	}
	return n, nil
}

// Close is a no-op for memory storage.
func (s *MemoryStorage) Close() error {
	return nil
}

func copyRecord(r *audit.Record) *audit.Record {
	c := *r
	if r.Warnings != nil {
		c.Warnings = append([]string(nil), r.Warnings...)
	}
	return &c
}
