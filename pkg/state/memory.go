package state

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore keeps the document as encoded bytes in memory, so loads and
// saves go through the same codec as FileStore.
type MemoryStore struct {
	mu    sync.Mutex
	data  []byte
	saves int
}

// NewMemoryStore creates a store holding s, or an empty store when s is nil.
func NewMemoryStore(s *ProjectState) *MemoryStore {
	m := &MemoryStore{}
	if s != nil {
		data, err := json.Marshal(s)
		if err != nil {
			panic(err)
		}
		m.data = data
	}
	return m
}

// NewMemoryStoreRaw creates a store holding an arbitrary document, which
// may be malformed.
func NewMemoryStoreRaw(data []byte) *MemoryStore {
	return &MemoryStore{data: append([]byte(nil), data...)}
}

// Load decodes the held document.
func (m *MemoryStore) Load(ctx context.Context) (*ProjectState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data == nil {
		return nil, ErrNotFound
	}
	return decode("", m.data)
}

// Save encodes and holds the document.
func (m *MemoryStore) Save(ctx context.Context, s *ProjectState) error {
	data, err := json.Marshal(s)
	if err != nil {
		return &StoreError{Operation: "save", Cause: err}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = data
	m.saves++
	return nil
}

// Saves returns how many times Save succeeded.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Bytes returns a copy of the held document.
func (m *MemoryStore) Bytes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.data...)
}
