package storage

import (
	"context"
	"sync"

	"github.com/calliope-space/telemhist/internal/core/domain"
)

// MemoryStore is a map-backed RecordStore for tests and bench runs.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[domain.SlotID][]byte
}

// NewMemoryStore creates an empty in-memory record store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[domain.SlotID][]byte)}
}

// Put stores a copy of the record.
func (m *MemoryStore) Put(_ context.Context, slot domain.SlotID, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	m.records[slot] = buf
	return nil
}

// Get returns a copy of the record, or ErrRecordNotFound.
func (m *MemoryStore) Get(_ context.Context, slot domain.SlotID) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.records[slot]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return buf, nil
}

// Delete removes the record. Deleting an absent slot is a no-op.
func (m *MemoryStore) Delete(_ context.Context, slot domain.SlotID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, slot)
	return nil
}

// Close implements RecordStore.
func (m *MemoryStore) Close() error {
	return nil
}

// Len returns the number of stored records.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}
