package store

import (
	"sync"

	"edumate/pkg/domain"
)

// MemoryStore keeps records in-process. It backs tests and local runs
// without a database, and mirrors the durable store's contract exactly
// apart from durability.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]domain.ContentRecord
	order  []int64
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID: 1,
		byID:   make(map[int64]domain.ContentRecord),
	}
}

// Create assigns the next ID and stores the record.
func (m *MemoryStore) Create(c domain.NewContent) (domain.ContentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := recordFromNew(c)
	rec.ID = m.nextID
	m.nextID++
	m.byID[rec.ID] = rec
	m.order = append(m.order, rec.ID)
	return rec, nil
}

// ListAll returns records in insertion order.
func (m *MemoryStore) ListAll() ([]domain.ContentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.ContentRecord, 0, len(m.order))
	for _, id := range m.order {
		if rec, ok := m.byID[id]; ok {
			res = append(res, rec)
		}
	}
	return res, nil
}

// GetByID retrieves one record.
func (m *MemoryStore) GetByID(id int64) (domain.ContentRecord, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.byID[id]
	return rec, ok, nil
}

// DeleteByID removes one record; deleting twice is harmless.
func (m *MemoryStore) DeleteByID(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return nil
	}
	delete(m.byID, id)
	filtered := m.order[:0]
	for _, item := range m.order {
		if item != id {
			filtered = append(filtered, item)
		}
	}
	m.order = filtered
	return nil
}

// ClearAll removes every record. The ID counter is not reset, keeping
// IDs monotonically distinct across the store's lifetime.
func (m *MemoryStore) ClearAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID = make(map[int64]domain.ContentRecord)
	m.order = nil
	return nil
}
