package querycache

import (
	"context"
	"sync"
)

// MemoryStore keeps entries for the lifetime of the process.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[Key]Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[Key]Entry)}
}

func (m *MemoryStore) Get(_ context.Context, key Key) (Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[key]
	if !ok {
		return Entry{}, ErrCacheMiss
	}
	e.Data = clone(e.Data)
	return e, nil
}

func (m *MemoryStore) Set(_ context.Context, key Key, e Entry) error {
	e.Data = clone(e.Data)

	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) MarkStale(_ context.Context, key Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entries[key]; ok {
		e.Stale = true
		m.entries[key] = e
	}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key Key) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}
