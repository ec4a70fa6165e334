package storage

import (
	"sync"
)

// Memory is an in-process Backend, mostly for tests.
type Memory struct {
	mu     sync.RWMutex
	raw    any
	writes int

	// FailWrites, when set, is returned by every Write.
	FailWrites error
}

func NewMemory() *Memory {
	return &Memory{}
}

// Seed replaces the stored value with an arbitrary decoded document, as if
// it had been read from disk.
func (m *Memory) Seed(raw any) {
	m.mu.Lock()
	m.raw = raw
	m.mu.Unlock()
}

// Writes reports how many successful writes the backend has seen.
func (m *Memory) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}

func (m *Memory) Location() string { return "memory" }

func (m *Memory) Close() error { return nil }

func (m *Memory) Read() (any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.raw == nil {
		return nil, ErrMissing
	}
	return m.raw, nil
}

func (m *Memory) Write(tasks []Task) error {
	if m.FailWrites != nil {
		return m.FailWrites
	}
	items := make([]any, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, toRecord(t))
	}
	m.mu.Lock()
	m.raw = items
	m.writes++
	m.mu.Unlock()
	return nil
}
