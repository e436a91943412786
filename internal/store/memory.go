package store

import (
	"sync"
)

// Memory is an in-memory store, used for tests and for sessions that
// should not touch disk.
type Memory struct {
	mu       sync.RWMutex
	seq      int64
	log      []memoryEntry
	metadata map[string]string
}

type memoryEntry struct {
	Definition
	ts string
}

// NewMemory creates a new in-memory store.
func NewMemory() *Memory {
	return &Memory{
		metadata: make(map[string]string),
	}
}

// latest returns the index of the newest entry for name, or -1.
func (m *Memory) latest(name string) int {
	for i := len(m.log) - 1; i >= 0; i-- {
		if m.log[i].Name == name {
			return i
		}
	}
	return -1
}

// Append records a new version of name.
func (m *Memory) Append(name, source string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	version := 1
	if i := m.latest(name); i >= 0 {
		if m.log[i].Source == source {
			return m.log[i].Version, nil
		}
		version = m.log[i].Version + 1
	}
	m.seq++
	m.log = append(m.log, memoryEntry{
		Definition: Definition{Seq: m.seq, Name: name, Version: version, Source: source},
		ts:         timestamp(),
	})
	return version, nil
}

// Get retrieves the latest source for name.
func (m *Memory) Get(name string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i := m.latest(name); i >= 0 {
		return m.log[i].Source, true, nil
	}
	return "", false, nil
}

// Delete removes every version of name.
func (m *Memory) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.log[:0]
	for _, e := range m.log {
		if e.Name != name {
			kept = append(kept, e)
		}
	}
	m.log = kept
	return nil
}

// All returns every entry in sequence order.
func (m *Memory) All() ([]Definition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	defs := make([]Definition, len(m.log))
	for i, e := range m.log {
		defs[i] = e.Definition
	}
	return defs, nil
}

// History returns versions of name, newest first.
func (m *Memory) History(name string, limit int) ([]VersionEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var entries []VersionEntry
	for i := len(m.log) - 1; i >= 0; i-- {
		if m.log[i].Name != name {
			continue
		}
		entries = append(entries, VersionEntry{
			Version: m.log[i].Version,
			Value:   m.log[i].Source,
			Ts:      m.log[i].ts,
		})
		if limit > 0 && len(entries) == limit {
			break
		}
	}
	return entries, nil
}

// Close is a no-op for memory store.
func (m *Memory) Close() error {
	return nil
}

// GetMetadata retrieves a metadata value by key.
func (m *Memory) GetMetadata(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.metadata[key], nil
}

// SetMetadata stores a metadata value by key.
func (m *Memory) SetMetadata(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metadata[key] = value
	return nil
}
