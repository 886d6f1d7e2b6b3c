package store

import (
	"context"
	"fmt"
	"sync"
)

// MemoryKV is an in-memory KV, used for tests and the "memory" backend.
type MemoryKV struct {
	mu     sync.RWMutex
	values map[string][]byte
	puts   int
}

// NewMemoryKV creates an empty in-memory store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{
		values: make(map[string][]byte),
	}
}

// Get returns a copy of the stored value.
func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Put stores a copy of value so callers cannot mutate stored data.
func (m *MemoryKV) Put(_ context.Context, key string, value []byte) error {
	if err := ValidateKey(key); err != nil {
		return fmt.Errorf("%w: %q", err, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	m.values[key] = v
	m.puts++
	return nil
}

// Delete removes key.
func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryKV) Close() error {
	return nil
}

// Puts returns how many writes the store has accepted.
func (m *MemoryKV) Puts() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.puts
}
