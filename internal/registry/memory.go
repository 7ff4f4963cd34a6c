package registry

import (
	"context"
	"sync"
)

// MemoryBackend keeps records in a map.
type MemoryBackend struct {
	mu     sync.RWMutex
	values map[string]map[string]any
}

// NewMemoryBackend creates an empty backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: map[string]map[string]any{}}
}

// NewMemoryRegistry returns a Registry backed by memory.
func NewMemoryRegistry() *Store {
	return NewStore(NewMemoryBackend())
}

func (m *MemoryBackend) Load(_ context.Context, iface, name string) (any, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[iface][name]
	return cloneValue(v), ok, nil
}

func (m *MemoryBackend) Save(_ context.Context, iface, name string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values[iface] == nil {
		m.values[iface] = map[string]any{}
	}
	m.values[iface][name] = cloneValue(value)
	return nil
}

// replace swaps the full contents, used by FileBackend reloads.
func (m *MemoryBackend) replace(values map[string]map[string]any) {
	m.mu.Lock()
	m.values = values
	m.mu.Unlock()
}

func (m *MemoryBackend) snapshot() map[string]map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]map[string]any, len(m.values))
	for iface, records := range m.values {
		out[iface] = make(map[string]any, len(records))
		for k, v := range records {
			out[iface][k] = cloneValue(v)
		}
	}
	return out
}
