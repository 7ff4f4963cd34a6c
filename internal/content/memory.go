package content

import (
	"context"
	"sync"
)

// MemoryStore keeps items in memory. It is safe for concurrent use and hands
// out copies, so callers never share state with the store.
type MemoryStore struct {
	mu        sync.RWMutex
	items     map[string]*Item
	reindexed map[string]int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items:     make(map[string]*Item),
		reindexed: make(map[string]int),
	}
}

func (s *MemoryStore) Get(_ context.Context, path string) (*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[JoinPath(path)]
	if !ok {
		return nil, ErrNotFound.WithContext("path", path)
	}
	return item.Clone(), nil
}

func (s *MemoryStore) Put(_ context.Context, item *Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[JoinPath(item.Path)] = item.Clone()
	return nil
}

func (s *MemoryStore) Find(_ context.Context, q Query) ([]*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Item
	for _, item := range s.items {
		if q.Matches(item) {
			out = append(out, item.Clone())
		}
	}
	return out, nil
}

func (s *MemoryStore) Reindex(_ context.Context, item *Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reindexed[JoinPath(item.Path)]++
	return nil
}

// ReindexCount returns how many times the item at path was reindexed.
func (s *MemoryStore) ReindexCount(path string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reindexed[JoinPath(path)]
}

func (s *MemoryStore) Close() error { return nil }
