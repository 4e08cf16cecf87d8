package store

import (
	"context"
	"sync"

	"indcat/internal/core"
)

// MemoryStore implements Store with an in-process map.
// This is the default backend; entries are volatile and lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[core.CacheKey]*Entry
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[core.CacheKey]*Entry),
	}
}

// Get retrieves the entry for key, or nil if none exists.
func (s *MemoryStore) Get(ctx context.Context, key core.CacheKey) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	return entry, nil
}

// Put replaces the entry for key wholesale.
func (s *MemoryStore) Put(ctx context.Context, key core.CacheKey, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry
	return nil
}

// Close is a no-op for the memory store.
func (s *MemoryStore) Close() error {
	return nil
}
