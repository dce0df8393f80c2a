package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"contentgw/internal/cache"
	"contentgw/pkg/platform/sentinel"
)

// InMemoryStore keeps entries in a process-local map. Stale entries stay until
// overwritten or purged; the cache decides freshness on every read.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[cache.Key]cache.Entry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[cache.Key]cache.Entry)}
}

func (s *InMemoryStore) Load(_ context.Context, key cache.Key) (*cache.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[key]
	if !ok {
		return nil, fmt.Errorf("cache entry %s: %w", key, sentinel.ErrNotFound)
	}
	entry.Payload = slices.Clone(entry.Payload)
	return &entry, nil
}

func (s *InMemoryStore) Save(_ context.Context, entry *cache.Entry) error {
	stored := *entry
	stored.Payload = slices.Clone(entry.Payload)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.Key] = stored
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, key cache.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Purge removes entries that are no longer fresh at now and returns how many
// were dropped.
func (s *InMemoryStore) Purge(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key, entry := range s.entries {
		if !entry.Fresh(now) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed, nil
}

// Len reports the number of stored entries, fresh or not.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
