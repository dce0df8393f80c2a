package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

type InMemoryIdentitySet struct {
	mu       sync.RWMutex
	verified map[string]time.Time
}

func NewInMemoryIdentitySet() *InMemoryIdentitySet {
	return &InMemoryIdentitySet{verified: make(map[string]time.Time)}
}

func (s *InMemoryIdentitySet) Contains(_ context.Context, identity string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.verified[identity]
	return ok, nil
}

func (s *InMemoryIdentitySet) Add(_ context.Context, identity string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.verified[identity]; !ok {
		s.verified[identity] = at
	}
	return nil
}

func (s *InMemoryIdentitySet) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.verified))
	for id := range s.verified {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}
