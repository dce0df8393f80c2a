package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"contentgw/internal/ageverify/models"
	"contentgw/pkg/platform/sentinel"
)

// InMemoryTokenStore keeps tokens in process memory for single-node and test
// deployments. Expired tokens stay readable by Take until Purge drops them
// after the retention period, so late confirmations can be told apart from
// unknown tokens.
type InMemoryTokenStore struct {
	mu         sync.Mutex
	tokens     map[string]models.Token
	byIdentity map[string]string
	retention  time.Duration
}

func NewInMemoryTokenStore(retention time.Duration) *InMemoryTokenStore {
	return &InMemoryTokenStore{
		tokens:     make(map[string]models.Token),
		byIdentity: make(map[string]string),
		retention:  retention,
	}
}

func (s *InMemoryTokenStore) Create(_ context.Context, token *models.Token) error {
	if token == nil || token.Value == "" {
		return fmt.Errorf("token value is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token.Value] = *token
	s.byIdentity[token.Identity] = token.Value
	return nil
}

func (s *InMemoryTokenStore) FindLive(_ context.Context, identity string, now time.Time) (*models.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.byIdentity[identity]
	if !ok {
		return nil, fmt.Errorf("token for identity: %w", sentinel.ErrNotFound)
	}
	token, ok := s.tokens[value]
	if !ok || token.Expired(now) {
		return nil, fmt.Errorf("live token for identity: %w", sentinel.ErrNotFound)
	}
	return &token, nil
}

func (s *InMemoryTokenStore) Take(_ context.Context, value string) (*models.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, ok := s.tokens[value]
	if !ok {
		return nil, fmt.Errorf("token: %w", sentinel.ErrNotFound)
	}
	delete(s.tokens, value)
	if s.byIdentity[token.Identity] == value {
		delete(s.byIdentity, token.Identity)
	}
	return &token, nil
}

// Purge drops tokens expired for longer than the retention period.
func (s *InMemoryTokenStore) Purge(_ context.Context, now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for value, token := range s.tokens {
		if now.After(token.ExpiresAt.Add(s.retention)) {
			delete(s.tokens, value)
			if s.byIdentity[token.Identity] == value {
				delete(s.byIdentity, token.Identity)
			}
			removed++
		}
	}
	return removed
}
