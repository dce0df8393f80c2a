package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// fileRecord is the on-disk layout of the verified-identity list.
type fileRecord struct {
	IPs         []string  `json:"ips"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// FileIdentitySet keeps the verified identities in memory and rewrites the
// whole JSON file on every new entry. Writes go to a temp file renamed over
// the old one so a crash never leaves a truncated list.
type FileIdentitySet struct {
	path     string
	mu       sync.RWMutex
	verified map[string]struct{}
}

// NewFileIdentitySet loads path, treating a missing file as an empty set.
// A file that exists but cannot be parsed is an error: starting empty would
// silently revoke every verification.
func NewFileIdentitySet(path string) (*FileIdentitySet, error) {
	if path == "" {
		return nil, errors.New("identity file path is required")
	}
	s := &FileIdentitySet{path: path, verified: make(map[string]struct{})}
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read identity file: %w", err)
	}
	if len(raw) == 0 {
		return s, nil
	}
	var rec fileRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("parse identity file %s: %w", path, err)
	}
	for _, id := range rec.IPs {
		if id != "" {
			s.verified[id] = struct{}{}
		}
	}
	return s, nil
}

func (s *FileIdentitySet) Contains(_ context.Context, identity string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.verified[identity]
	return ok, nil
}

// Add persists before returning; on a write failure the identity is not
// recorded in memory either, so the caller can retry.
func (s *FileIdentitySet) Add(_ context.Context, identity string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.verified[identity]; ok {
		return nil
	}
	s.verified[identity] = struct{}{}
	if err := s.flush(at); err != nil {
		delete(s.verified, identity)
		return err
	}
	return nil
}

func (s *FileIdentitySet) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sorted(), nil
}

func (s *FileIdentitySet) sorted() []string {
	out := make([]string, 0, len(s.verified))
	for id := range s.verified {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// flush must be called with mu held.
func (s *FileIdentitySet) flush(at time.Time) error {
	raw, err := json.MarshalIndent(fileRecord{IPs: s.sorted(), LastUpdated: at.UTC()}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode identity file: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create identity dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".verified-*.json")
	if err != nil {
		return fmt.Errorf("create identity temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write identity file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close identity file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace identity file: %w", err)
	}
	return nil
}
