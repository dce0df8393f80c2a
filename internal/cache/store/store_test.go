package store

import (
	"context"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/suite"

	"contentgw/internal/cache"
	"contentgw/internal/platform/badgerdb"
	"contentgw/pkg/platform/sentinel"
)

// BackendSuite runs the same contract against every backend that can be
// started without external services.
type BackendSuite struct {
	suite.Suite
	newBackend func() cache.Backend
	ctx        context.Context
	backend    cache.Backend
}

func (s *BackendSuite) SetupTest() {
	s.ctx = context.Background()
	s.backend = s.newBackend()
}

func (s *BackendSuite) TestRoundTrip() {
	stored := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	entry := &cache.Entry{Key: "search:abc", Payload: []byte(`{"a":1}`), StoredAt: stored, TTL: time.Hour}
	s.Require().NoError(s.backend.Save(s.ctx, entry))

	got, err := s.backend.Load(s.ctx, "search:abc")
	s.Require().NoError(err)
	s.Equal(entry.Key, got.Key)
	s.JSONEq(`{"a":1}`, string(got.Payload))
	s.True(stored.Equal(got.StoredAt))
	s.Equal(time.Hour, got.TTL)
}

func (s *BackendSuite) TestLoadMissing() {
	_, err := s.backend.Load(s.ctx, "search:missing")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *BackendSuite) TestDelete() {
	s.Require().NoError(s.backend.Save(s.ctx, &cache.Entry{Key: "detail:1", Payload: []byte(`null`), StoredAt: time.Now(), TTL: time.Hour}))
	s.Require().NoError(s.backend.Delete(s.ctx, "detail:1"))

	_, err := s.backend.Load(s.ctx, "detail:1")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *BackendSuite) TestStaleEntriesStillLoad() {
	// Freshness belongs to the cache, so a backend returns what it holds.
	old := time.Now().Add(-2 * time.Hour)
	s.Require().NoError(s.backend.Save(s.ctx, &cache.Entry{Key: "search:old", Payload: []byte(`1`), StoredAt: old, TTL: time.Hour}))

	got, err := s.backend.Load(s.ctx, "search:old")
	s.Require().NoError(err)
	s.False(got.Fresh(time.Now()))
}

func TestInMemoryBackend(t *testing.T) {
	suite.Run(t, &BackendSuite{newBackend: func() cache.Backend { return NewInMemoryStore() }})
}

func TestBadgerBackend(t *testing.T) {
	var db *badger.DB
	t.Cleanup(func() {
		if db != nil {
			_ = db.Close()
		}
	})
	suite.Run(t, &BackendSuite{newBackend: func() cache.Backend {
		if db != nil {
			_ = db.Close()
		}
		var err error
		db, err = badgerdb.OpenInMemory()
		if err != nil {
			t.Fatalf("open badger: %v", err)
		}
		return NewBadgerStore(db)
	}})
}

func TestInMemoryPurge(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	_ = s.Save(ctx, &cache.Entry{Key: "a", StoredAt: now.Add(-2 * time.Hour), TTL: time.Hour})
	_ = s.Save(ctx, &cache.Entry{Key: "b", StoredAt: now, TTL: time.Hour})

	removed, err := s.Purge(ctx, now)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 || s.Len() != 1 {
		t.Fatalf("expected one stale entry purged, removed=%d len=%d", removed, s.Len())
	}
}

func TestInMemoryLoadIsolatesPayload(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	_ = s.Save(ctx, &cache.Entry{Key: "k", Payload: []byte("abc"), StoredAt: time.Now(), TTL: time.Hour})

	got, _ := s.Load(ctx, "k")
	got.Payload[0] = 'z'

	again, _ := s.Load(ctx, "k")
	if string(again.Payload) != "abc" {
		t.Fatalf("stored payload mutated through a loaded copy: %q", again.Payload)
	}
}
