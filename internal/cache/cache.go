// Package cache is the response cache in front of every upstream source.
//
// Freshness is computed lazily from Entry.StoredAt and Entry.TTL against the
// request clock; backends only hold bytes and may expire them natively as
// housekeeping. A read never extends an entry's lifetime. Storage failures
// degrade to a miss on read and are swallowed on write.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"contentgw/pkg/platform/sentinel"
	"contentgw/pkg/requestcontext"
)

// Backend persists entries by key. Load returns an error wrapping
// sentinel.ErrNotFound when nothing is stored under the key.
type Backend interface {
	Load(ctx context.Context, key Key) (*Entry, error)
	Save(ctx context.Context, entry *Entry) error
	Delete(ctx context.Context, key Key) error
}

// Cache is safe for concurrent use as long as its Backend is.
type Cache struct {
	backend Backend
	logger  *slog.Logger
	metrics *Metrics
}

type Option func(*Cache)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *Cache) {
		c.metrics = m
	}
}

func New(backend Backend, opts ...Option) (*Cache, error) {
	if backend == nil {
		return nil, errors.New("cache backend is required")
	}
	c := &Cache{
		backend: backend,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Get decodes the entry stored under key into dst and reports whether it was
// a fresh hit. Absent, stale, unreadable or undecodable entries are misses.
func (c *Cache) Get(ctx context.Context, key Key, dst any) bool {
	queryType := queryTypeOf(key)

	entry, err := c.backend.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			c.logger.WarnContext(ctx, "cache read failed, treating as miss",
				"cache_key", key.String(),
				"error", err,
			)
			c.metrics.observeError(queryType, "load")
		}
		c.metrics.observeLookup(queryType, "miss")
		return false
	}

	if !entry.Fresh(requestcontext.Now(ctx)) {
		c.metrics.observeLookup(queryType, "stale")
		return false
	}

	if err := json.Unmarshal(entry.Payload, dst); err != nil {
		c.logger.WarnContext(ctx, "cache payload undecodable, treating as miss",
			"cache_key", key.String(),
			"error", err,
		)
		c.metrics.observeError(queryType, "decode")
		c.metrics.observeLookup(queryType, "miss")
		return false
	}

	c.metrics.observeLookup(queryType, "hit")
	return true
}

// Put encodes value and stores it under key for ttl, measured from the
// request clock. Failures are logged and swallowed.
func (c *Cache) Put(ctx context.Context, key Key, value any, ttl time.Duration) {
	payload, err := json.Marshal(value)
	if err != nil {
		c.logger.ErrorContext(ctx, "cache payload unencodable, skipping write",
			"cache_key", key.String(),
			"error", err,
		)
		c.metrics.observeError(queryTypeOf(key), "encode")
		return
	}

	entry := &Entry{
		Key:      key,
		Payload:  payload,
		StoredAt: requestcontext.Now(ctx),
		TTL:      ttl,
	}
	if err := c.backend.Save(ctx, entry); err != nil {
		c.logger.WarnContext(ctx, "cache write failed",
			"cache_key", key.String(),
			"error", err,
		)
		c.metrics.observeError(queryTypeOf(key), "save")
	}
}

// Invalidate drops key. Failures are logged and swallowed.
func (c *Cache) Invalidate(ctx context.Context, key Key) {
	if err := c.backend.Delete(ctx, key); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		c.logger.WarnContext(ctx, "cache delete failed",
			"cache_key", key.String(),
			"error", err,
		)
		c.metrics.observeError(queryTypeOf(key), "delete")
	}
}

func queryTypeOf(key Key) string {
	queryType, _, _ := strings.Cut(string(key), ":")
	return queryType
}
