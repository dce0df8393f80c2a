// Package store holds the cache.Backend implementations.
package store

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"contentgw/internal/cache"
)

// record is the persisted layout of one cache entry for the byte-oriented
// backends (Redis, Badger).
type record struct {
	Payload  json.RawMessage `json:"payload"`
	StoredAt time.Time       `json:"stored_at"`
	TTL      time.Duration   `json:"ttl"`
}

func encodeEntry(e *cache.Entry) ([]byte, error) {
	return json.Marshal(record{Payload: e.Payload, StoredAt: e.StoredAt, TTL: e.TTL})
}

func decodeEntry(key cache.Key, raw []byte) (*cache.Entry, error) {
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode cache record %s: %w", key, err)
	}
	return &cache.Entry{
		Key:      key,
		Payload:  []byte(rec.Payload),
		StoredAt: rec.StoredAt,
		TTL:      rec.TTL,
	}, nil
}

// housekeepingTTL is how long a backend keeps bytes around. It outlives the
// logical TTL slightly so native expiry never races freshness evaluation.
func housekeepingTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 0
	}
	return ttl + time.Minute
}
