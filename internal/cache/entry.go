package cache

import "time"

// Entry is one stored response. Payload holds the JSON encoding of the
// normalized result; the cache never interprets it.
type Entry struct {
	Key      Key
	Payload  []byte
	StoredAt time.Time
	TTL      time.Duration
}

// ExpiresAt is the instant the entry stops being served.
func (e *Entry) ExpiresAt() time.Time {
	return e.StoredAt.Add(e.TTL)
}

// Fresh reports whether the entry may be served at now. An entry is fresh
// strictly before StoredAt+TTL; at that instant it is already stale.
func (e *Entry) Fresh(now time.Time) bool {
	return now.Before(e.ExpiresAt())
}
