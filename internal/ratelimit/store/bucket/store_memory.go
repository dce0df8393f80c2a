package bucket

import (
	"context"
	"slices"
	"sync"
	"time"

	"contentgw/internal/ratelimit/models"
	"contentgw/pkg/requestcontext"
)

// InMemoryBucketStore implements BucketStore with one sliding window per key.
// The map lock is only held to find or create a window; admission itself
// runs under the window's own lock so unrelated identities never contend.
type InMemoryBucketStore struct {
	mu      sync.Mutex
	windows map[string]*slidingWindow
}

// slidingWindow holds admission timestamps in ascending order.
type slidingWindow struct {
	mu         sync.Mutex
	timestamps []time.Time
	window     time.Duration
	// retired is set by Sweep after the window is removed from the map; a
	// caller that raced the sweep must fetch a fresh window instead.
	retired bool
}

func NewInMemoryBucketStore() *InMemoryBucketStore {
	return &InMemoryBucketStore{
		windows: make(map[string]*slidingWindow),
	}
}

// Allow admits one event for key if the window has room.
func (s *InMemoryBucketStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.Result, error) {
	now := requestcontext.Now(ctx)
	for {
		sw := s.getOrCreate(key, window)
		sw.mu.Lock()
		if sw.retired {
			sw.mu.Unlock()
			continue
		}
		result := sw.admit(now, limit)
		sw.mu.Unlock()
		return result, nil
	}
}

// Sweep drops every window whose events have all aged out.
func (s *InMemoryBucketStore) Sweep(ctx context.Context) (int, error) {
	now := requestcontext.Now(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, sw := range s.windows {
		sw.mu.Lock()
		sw.cleanup(now)
		if len(sw.timestamps) == 0 {
			sw.retired = true
			delete(s.windows, key)
			removed++
		}
		sw.mu.Unlock()
	}
	return removed, nil
}

// Count returns the events currently inside key's window.
func (s *InMemoryBucketStore) Count(ctx context.Context, key string) int {
	s.mu.Lock()
	sw := s.windows[key]
	s.mu.Unlock()
	if sw == nil {
		return 0
	}
	sw.mu.Lock()
	defer sw.mu.Unlock()
	sw.cleanup(requestcontext.Now(ctx))
	return len(sw.timestamps)
}

func (s *InMemoryBucketStore) getOrCreate(key string, window time.Duration) *slidingWindow {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sw := s.windows[key]; sw != nil {
		return sw
	}
	sw := &slidingWindow{window: window}
	s.windows[key] = sw
	return sw
}

// admit must be called with sw.mu held.
func (sw *slidingWindow) admit(now time.Time, limit int) *models.Result {
	sw.cleanup(now)
	count := len(sw.timestamps)

	if count >= limit {
		resetAt := now.Add(sw.window)
		if count > 0 {
			resetAt = sw.timestamps[0].Add(sw.window)
		}
		return &models.Result{
			Allowed:    false,
			Count:      count,
			Limit:      limit,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: models.RetryAfterSeconds(now, resetAt),
		}
	}

	// Request clocks are captured before admission, so concurrent callers
	// can arrive slightly out of order; insertion keeps the slice sorted.
	pos, _ := slices.BinarySearchFunc(sw.timestamps, now, time.Time.Compare)
	sw.timestamps = slices.Insert(sw.timestamps, pos, now)
	return &models.Result{
		Allowed:   true,
		Count:     count + 1,
		Limit:     limit,
		Remaining: limit - count - 1,
		ResetAt:   sw.timestamps[0].Add(sw.window),
	}
}

// cleanup removes timestamps that are a full window old or older.
func (sw *slidingWindow) cleanup(now time.Time) {
	cutoff := now.Add(-sw.window)
	i := 0
	for ; i < len(sw.timestamps); i++ {
		if sw.timestamps[i].After(cutoff) {
			break
		}
	}
	sw.timestamps = sw.timestamps[i:]
}
