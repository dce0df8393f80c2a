// Package ports defines the storage interface shared by the limiter and its stores.
package ports

import (
	"context"
	"time"

	"contentgw/internal/ratelimit/models"
)

// BucketStore keeps one sliding window of admission timestamps per key.
// Implementations read the clock from requestcontext.Now(ctx) and must
// serialize admissions per key so concurrent callers can never jointly exceed
// the limit.
type BucketStore interface {
	// Allow prunes the window, then records one event and reports allowed if
	// fewer than limit events remain; otherwise reports denied without
	// recording.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.Result, error)

	// Sweep drops windows with no events left inside their duration and
	// returns how many were dropped.
	Sweep(ctx context.Context) (int, error)
}
