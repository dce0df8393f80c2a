package aggregate

import (
	"context"
	"time"

	"contentgw/internal/cache"
	"contentgw/internal/ratelimit/models"
	"contentgw/internal/source"
)

// Admitter is one rate-limit policy. *ratelimit.Limiter satisfies it.
type Admitter interface {
	Admit(ctx context.Context, identity string) (*models.Result, error)
}

// ResponseCache is the read-through store in front of every operation.
// *cache.Cache satisfies it.
type ResponseCache interface {
	Get(ctx context.Context, key cache.Key, dst any) bool
	Put(ctx context.Context, key cache.Key, value any, ttl time.Duration)
}

// Sources resolves adapters by ID. *source.Registry satisfies it.
type Sources interface {
	Get(id string) (source.Adapter, error)
	All() []source.Adapter
}
