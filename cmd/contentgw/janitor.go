package main

import (
	"context"
	"log/slog"
	"time"

	"contentgw/internal/ratelimit"
	"contentgw/pkg/requestcontext"
)

// purgeFunc drops whatever is stale at now and reports how much went.
type purgeFunc func(ctx context.Context, now time.Time) (int, error)

type janitorJob struct {
	name  string
	purge purgeFunc
}

// janitor periodically reclaims memory held by expired entries. Correctness
// never depends on it: every store already treats stale data as absent.
type janitor struct {
	jobs   []janitorJob
	logger *slog.Logger
}

func newJanitor(logger *slog.Logger) *janitor {
	return &janitor{logger: logger}
}

func (j *janitor) add(name string, purge purgeFunc) {
	j.jobs = append(j.jobs, janitorJob{name: name, purge: purge})
}

// run ticks every interval until ctx is done. A zero interval disables it.
func (j *janitor) run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			j.tick(ctx, now)
		}
	}
}

func (j *janitor) tick(ctx context.Context, now time.Time) {
	for _, job := range j.jobs {
		n, err := job.purge(ctx, now)
		if err != nil {
			j.logger.WarnContext(ctx, "janitor job failed", "job", job.name, "error", err)
			continue
		}
		if n > 0 {
			j.logger.DebugContext(ctx, "janitor purged entries", "job", job.name, "removed", n)
		}
	}
}

func sweep(l *ratelimit.Limiter) purgeFunc {
	return func(ctx context.Context, now time.Time) (int, error) {
		return l.Sweep(requestcontext.WithTime(ctx, now))
	}
}

func count(purge func(ctx context.Context, now time.Time) int) purgeFunc {
	return func(ctx context.Context, now time.Time) (int, error) {
		return purge(ctx, now), nil
	}
}
