// Package ratelimit admits or denies expensive operations per client identity
// using a sliding window of admission timestamps.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"contentgw/internal/ratelimit/metrics"
	"contentgw/internal/ratelimit/models"
	"contentgw/internal/ratelimit/ports"
)

type BucketStore = ports.BucketStore

// Limiter applies one Policy to every identity.
type Limiter struct {
	policy  models.Policy
	buckets BucketStore
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Limiter)

func WithLogger(logger *slog.Logger) Option {
	return func(l *Limiter) {
		l.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Limiter) {
		l.metrics = m
	}
}

func New(policy models.Policy, buckets BucketStore, opts ...Option) (*Limiter, error) {
	if buckets == nil {
		return nil, errors.New("bucket store is required")
	}
	if policy.Name == "" {
		return nil, errors.New("policy name is required")
	}
	if policy.MaxEvents <= 0 || policy.Window <= 0 {
		return nil, fmt.Errorf("policy %s: max events and window must be positive", policy.Name)
	}

	l := &Limiter{
		policy:  policy,
		buckets: buckets,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

func (l *Limiter) Policy() models.Policy {
	return l.policy
}

// Admit records one event for identity if the policy allows it. A denied
// attempt is not recorded, so hammering a closed window never extends it.
func (l *Limiter) Admit(ctx context.Context, identity string) (*models.Result, error) {
	key := models.NewKey(l.policy.Name, identity)
	result, err := l.buckets.Allow(ctx, key, l.policy.MaxEvents, l.policy.Window)
	if err != nil {
		if l.metrics != nil {
			l.metrics.IncrementStoreErrors(l.policy.Name)
		}
		return nil, fmt.Errorf("admit %s for %s: %w", l.policy.Name, identity, err)
	}

	if !result.Allowed {
		l.logger.InfoContext(ctx, "rate_limit_exceeded",
			"policy", l.policy.Name,
			"identity", identity,
			"count", result.Count,
			"limit", result.Limit,
			"retry_after", result.RetryAfter,
		)
		if l.metrics != nil {
			l.metrics.IncrementDenied(l.policy.Name)
		}
		return result, nil
	}

	if l.metrics != nil {
		l.metrics.IncrementAdmitted(l.policy.Name)
	}
	return result, nil
}

// Sweep asks the store to drop idle windows.
func (l *Limiter) Sweep(ctx context.Context) (int, error) {
	n, err := l.buckets.Sweep(ctx)
	if err != nil {
		return 0, fmt.Errorf("sweep %s windows: %w", l.policy.Name, err)
	}
	if l.metrics != nil && n > 0 {
		l.metrics.AddSwept(n)
	}
	return n, nil
}
