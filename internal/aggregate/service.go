// Package aggregate is the single entry point for catalog and safety queries.
//
// Every operation follows the same pipeline: derive a cache key, serve a
// fresh entry as a hit, otherwise ask the operation's rate-limit policy for
// admission, call the adapter under a fixed timeout and write the result
// through with the operation's TTL. Adapter failures never escape as errors;
// they come back as a fault outcome with a client-safe message.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"contentgw/internal/cache"
	"contentgw/internal/ratelimit/models"
	"contentgw/internal/source"
)

const (
	DefaultCatalogTTL      = time.Hour
	DefaultSafetyTTL       = 30 * time.Minute
	DefaultUpstreamTimeout = 15 * time.Second

	tracerName = "contentgw/internal/aggregate"
)

type Service struct {
	sources  Sources
	cache    ResponseCache
	scrape   Admitter
	classify Admitter

	catalogTTL time.Duration
	safetyTTL  time.Duration
	timeout    time.Duration

	flights singleflight.Group
	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithTTLs sets how long catalog and safety results stay fresh. Zero keeps
// the default.
func WithTTLs(catalog, safety time.Duration) Option {
	return func(s *Service) {
		if catalog > 0 {
			s.catalogTTL = catalog
		}
		if safety > 0 {
			s.safetyTTL = safety
		}
	}
}

// WithUpstreamTimeout bounds each adapter call made on a miss.
func WithUpstreamTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New wires the facade. scrape guards catalog operations; classify guards the
// safety operations.
func New(sources Sources, responses ResponseCache, scrape, classify Admitter, opts ...Option) (*Service, error) {
	if sources == nil {
		return nil, errors.New("source registry is required")
	}
	if responses == nil {
		return nil, errors.New("response cache is required")
	}
	if scrape == nil || classify == nil {
		return nil, errors.New("scrape and classify limiters are required")
	}
	s := &Service{
		sources:    sources,
		cache:      responses,
		scrape:     scrape,
		classify:   classify,
		catalogTTL: DefaultCatalogTTL,
		safetyTTL:  DefaultSafetyTTL,
		timeout:    DefaultUpstreamTimeout,
		logger:     slog.Default(),
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// call describes one pass through the pipeline.
type call struct {
	operation string
	source    string
	key       cache.Key
	identity  string
	policy    string
	admitter  Admitter
	ttl       time.Duration
}

// flight is what a singleflight leader hands to its followers.
type flight[T any] struct {
	data  T
	empty bool
}

// execute runs the pipeline for c. fetch runs detached from the caller's
// cancellation so a leader leaving early does not fail its followers; it is
// still bounded by the upstream timeout.
func execute[T any](ctx context.Context, s *Service, c call, fetch func(context.Context) (T, error), isEmpty func(T) bool) (res Result[T]) {
	ctx, span := s.tracer.Start(ctx, "aggregate."+c.operation, trace.WithAttributes(
		attribute.String("contentgw.operation", c.operation),
		attribute.String("contentgw.source", c.source),
		attribute.String("contentgw.cache_key", c.key.String()),
	))
	defer func() {
		span.SetAttributes(attribute.String("contentgw.outcome", string(res.Outcome)))
		if res.Error != nil {
			span.SetStatus(codes.Error, res.Error.Kind)
		}
		span.End()
		s.metrics.observeOutcome(c.operation, c.source, res.Outcome)
	}()

	var cached T
	if s.cache.Get(ctx, c.key, &cached) {
		return Result[T]{Outcome: OutcomeHit, Data: cached}
	}

	admission, err := c.admitter.Admit(ctx, c.identity)
	switch {
	case err != nil:
		s.logger.WarnContext(ctx, "rate limiter unavailable, admitting request",
			"policy", c.policy,
			"identity", c.identity,
			"error", err,
		)
		s.metrics.incrementFailOpen(c.policy)
	case !admission.Allowed:
		return Result[T]{Outcome: OutcomeRateLimited, RateLimit: rateLimitInfo(c.policy, admission)}
	}
	limitInfo := rateLimitInfo(c.policy, admission)

	ch := s.flights.DoChan(c.key.String(), func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()

		started := time.Now()
		data, err := fetch(fctx)
		s.metrics.observeUpstream(c.operation, c.source, time.Since(started))
		if err != nil {
			return nil, err
		}
		s.cache.Put(context.WithoutCancel(ctx), c.key, data, c.ttl)
		return flight[T]{data: data, empty: isEmpty(data)}, nil
	})

	select {
	case <-ctx.Done():
		span.RecordError(ctx.Err())
		kind := KindCanceled
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			kind = string(source.KindTimeout)
		}
		return Result[T]{Outcome: OutcomeFault, RateLimit: limitInfo, Error: &ErrorInfo{Kind: kind, Message: publicMessage(kind, nil)}}
	case r := <-ch:
		if r.Err != nil {
			span.RecordError(r.Err)
			return faultResult[T](ctx, s, c, r.Err, limitInfo)
		}
		f := r.Val.(flight[T])
		outcome := OutcomeFetched
		if f.empty {
			outcome = OutcomeEmpty
		}
		return Result[T]{Outcome: outcome, Data: f.data, RateLimit: limitInfo}
	}
}

// faultResult logs err with full detail and returns the client-safe envelope.
func faultResult[T any](ctx context.Context, s *Service, c call, err error, limit *RateLimitInfo) Result[T] {
	kind := source.KindOf(err)
	s.logger.ErrorContext(ctx, "upstream call failed",
		"operation", c.operation,
		"source", c.source,
		"cache_key", c.key.String(),
		"kind", string(kind),
		"error", err,
	)
	return Result[T]{
		Outcome:   OutcomeFault,
		RateLimit: limit,
		Error:     &ErrorInfo{Kind: string(kind), Message: publicMessage(string(kind), err)},
	}
}

// reject builds a fault for requests refused before any cache or limiter
// work, so they neither consume quota nor get cached.
func reject[T any](ctx context.Context, s *Service, operation, sourceID string, err error) Result[T] {
	kind := string(source.KindOf(err))
	if errors.Is(err, source.ErrUnknownSource) {
		kind = KindUnknownSource
	}
	s.logger.DebugContext(ctx, "request rejected",
		"operation", operation,
		"source", sourceID,
		"kind", kind,
		"error", err,
	)
	s.metrics.observeOutcome(operation, sourceID, OutcomeFault)
	return Result[T]{Outcome: OutcomeFault, Error: &ErrorInfo{Kind: kind, Message: publicMessage(kind, err)}}
}

func publicMessage(kind string, err error) string {
	switch kind {
	case string(source.KindInvalidInput):
		var ae *source.AdapterError
		if errors.As(err, &ae) && ae.Message != "" {
			return ae.Message
		}
		return "invalid request parameters"
	case string(source.KindTimeout):
		return "the upstream source did not respond in time"
	case string(source.KindUnavailable):
		return "the upstream source is unavailable"
	case string(source.KindRateLimited):
		return "the upstream source is throttling requests, try again later"
	case string(source.KindSchemaMismatch):
		return "the upstream source returned an unexpected response"
	case string(source.KindNotFound):
		return "the upstream source has no such resource"
	case string(source.KindNotSupported):
		return "this source does not support the operation"
	case KindUnknownSource:
		return "unknown source"
	case KindCanceled:
		return "the request was canceled"
	default:
		return "internal error"
	}
}

func (s *Service) adapter(id string) (source.Adapter, error) {
	a, err := s.sources.Get(id)
	if err != nil {
		return nil, fmt.Errorf("resolve source: %w", err)
	}
	return a, nil
}

// admitterFor maps a policy name to its limiter.
func (s *Service) admitterFor(policy string) Admitter {
	if policy == models.PolicyClassify {
		return s.classify
	}
	return s.scrape
}
