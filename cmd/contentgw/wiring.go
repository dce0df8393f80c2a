package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/prometheus/client_golang/prometheus"

	"contentgw/internal/ageverify"
	agestore "contentgw/internal/ageverify/store"
	"contentgw/internal/cache"
	cachestore "contentgw/internal/cache/store"
	"contentgw/internal/platform/badgerdb"
	"contentgw/internal/platform/config"
	"contentgw/internal/platform/postgres"
	platformredis "contentgw/internal/platform/redis"
	"contentgw/internal/ratelimit"
	rlmetrics "contentgw/internal/ratelimit/metrics"
	"contentgw/internal/ratelimit/models"
	"contentgw/internal/ratelimit/store/bucket"
	"contentgw/internal/source"
	"contentgw/internal/source/booru"
	"contentgw/internal/source/fetch"
	"contentgw/internal/source/jikan"
	"contentgw/internal/source/kitsu"
	"contentgw/internal/source/listing"
)

// infra holds the shared connections. Each one is opened only when some
// configured backend needs it.
type infra struct {
	redis  *platformredis.Client
	badger *badger.DB
	pg     *sql.DB
}

func openInfra(ctx context.Context, cfg *config.Config, log *slog.Logger) (*infra, error) {
	in := &infra{}
	var err error

	if cfg.Cache.Backend == "redis" || cfg.RateLimit.Backend == "redis" || cfg.AgeVerify.TokenStore == "redis" {
		in.redis, err = platformredis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		if in.redis == nil {
			return nil, errors.New("a redis backend is selected but redis.url is empty")
		}
		log.Info("connected to redis")
	}

	if cfg.Cache.Backend == "badger" || cfg.AgeVerify.TokenStore == "badger" {
		in.badger, err = badgerdb.Open(cfg.Badger)
		if err != nil {
			in.Close()
			return nil, err
		}
		log.Info("opened badger", "path", cfg.Badger.Path, "in_memory", cfg.Badger.InMemory)
	}

	if cfg.AgeVerify.IdentityStore == "postgres" {
		in.pg, err = postgres.Open(ctx, cfg.Postgres)
		if err != nil {
			in.Close()
			return nil, err
		}
		if in.pg == nil {
			in.Close()
			return nil, errors.New("identity_store is postgres but postgres.dsn is empty")
		}
		log.Info("connected to postgres")
	}
	return in, nil
}

func (in *infra) Close() {
	if in.redis != nil {
		_ = in.redis.Close()
	}
	if in.badger != nil {
		_ = in.badger.Close()
	}
	if in.pg != nil {
		_ = in.pg.Close()
	}
}

// buildSources registers every enabled adapter. Each adapter gets its own
// fetch client so one failing upstream only trips its own breaker.
func buildSources(cfg *config.Config, log *slog.Logger, reg prometheus.Registerer) (*source.Registry, error) {
	registry := source.NewRegistry()
	fetchMetrics := fetch.NewMetrics(reg)
	newClient := func(name string) (*fetch.Client, error) {
		return fetch.New(name, fetchConfig(cfg.Fetch), fetch.WithLogger(log), fetch.WithMetrics(fetchMetrics))
	}

	var adapters []source.Adapter
	if cfg.Sources.Jikan.Enabled {
		client, err := newClient(jikan.ID)
		if err != nil {
			return nil, err
		}
		a, err := jikan.New(cfg.Sources.Jikan.BaseURL, client, jikan.WithLogger(log))
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, a)
	}
	if cfg.Sources.Kitsu.Enabled {
		client, err := newClient(kitsu.ID)
		if err != nil {
			return nil, err
		}
		a, err := kitsu.New(cfg.Sources.Kitsu.BaseURL, client)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, a)
	}
	for _, b := range cfg.Sources.Booru {
		client, err := newClient(b.ID)
		if err != nil {
			return nil, err
		}
		a, err := booru.New(booru.Config{ID: b.ID, Name: b.Name, BaseURL: b.BaseURL, SiteURL: b.SiteURL}, client)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, a)
	}
	for _, l := range cfg.Sources.Listing {
		client, err := newClient(l.ID)
		if err != nil {
			return nil, err
		}
		extractor := listing.NewSelectorExtractor(listing.Selectors{
			Block:    l.Selectors.Block,
			Link:     l.Selectors.Link,
			Title:    l.Selectors.Title,
			Duration: l.Selectors.Duration,
			Thumb:    l.Selectors.Thumb,
			Meta:     l.Selectors.Meta,
		})
		a, err := listing.New(listing.Config{
			ID:         l.ID,
			Name:       l.Name,
			BaseURL:    l.BaseURL,
			SearchPath: l.SearchPath,
			BrowsePath: l.BrowsePath,
		}, extractor, client, listing.WithLogger(log))
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, a)
	}

	for _, a := range adapters {
		if err := registry.Register(a); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

func fetchConfig(f config.Fetch) fetch.Config {
	return fetch.Config{
		UserAgents:              f.UserAgents,
		MinDelay:                f.MinDelay,
		MaxDelay:                f.MaxDelay,
		Timeout:                 f.Timeout,
		MaxBodyBytes:            f.MaxBodyBytes,
		HostRate:                f.HostRate,
		HostBurst:               f.HostBurst,
		BreakerFailureThreshold: f.Breaker.FailureThreshold,
		BreakerOpenTimeout:      f.Breaker.OpenTimeout,
		BreakerHalfOpenRequests: f.Breaker.HalfOpenRequests,
	}
}

type responseCache struct {
	cache *cache.Cache
	// memory is set for the in-process backend, which needs purging.
	memory *cachestore.InMemoryStore
}

func buildCache(cfg *config.Config, in *infra, log *slog.Logger, reg prometheus.Registerer) (*responseCache, error) {
	out := &responseCache{}
	var backend cache.Backend
	switch cfg.Cache.Backend {
	case "redis":
		backend = cachestore.NewRedisStore(in.redis.Client)
	case "badger":
		backend = cachestore.NewBadgerStore(in.badger)
	default:
		out.memory = cachestore.NewInMemoryStore()
		backend = out.memory
	}
	c, err := cache.New(backend, cache.WithLogger(log), cache.WithMetrics(cache.NewMetrics(reg)))
	if err != nil {
		return nil, fmt.Errorf("build cache: %w", err)
	}
	out.cache = c
	return out, nil
}

type limiters struct {
	scrape   *ratelimit.Limiter
	classify *ratelimit.Limiter
}

func buildLimiters(cfg *config.Config, in *infra, log *slog.Logger, reg prometheus.Registerer) (*limiters, error) {
	var buckets ratelimit.BucketStore
	if cfg.RateLimit.Backend == "redis" {
		buckets = bucket.NewRedisBucketStore(in.redis.Client)
	} else {
		buckets = bucket.NewInMemoryBucketStore()
	}
	m := rlmetrics.New(reg)

	newLimiter := func(name string, p config.Policy) (*ratelimit.Limiter, error) {
		return ratelimit.New(models.Policy{Name: name, MaxEvents: p.MaxEvents, Window: p.Window}, buckets,
			ratelimit.WithLogger(log),
			ratelimit.WithMetrics(m),
		)
	}
	scrape, err := newLimiter(models.PolicyScrape, cfg.RateLimit.Scrape)
	if err != nil {
		return nil, err
	}
	classify, err := newLimiter(models.PolicyClassify, cfg.RateLimit.Classify)
	if err != nil {
		return nil, err
	}
	return &limiters{scrape: scrape, classify: classify}, nil
}

type ageGate struct {
	service *ageverify.Service
	// memoryTokens is set for the in-process token store, which needs purging.
	memoryTokens *agestore.InMemoryTokenStore
}

func buildAgeGate(ctx context.Context, cfg *config.Config, in *infra, log *slog.Logger, reg prometheus.Registerer) (*ageGate, error) {
	out := &ageGate{}
	av := cfg.AgeVerify

	var tokens ageverify.TokenStore
	switch av.TokenStore {
	case "redis":
		tokens = agestore.NewRedisTokenStore(in.redis.Client, av.TokenRetention)
	case "badger":
		tokens = agestore.NewBadgerTokenStore(in.badger, av.TokenRetention)
	default:
		out.memoryTokens = agestore.NewInMemoryTokenStore(av.TokenRetention)
		tokens = out.memoryTokens
	}

	var identities ageverify.IdentitySet
	switch av.IdentityStore {
	case "postgres":
		pg := agestore.NewPostgresIdentitySet(in.pg)
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		identities = pg
	case "file":
		fileSet, err := agestore.NewFileIdentitySet(av.IdentityFile)
		if err != nil {
			return nil, err
		}
		identities = fileSet
	default:
		identities = agestore.NewInMemoryIdentitySet()
	}

	svc, err := ageverify.New(tokens, identities,
		ageverify.WithLogger(log),
		ageverify.WithMetrics(ageverify.NewMetrics(reg)),
		ageverify.WithTokenTTL(av.TokenTTL),
	)
	if err != nil {
		return nil, fmt.Errorf("build age gate: %w", err)
	}
	if n, err := svc.VerifiedCount(ctx); err == nil {
		log.Info("age gate ready", "token_store", av.TokenStore, "identity_store", av.IdentityStore, "verified", n)
	}
	out.service = svc
	return out, nil
}
