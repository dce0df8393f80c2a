package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"contentgw/internal/aggregate"
	"contentgw/internal/platform/config"
	"contentgw/internal/platform/httpserver"
	"contentgw/internal/platform/logger"
	"contentgw/internal/platform/metrics"
	"contentgw/internal/tasks"
	httptransport "contentgw/internal/transport/http"
	"contentgw/pkg/platform/middleware/metadata"
)

func newServeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP gateway",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger.New(os.Stdout, cfg.Log))
		},
	}
}

// serve wires every dependency, runs the server and the janitor, and blocks
// until ctx is canceled. Shutdown drains in-flight requests first.
func serve(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	reg := metrics.NewRegistry()

	infra, err := openInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer infra.Close()

	sources, err := buildSources(cfg, log, reg)
	if err != nil {
		return err
	}
	responses, err := buildCache(cfg, infra, log, reg)
	if err != nil {
		return err
	}
	limiters, err := buildLimiters(cfg, infra, log, reg)
	if err != nil {
		return err
	}
	gate, err := buildAgeGate(ctx, cfg, infra, log, reg)
	if err != nil {
		return err
	}

	svc, err := aggregate.New(sources, responses.cache, limiters.scrape, limiters.classify,
		aggregate.WithLogger(log),
		aggregate.WithMetrics(aggregate.NewMetrics(reg)),
		aggregate.WithTTLs(cfg.Cache.CatalogTTL, cfg.Cache.SafetyTTL),
		aggregate.WithUpstreamTimeout(cfg.Cache.UpstreamTimeout),
	)
	if err != nil {
		return fmt.Errorf("build facade: %w", err)
	}
	tracker := tasks.NewTracker(tasks.DefaultStaleAfter)

	trusted, err := metadata.ParseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		return err
	}
	handler := httptransport.New(svc, svc, gate.service, tracker, log)
	srv := httpserver.New(cfg.Server.Addr, httptransport.NewRouter(handler, reg, log, trusted))

	j := newJanitor(log)
	if responses.memory != nil {
		j.add("cache", responses.memory.Purge)
	}
	j.add("ratelimit_scrape", sweep(limiters.scrape))
	j.add("ratelimit_classify", sweep(limiters.classify))
	j.add("tasks", count(tracker.Purge))
	if gate.memoryTokens != nil {
		j.add("agetokens", count(gate.memoryTokens.Purge))
	}
	go j.run(ctx, cfg.Server.JanitorInterval)

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting contentgw",
			"addr", cfg.Server.Addr,
			"sources", len(sources.All()),
			"cache_backend", cfg.Cache.Backend,
			"ratelimit_backend", cfg.RateLimit.Backend,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down", "timeout", cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
