package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mmcdole/creatorstats/internal/cache"
	"github.com/mmcdole/creatorstats/internal/config"
	"github.com/mmcdole/creatorstats/internal/domain"
	"github.com/mmcdole/creatorstats/internal/log"
	"github.com/mmcdole/creatorstats/internal/metrics"
	"github.com/mmcdole/creatorstats/internal/roblox"
	"github.com/mmcdole/creatorstats/internal/server"
	"github.com/mmcdole/creatorstats/internal/service"
	"github.com/mmcdole/creatorstats/internal/store"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	var showVersion bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.Parse()

	if showVersion {
		fmt.Printf("creatorstats %s\n", Version)
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)
	logger.Info("starting creatorstats", "version", Version)

	profiles, err := store.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("failed to open profile store: %w", err)
	}
	defer profiles.Close()

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	client := roblox.NewClient(roblox.Options{
		GamesURL:      cfg.Upstream.GamesURL,
		GroupsURL:     cfg.Upstream.GroupsURL,
		ThumbnailsURL: cfg.Upstream.ThumbnailsURL,
		UsersURL:      cfg.Upstream.UsersURL,
		Backoff:       cfg.Upstream.Backoff,
		Timeout:       cfg.Upstream.Timeout,
		Metrics:       m,
	}, logger)

	gamesTable := cache.New[[]domain.GameSummary](cfg.Cache.ContentTTL,
		cache.WithCounters[[]domain.GameSummary](
			m.CacheHits.WithLabelValues("owned_games"),
			m.CacheMisses.WithLabelValues("owned_games"),
		))
	infoTable := cache.New[domain.UserInfo](0,
		cache.WithCounters[domain.UserInfo](
			m.CacheHits.WithLabelValues("user_info"),
			m.CacheMisses.WithLabelValues("user_info"),
		))
	totalsTable := cache.New[domain.Totals](cfg.Cache.TotalsTTL,
		cache.WithCounters[domain.Totals](
			m.CacheHits.WithLabelValues("totals"),
			m.CacheMisses.WithLabelValues("totals"),
		))

	icons := service.NewIconService(client, profiles, cfg.Cache.ChunkSize, logger)
	owned := service.NewOwnedService(client, icons, profiles, gamesTable, infoTable, logger)
	totals := service.NewTotalsService(client, owned, totalsTable, cfg.Cache.ChunkSize, logger)
	sessions := service.NewSessionManager(owned, totals, cfg.Refresh.Interval, logger)
	queue := service.NewRefreshQueue(totals, &loggingRewards{logger: logger}, profiles, sessions.Active,
		service.QueueOptions{
			Milestones: cfg.Refresh.Milestones,
			JobTimeout: cfg.Refresh.JobTimeout,
			Metrics:    m,
		}, logger)
	sessions.AttachQueue(queue)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go sessions.Run(ctx)

	app := server.New(owned, totals, queue, sessions, registry, logger)
	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: app.Routes(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
	queue.Wait()
	return nil
}

// loggingRewards is the default reward issuer: it records milestone awards in
// the log. Deployments wire a real issuer by replacing this collaborator.
type loggingRewards struct {
	logger *slog.Logger
}

func (r *loggingRewards) Award(_ context.Context, userID int64, badge string) error {
	r.logger.Info("milestone reached", "userId", userID, "badge", badge)
	return nil
}
