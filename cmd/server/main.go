// Package main runs the admin metrics service: the HTTP API (dashboard
// stats, leaderboards, announcements, segment targeting), the optional
// Redis stats cache, and the optional change-feed listener that keeps the
// cache fresh.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fitmetrics/internal/announce"
	"fitmetrics/internal/api"
	"fitmetrics/internal/cache"
	"fitmetrics/internal/config"
	"fitmetrics/internal/leaderboard"
	"fitmetrics/internal/observability"
	"fitmetrics/internal/push"
	"fitmetrics/internal/realtime"
	"fitmetrics/internal/segment"
	"fitmetrics/internal/stats"
	"fitmetrics/internal/storage"
	chstore "fitmetrics/internal/storage/clickhouse"
	"fitmetrics/internal/storage/memory"
	"fitmetrics/internal/storage/migrations"
	pgstore "fitmetrics/internal/storage/postgres"
)

// allStores holds all storage implementations.
type allStores struct {
	challengeStore    storage.ChallengeStore
	participantStore  storage.ParticipantStore
	profileStore      storage.ProfileStore
	workoutStore      storage.WorkoutStore
	notificationStore storage.NotificationStore
	activityStore     storage.ActivityEventStore // nil without ClickHouse
}

func main() {
	// Parse flags (config file + env vars as defaults)
	configPath := flag.String("config", "", "Path to YAML config file")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	verbose := flag.Bool("verbose", false, "Verbose announcement logging")
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	if !*useMemory && cfg.Postgres.DSN == "" {
		logger.Fatal("postgres DSN is required (set POSTGRES_DSN or use --use-memory)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create stores
	stores, cleanup, err := createStores(ctx, cfg, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	// Stats cache (optional)
	var statsCache *cache.StatsCache
	if cfg.Redis.Addr != "" {
		client, err := cache.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatalf("Failed to connect to redis: %v", err)
		}
		defer client.Close()
		statsCache = cache.New(client, time.Duration(cfg.Redis.TTLSeconds)*time.Second)
		logger.Printf("Stats cache enabled (redis %s, ttl %ds)", cfg.Redis.Addr, cfg.Redis.TTLSeconds)
	}

	// Push sender (optional)
	var pushSender push.Sender
	if cfg.Push.GatewayURL != "" {
		pushSender = push.NewHTTPSender(cfg.Push.GatewayURL,
			push.WithTimeout(time.Duration(cfg.Push.TimeoutSeconds)*time.Second))
		logger.Printf("Push delivery enabled (%s)", cfg.Push.GatewayURL)
	}

	// Core components
	aggregator := stats.NewAggregator(stores.challengeStore, stores.participantStore, stores.profileStore, stores.workoutStore)
	ranker := leaderboard.NewRanker(stores.participantStore, stores.profileStore)
	resolver := segment.NewResolver(stores.profileStore)
	orchestrator := announce.New(announce.Options{
		ChallengeStore:    stores.challengeStore,
		NotificationStore: stores.notificationStore,
		Ranker:            ranker,
		PushSender:        pushSender,
		Verbose:           *verbose,
	})

	// Change-feed listener (optional): every change to source tables
	// invalidates the cached dashboard
	if cfg.Realtime.Enabled && cfg.Realtime.FeedURL != "" {
		listener, err := realtime.NewListener(ctx, cfg.Realtime.FeedURL, func(e realtime.ChangeEvent) {
			observability.RecordFeedEvent(e.Table)
			if statsCache == nil {
				return
			}
			if err := statsCache.Invalidate(context.Background()); err != nil {
				logger.Printf("Cache invalidation failed: %v", err)
			}
		}, nil)
		if err != nil {
			logger.Fatalf("Failed to connect to change feed: %v", err)
		}
		defer listener.Close()
		logger.Printf("Change-feed listener connected (%s)", cfg.Realtime.FeedURL)
	}

	server := api.NewServer(api.Options{
		Aggregator:     aggregator,
		Ranker:         ranker,
		Resolver:       resolver,
		Orchestrator:   orchestrator,
		StatsCache:     statsCache,
		ActivityEvents: stores.activityStore,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Printf("HTTP shutdown error: %v", err)
		}
		cancel()
	}()

	logger.Printf("Starting HTTP server on %s", cfg.Server.Addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("HTTP server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// createStores creates all required stores and runs migrations.
func createStores(ctx context.Context, cfg *config.Config, useMemory bool) (*allStores, func(), error) {
	if useMemory {
		stores := &allStores{
			challengeStore:    memory.NewChallengeStore(),
			participantStore:  memory.NewParticipantStore(),
			profileStore:      memory.NewProfileStore(),
			workoutStore:      memory.NewWorkoutStore(),
			notificationStore: memory.NewNotificationStore(),
			activityStore:     memory.NewActivityEventStore(),
		}
		return stores, func() {}, nil
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgres(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run postgres migrations: %w", err)
	}

	stores := &allStores{
		challengeStore:    pgstore.NewChallengeStore(pool),
		participantStore:  pgstore.NewParticipantStore(pool),
		profileStore:      pgstore.NewProfileStore(pool),
		workoutStore:      pgstore.NewWorkoutStore(pool),
		notificationStore: pgstore.NewNotificationStore(pool),
	}
	cleanup := func() { pool.Close() }

	// ClickHouse (optional analytics)
	if cfg.ClickHouse.DSN != "" {
		chConn, err := chstore.NewConn(ctx, cfg.ClickHouse.DSN)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
		}
		if err := migrations.RunClickhouse(ctx, chConn); err != nil {
			chConn.Close()
			pool.Close()
			return nil, nil, fmt.Errorf("run clickhouse migrations: %w", err)
		}
		stores.activityStore = chstore.NewActivityEventStore(chConn)
		cleanup = func() {
			chConn.Close()
			pool.Close()
		}
	}

	return stores, cleanup, nil
}
