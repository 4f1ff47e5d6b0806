// Package api exposes the admin HTTP API: dashboard stats, leaderboards,
// winner announcement, and segment targeting.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"fitmetrics/internal/announce"
	"fitmetrics/internal/cache"
	"fitmetrics/internal/leaderboard"
	"fitmetrics/internal/observability"
	"fitmetrics/internal/segment"
	"fitmetrics/internal/stats"
	"fitmetrics/internal/storage"
)

// Server holds the API dependencies and builds the router.
type Server struct {
	aggregator   *stats.Aggregator
	ranker       *leaderboard.Ranker
	resolver     *segment.Resolver
	orchestrator *announce.Orchestrator
	statsCache   *cache.StatsCache          // optional, nil disables caching
	events       storage.ActivityEventStore // optional, serves participation at scale

	now            func() int64 // Unix ms, injectable for tests
	startedAt      time.Time
	allowedOrigins []string
}

// Options configures the API server.
type Options struct {
	Aggregator   *stats.Aggregator
	Ranker       *leaderboard.Ranker
	Resolver     *segment.Resolver
	Orchestrator *announce.Orchestrator

	// StatsCache enables cache-aside for GET /api/stats/dashboard. Optional.
	StatsCache *cache.StatsCache

	// ActivityEvents, when set, serves the participation series from the
	// analytics store instead of scanning the participant snapshot.
	ActivityEvents storage.ActivityEventStore

	// Now is an injectable clock. Defaults to time.Now().UnixMilli.
	Now func() int64

	// AllowedOrigins for CORS. Defaults to "*".
	AllowedOrigins []string
}

// NewServer creates an API server.
func NewServer(opts Options) *Server {
	now := opts.Now
	if now == nil {
		now = func() int64 { return time.Now().UnixMilli() }
	}

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return &Server{
		aggregator:     opts.Aggregator,
		ranker:         opts.Ranker,
		resolver:       opts.Resolver,
		orchestrator:   opts.Orchestrator,
		statsCache:     opts.StatsCache,
		events:         opts.ActivityEvents,
		now:            now,
		startedAt:      time.Now(),
		allowedOrigins: origins,
	}
}

// Router builds the chi router with all routes mounted.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/status", s.handleStatus)
	r.Handle("/metrics", observability.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/stats", func(r chi.Router) {
			r.Get("/dashboard", s.handleDashboard)
			r.Get("/participation", s.handleParticipation)
		})
		r.Route("/challenges/{id}", func(r chi.Router) {
			r.Get("/leaderboard", s.handleLeaderboard)
			r.Post("/announce", s.handleAnnounce)
		})
		r.Post("/segments/resolve", s.handleSegmentResolve)
		r.Post("/notifications/segment", s.handleSegmentNotify)
	})

	return r
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
