package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"fitmetrics/internal/announce"
	"fitmetrics/internal/domain"
	"fitmetrics/internal/leaderboard"
	"fitmetrics/internal/observability"
	"fitmetrics/internal/stats"
	"fitmetrics/internal/storage"
)

const defaultParticipationDays = 30

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// StatusResponse is the JSON response for /status.
type StatusResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, StatusResponse{
		Status: "running",
		Uptime: time.Since(s.startedAt).String(),
	})
}

// handleDashboard serves the dashboard stats, cache-aside when a cache is
// configured. Cache errors degrade to recomputation, never to a 5xx.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if s.statsCache != nil {
		cached, ok, err := s.statsCache.Get(ctx)
		if err != nil {
			log.Printf("[api] stats cache get: %v", err)
		}
		if ok {
			observability.RecordCacheHit()
			respondJSON(w, http.StatusOK, cached)
			return
		}
		observability.RecordCacheMiss()
	}

	start := time.Now()
	dashboard, err := s.aggregator.ComputeDashboardStats(ctx, s.now())
	if err != nil {
		if errors.Is(err, stats.ErrMalformedSnapshot) {
			respondError(w, http.StatusInternalServerError, "snapshot data is malformed")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to compute dashboard stats")
		return
	}
	observability.RecordStatsCompute(time.Since(start).Seconds())

	if s.statsCache != nil {
		if err := s.statsCache.Set(ctx, dashboard); err != nil {
			log.Printf("[api] stats cache set: %v", err)
		}
	}

	respondJSON(w, http.StatusOK, dashboard)
}

// ParticipationResponse is the JSON response for /api/stats/participation.
type ParticipationResponse struct {
	Days    int                `json:"days"`
	Buckets []domain.DayBucket `json:"buckets"`
}

func (s *Server) handleParticipation(w http.ResponseWriter, r *http.Request) {
	days := defaultParticipationDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "days must be an integer")
			return
		}
		days = parsed
	}

	buckets, err := s.computeParticipation(r.Context(), days)
	if err != nil {
		if errors.Is(err, stats.ErrInvalidWindow) {
			respondError(w, http.StatusBadRequest, "days must be positive")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to compute participation")
		return
	}

	respondJSON(w, http.StatusOK, ParticipationResponse{Days: days, Buckets: buckets})
}

// computeParticipation prefers the pre-aggregated analytics counts and falls
// back to scanning the participant snapshot.
func (s *Server) computeParticipation(ctx context.Context, days int) ([]domain.DayBucket, error) {
	nowMs := s.now()

	if s.events != nil && days > 0 {
		start := nowMs - int64(days)*24*int64(time.Hour/time.Millisecond)
		counts, err := s.events.GetDailyCounts(ctx, domain.ActivityParticipantJoined, start, nowMs)
		if err == nil {
			return stats.BucketizeCounts(counts, days, nowMs)
		}
		log.Printf("[api] analytics daily counts unavailable, falling back to snapshot: %v", err)
	}

	return s.aggregator.ComputeParticipation(ctx, days, nowMs)
}

// LeaderboardResponse is the JSON response for a challenge leaderboard.
type LeaderboardResponse struct {
	ChallengeID string                    `json:"challenge_id"`
	Entries     []domain.LeaderboardEntry `json:"entries"`
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	challengeID := chi.URLParam(r, "id")

	limit := 0 // full leaderboard
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	entries, err := s.ranker.Compute(r.Context(), challengeID, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to compute leaderboard")
		return
	}
	observability.RecordLeaderboardCompute()

	if entries == nil {
		entries = []domain.LeaderboardEntry{} // empty leaderboard is a valid display
	}
	respondJSON(w, http.StatusOK, LeaderboardResponse{ChallengeID: challengeID, Entries: entries})
}

func (s *Server) handleAnnounce(w http.ResponseWriter, r *http.Request) {
	challengeID := chi.URLParam(r, "id")

	topK := 0 // orchestrator default
	if raw := r.URL.Query().Get("top_k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondError(w, http.StatusBadRequest, "top_k must be a positive integer")
			return
		}
		topK = parsed
	}

	result, err := s.orchestrator.Run(r.Context(), challengeID, topK)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			observability.RecordAnnouncement("not_found")
			respondError(w, http.StatusNotFound, "challenge not found")
		case errors.Is(err, storage.ErrAlreadyAnnounced):
			observability.RecordAnnouncement("already_announced")
			respondError(w, http.StatusConflict, "winners already announced")
		case errors.Is(err, announce.ErrChallengeNotCompleted):
			observability.RecordAnnouncement("not_completed")
			respondError(w, http.StatusConflict, "challenge is not completed")
		case errors.Is(err, leaderboard.ErrEmptyLeaderboard):
			observability.RecordAnnouncement("empty")
			respondError(w, http.StatusUnprocessableEntity, "challenge has no participants")
		default:
			observability.RecordAnnouncement("error")
			respondError(w, http.StatusInternalServerError, "announcement failed")
		}
		return
	}

	observability.RecordAnnouncement("success")
	observability.RecordNotificationsInserted(result.NotificationsCreated)
	respondJSON(w, http.StatusOK, result)
}

// SegmentResolveResponse is the JSON response for /api/segments/resolve.
type SegmentResolveResponse struct {
	Recipients int              `json:"recipients"`
	UserIDs    []string         `json:"user_ids"`
	Warnings   []domain.Warning `json:"warnings,omitempty"`
}

func (s *Server) handleSegmentResolve(w http.ResponseWriter, r *http.Request) {
	var filter domain.SegmentFilter
	if err := json.NewDecoder(r.Body).Decode(&filter); err != nil {
		respondError(w, http.StatusBadRequest, "invalid filter payload")
		return
	}

	result, err := s.resolver.Resolve(r.Context(), &filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to resolve segment")
		return
	}

	userIDs := make([]string, len(result.Profiles))
	for i, p := range result.Profiles {
		userIDs[i] = p.UserID
	}

	respondJSON(w, http.StatusOK, SegmentResolveResponse{
		Recipients: len(userIDs),
		UserIDs:    userIDs,
		Warnings:   result.Warnings,
	})
}

// SegmentNotifyRequest is the JSON request for /api/notifications/segment.
type SegmentNotifyRequest struct {
	Filter  *domain.SegmentFilter `json:"filter"`
	Title   string                `json:"title"`
	Message string                `json:"message"`
}

func (s *Server) handleSegmentNotify(w http.ResponseWriter, r *http.Request) {
	var req SegmentNotifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if req.Title == "" || req.Message == "" {
		respondError(w, http.StatusBadRequest, "title and message are required")
		return
	}

	result, err := s.orchestrator.NotifySegment(r.Context(), s.resolver, req.Filter, req.Title, req.Message)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to send segment notification")
		return
	}

	observability.RecordNotificationsInserted(result.NotificationsCreated)
	respondJSON(w, http.StatusOK, result)
}
