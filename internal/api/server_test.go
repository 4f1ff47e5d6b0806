package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"fitmetrics/internal/announce"
	"fitmetrics/internal/cache"
	"fitmetrics/internal/domain"
	"fitmetrics/internal/leaderboard"
	"fitmetrics/internal/push/stub"
	"fitmetrics/internal/segment"
	"fitmetrics/internal/stats"
	"fitmetrics/internal/storage/memory"
)

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC).UnixMilli()

type fixture struct {
	server *Server
	router http.Handler

	challengeStore    *memory.ChallengeStore
	participantStore  *memory.ParticipantStore
	profileStore      *memory.ProfileStore
	workoutStore      *memory.WorkoutStore
	notificationStore *memory.NotificationStore
	pushSender        *stub.Sender
}

func newFixture(t *testing.T, statsCache *cache.StatsCache) *fixture {
	t.Helper()

	f := &fixture{
		challengeStore:    memory.NewChallengeStore(),
		participantStore:  memory.NewParticipantStore(),
		profileStore:      memory.NewProfileStore(),
		workoutStore:      memory.NewWorkoutStore(),
		notificationStore: memory.NewNotificationStore(),
		pushSender:        stub.NewSender(),
	}

	aggregator := stats.NewAggregator(f.challengeStore, f.participantStore, f.profileStore, f.workoutStore)
	ranker := leaderboard.NewRanker(f.participantStore, f.profileStore)
	resolver := segment.NewResolver(f.profileStore)
	orchestrator := announce.New(announce.Options{
		ChallengeStore:    f.challengeStore,
		NotificationStore: f.notificationStore,
		Ranker:            ranker,
		PushSender:        f.pushSender,
		Now:               func() int64 { return fixedNow },
	})

	f.server = NewServer(Options{
		Aggregator:   aggregator,
		Ranker:       ranker,
		Resolver:     resolver,
		Orchestrator: orchestrator,
		StatsCache:   statsCache,
		Now:          func() int64 { return fixedNow },
	})
	f.router = f.server.Router()
	return f
}

func (f *fixture) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	day := int64(86_400_000)

	challenges := []*domain.Challenge{
		{ID: "ch-1", Title: "Summer Steps", Type: domain.ChallengeTypeCommunity,
			Status: domain.ChallengeStatusCompleted, StartAt: fixedNow - 30*day, EndAt: fixedNow - day, CreatedAt: fixedNow - 30*day},
		{ID: "ch-2", Title: "June Run", Type: domain.ChallengeTypeLocal,
			Status: domain.ChallengeStatusActive, StartAt: fixedNow - day, EndAt: fixedNow + day, CreatedAt: fixedNow - day},
	}
	for _, c := range challenges {
		require.NoError(t, f.challengeStore.Insert(ctx, c))
	}

	joinBase := fixedNow - 20*day
	participants := []*domain.Participant{
		{ID: "p1", ChallengeID: "ch-1", UserID: "u1", Progress: 100, Points: 90, JoinedAt: joinBase + 2*day, CreatedAt: fixedNow},
		{ID: "p2", ChallengeID: "ch-1", UserID: "u2", Progress: 100, Points: 90, JoinedAt: joinBase + day, CreatedAt: fixedNow},
		{ID: "p3", ChallengeID: "ch-1", UserID: "u3", Progress: 40, Points: 70, JoinedAt: joinBase, CreatedAt: fixedNow},
	}
	for _, p := range participants {
		require.NoError(t, f.participantStore.Insert(ctx, p))
	}

	profiles := []*domain.Profile{
		{UserID: "u1", DisplayName: "Alex", Level: 12, CurrentStreak: 6, LastActiveAt: fixedNow - day, CreatedAt: fixedNow},
		{UserID: "u2", DisplayName: "Sam", Level: 7, CurrentStreak: 2, LastActiveAt: fixedNow, CreatedAt: fixedNow},
		{UserID: "u3", DisplayName: "Kim", Level: 3, CurrentStreak: 0, LastActiveAt: fixedNow - 10*day, CreatedAt: fixedNow},
	}
	for _, p := range profiles {
		require.NoError(t, f.profileStore.Insert(ctx, p))
	}

	require.NoError(t, f.workoutStore.InsertWorkout(ctx, &domain.Workout{
		ID: "wo-1", Title: "Morning Run", Category: "cardio", DurationMinutes: 30, CreatedAt: fixedNow - 5*day,
	}))
	completedAt := fixedNow - day
	sessions := []*domain.WorkoutSession{
		{ID: "s1", WorkoutID: "wo-1", UserID: "u1", CompletedAt: &completedAt, CreatedAt: fixedNow - 2*day},
		{ID: "s2", WorkoutID: "wo-1", UserID: "u2", CreatedAt: fixedNow - day},
	}
	for _, s := range sessions {
		require.NoError(t, f.workoutStore.Insert(ctx, s))
	}
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
}

func TestStatus(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var status StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	require.Equal(t, "running", status.Status)
}

func TestDashboard(t *testing.T) {
	f := newFixture(t, nil)
	f.seed(t)

	rec := f.do(t, http.MethodGet, "/api/stats/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var dash domain.DashboardStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dash))
	require.Equal(t, 2, dash.TotalChallenges)
	require.Equal(t, 1, dash.ActiveChallenges)
	require.Equal(t, 3, dash.TotalParticipants)
	require.Equal(t, 2, dash.TotalCompletions)
	require.Len(t, dash.Participation, 30)

	require.Len(t, dash.WorkoutStats, 1)
	require.Equal(t, "wo-1", dash.WorkoutStats[0].WorkoutID)
	require.Equal(t, 2, dash.WorkoutStats[0].Sessions)
	require.Equal(t, 0.5, dash.WorkoutStats[0].CompletionRate)
}

func TestDashboardCacheAside(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	statsCache := cache.New(client, time.Minute)

	f := newFixture(t, statsCache)
	f.seed(t)

	// First request computes and fills the cache
	rec := f.do(t, http.MethodGet, "/api/stats/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	cached, ok, err := statsCache.Get(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 2, cached.TotalChallenges)

	// Second request is served from cache and matches
	rec2 := f.do(t, http.MethodGet, "/api/stats/dashboard", nil)
	require.Equal(t, http.StatusOK, rec2.Code)
	require.JSONEq(t, rec.Body.String(), rec2.Body.String())
}

func TestParticipation(t *testing.T) {
	f := newFixture(t, nil)
	f.seed(t)

	rec := f.do(t, http.MethodGet, "/api/stats/participation?days=7", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ParticipationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 7, resp.Days)
	require.Len(t, resp.Buckets, 7)
}

func TestParticipationFromActivityEvents(t *testing.T) {
	f := newFixture(t, nil)
	f.seed(t)

	events := memory.NewActivityEventStore()
	require.NoError(t, events.InsertBulk(context.Background(), []*domain.ActivityEvent{
		{EventType: domain.ActivityParticipantJoined, UserID: "u1", ChallengeID: "ch-2", OccurredAt: fixedNow - 86_400_000},
		{EventType: domain.ActivityParticipantJoined, UserID: "u2", ChallengeID: "ch-2", OccurredAt: fixedNow - 86_400_000},
		{EventType: domain.ActivityWorkoutCompleted, UserID: "u1", OccurredAt: fixedNow - 86_400_000},
	}))
	f.server.events = events

	rec := f.do(t, http.MethodGet, "/api/stats/participation?days=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ParticipationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Buckets, 3)
	// Two joins yesterday, workout events excluded
	require.Equal(t, 2, resp.Buckets[1].Count)
	require.Equal(t, 0, resp.Buckets[0].Count+resp.Buckets[2].Count)
}

func TestParticipationBadDays(t *testing.T) {
	f := newFixture(t, nil)
	f.seed(t)

	for _, query := range []string{"days=0", "days=-3", "days=abc"} {
		rec := f.do(t, http.MethodGet, "/api/stats/participation?"+query, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code, "query %q", query)
	}
}

func TestLeaderboard(t *testing.T) {
	f := newFixture(t, nil)
	f.seed(t)

	rec := f.do(t, http.MethodGet, "/api/challenges/ch-1/leaderboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp LeaderboardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "ch-1", resp.ChallengeID)
	require.Len(t, resp.Entries, 3)

	// Ties on points break by earlier join, then ID
	require.Equal(t, []string{"u2", "u1", "u3"}, []string{
		resp.Entries[0].UserID, resp.Entries[1].UserID, resp.Entries[2].UserID,
	})
	require.Equal(t, 1, resp.Entries[0].Rank)
	require.Equal(t, "Sam", resp.Entries[0].UserName)
}

func TestLeaderboardLimitKeepsRanks(t *testing.T) {
	f := newFixture(t, nil)
	f.seed(t)

	rec := f.do(t, http.MethodGet, "/api/challenges/ch-1/leaderboard?limit=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp LeaderboardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Entries, 2)
	require.Equal(t, 1, resp.Entries[0].Rank)
	require.Equal(t, 2, resp.Entries[1].Rank)
}

func TestLeaderboardEmpty(t *testing.T) {
	f := newFixture(t, nil)
	f.seed(t)

	rec := f.do(t, http.MethodGet, "/api/challenges/ch-2/leaderboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp LeaderboardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Empty(t, resp.Entries)
}

func TestLeaderboardBadLimit(t *testing.T) {
	f := newFixture(t, nil)
	f.seed(t)

	rec := f.do(t, http.MethodGet, "/api/challenges/ch-1/leaderboard?limit=-1", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnnounce(t *testing.T) {
	f := newFixture(t, nil)
	f.seed(t)

	rec := f.do(t, http.MethodPost, "/api/challenges/ch-1/announce", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result announce.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Equal(t, "ch-1", result.ChallengeID)
	require.Len(t, result.Winners, 3)
	require.Equal(t, "u2", result.Winners[0].UserID)
	require.Equal(t, 3, result.NotificationsCreated)
}

func TestAnnounceTopK(t *testing.T) {
	f := newFixture(t, nil)
	f.seed(t)

	rec := f.do(t, http.MethodPost, "/api/challenges/ch-1/announce?top_k=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result announce.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Winners, 1)
	require.Equal(t, "u2", result.Winners[0].UserID)
	// All participants still notified
	require.Equal(t, 3, result.NotificationsCreated)
}

func TestAnnounceBadTopK(t *testing.T) {
	f := newFixture(t, nil)
	f.seed(t)

	for _, query := range []string{"top_k=0", "top_k=-2", "top_k=abc"} {
		rec := f.do(t, http.MethodPost, "/api/challenges/ch-1/announce?"+query, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code, "query %q", query)
	}
}

func TestAnnounceTwiceConflicts(t *testing.T) {
	f := newFixture(t, nil)
	f.seed(t)

	rec := f.do(t, http.MethodPost, "/api/challenges/ch-1/announce", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/challenges/ch-1/announce", nil)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestAnnounceNotFound(t *testing.T) {
	f := newFixture(t, nil)
	f.seed(t)

	rec := f.do(t, http.MethodPost, "/api/challenges/nope/announce", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnnounceNotCompleted(t *testing.T) {
	f := newFixture(t, nil)
	f.seed(t)

	rec := f.do(t, http.MethodPost, "/api/challenges/ch-2/announce", nil)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestAnnounceEmptyLeaderboard(t *testing.T) {
	f := newFixture(t, nil)
	f.seed(t)

	// Completed challenge with no participants
	require.NoError(t, f.challengeStore.Insert(context.Background(), &domain.Challenge{
		ID: "ch-3", Title: "Ghost Town", Type: domain.ChallengeTypeLocal,
		Status: domain.ChallengeStatusCompleted, StartAt: fixedNow - 10*86_400_000, EndAt: fixedNow - 86_400_000, CreatedAt: fixedNow,
	}))

	rec := f.do(t, http.MethodPost, "/api/challenges/ch-3/announce", nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestSegmentResolve(t *testing.T) {
	f := newFixture(t, nil)
	f.seed(t)

	levelMin := 5
	rec := f.do(t, http.MethodPost, "/api/segments/resolve", domain.SegmentFilter{LevelMin: &levelMin})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SegmentResolveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Recipients)
	require.ElementsMatch(t, []string{"u1", "u2"}, resp.UserIDs)
	require.Empty(t, resp.Warnings)
}

func TestSegmentResolveNoRecipients(t *testing.T) {
	f := newFixture(t, nil)
	f.seed(t)

	levelMin := 99
	rec := f.do(t, http.MethodPost, "/api/segments/resolve", domain.SegmentFilter{LevelMin: &levelMin})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SegmentResolveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 0, resp.Recipients)
	require.Contains(t, resp.Warnings, domain.WarningNoRecipients)
}

func TestSegmentNotify(t *testing.T) {
	f := newFixture(t, nil)
	f.seed(t)

	levelMin := 10
	rec := f.do(t, http.MethodPost, "/api/notifications/segment", SegmentNotifyRequest{
		Filter:  &domain.SegmentFilter{LevelMin: &levelMin},
		Title:   "New challenge",
		Message: "Check out the new challenge!",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result announce.SegmentResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Equal(t, 1, result.Recipients)
	require.Equal(t, 1, result.NotificationsCreated)
	require.Len(t, f.pushSender.Sent(), 1)
}

func TestSegmentNotifyMissingTitle(t *testing.T) {
	f := newFixture(t, nil)
	f.seed(t)

	rec := f.do(t, http.MethodPost, "/api/notifications/segment", SegmentNotifyRequest{
		Message: "no title",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
