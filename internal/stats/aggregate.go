package stats

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"fitmetrics/internal/domain"
	"fitmetrics/internal/storage"
)

// ErrMalformedSnapshot is returned for structurally invalid snapshot rows
// (nil entries, missing identifiers). A nil or empty collection is a valid
// empty snapshot, not an error.
var ErrMalformedSnapshot = errors.New("malformed snapshot")

const (
	// topChallengesLimit bounds the top-challenges table on the dashboard.
	topChallengesLimit = 5

	// participationWindowDays is the dashboard participation series window.
	participationWindowDays = 30
)

// Snapshot is a point-in-time copy of the collections dashboard stats are
// derived from. All computations treat it as read-only.
type Snapshot struct {
	Challenges   []*domain.Challenge
	Participants []*domain.Participant
	Profiles     []*domain.Profile
	Workouts     []*domain.Workout
	Sessions     []*domain.WorkoutSession
}

// Aggregator loads snapshots from the stores and derives dashboard stats.
type Aggregator struct {
	challengeStore   storage.ChallengeStore
	participantStore storage.ParticipantStore
	profileStore     storage.ProfileStore
	workoutStore     storage.WorkoutStore
}

// NewAggregator creates a new stats aggregator.
func NewAggregator(challengeStore storage.ChallengeStore, participantStore storage.ParticipantStore, profileStore storage.ProfileStore, workoutStore storage.WorkoutStore) *Aggregator {
	return &Aggregator{
		challengeStore:   challengeStore,
		participantStore: participantStore,
		profileStore:     profileStore,
		workoutStore:     workoutStore,
	}
}

// LoadSnapshot fetches a full snapshot from the stores.
func (a *Aggregator) LoadSnapshot(ctx context.Context) (*Snapshot, error) {
	challenges, err := a.challengeStore.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load challenges: %w", err)
	}

	participants, err := a.participantStore.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load participants: %w", err)
	}

	profiles, err := a.profileStore.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}

	workouts, err := a.workoutStore.GetAllWorkouts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load workouts: %w", err)
	}

	sessions, err := a.workoutStore.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load workout sessions: %w", err)
	}

	return &Snapshot{
		Challenges:   challenges,
		Participants: participants,
		Profiles:     profiles,
		Workouts:     workouts,
		Sessions:     sessions,
	}, nil
}

// ComputeDashboardStats loads a fresh snapshot and derives dashboard stats
// anchored at nowMs. Every call is a full re-derivation, never an
// incremental patch.
func (a *Aggregator) ComputeDashboardStats(ctx context.Context, nowMs int64) (*domain.DashboardStats, error) {
	snap, err := a.LoadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return ComputeDashboardStats(snap, nowMs)
}

// ComputeParticipation loads participants and buckets their join timestamps
// into a trailing window of the given number of days.
func (a *Aggregator) ComputeParticipation(ctx context.Context, days int, nowMs int64) ([]domain.DayBucket, error) {
	participants, err := a.participantStore.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load participants: %w", err)
	}

	joins := make([]int64, 0, len(participants))
	for _, p := range participants {
		if p == nil {
			return nil, fmt.Errorf("%w: nil participant", ErrMalformedSnapshot)
		}
		joins = append(joins, p.JoinedAt)
	}

	return Bucketize(joins, days, nowMs)
}

// ComputeDashboardStats derives dashboard stats from a snapshot, anchored at
// nowMs. Pure transform: no side effects, identical input yields identical
// output.
func ComputeDashboardStats(snap *Snapshot, nowMs int64) (*domain.DashboardStats, error) {
	if snap == nil {
		return nil, fmt.Errorf("%w: nil snapshot", ErrMalformedSnapshot)
	}
	if err := validateSnapshot(snap); err != nil {
		return nil, err
	}

	stats := &domain.DashboardStats{
		TotalChallenges:  len(snap.Challenges),
		ChallengesByType: make(map[domain.ChallengeType]int),
	}

	for _, c := range snap.Challenges {
		stats.ChallengesByType[c.Type]++
		if c.IsActive(nowMs) {
			stats.ActiveChallenges++
		}
	}

	// Per-challenge participant and completion counts
	participantCounts := make(map[string]int)
	completionCounts := make(map[string]int)
	joins := make([]int64, 0, len(snap.Participants))
	for _, p := range snap.Participants {
		participantCounts[p.ChallengeID]++
		if p.Completed() {
			completionCounts[p.ChallengeID]++
		}
		joins = append(joins, p.JoinedAt)
	}

	stats.TotalParticipants = len(snap.Participants)
	for _, n := range completionCounts {
		stats.TotalCompletions += n
	}
	stats.CompletionRate = rate(stats.TotalCompletions, stats.TotalParticipants)

	// Active users: at least one workout session
	activeUsers := make(map[string]struct{})
	for _, s := range snap.Sessions {
		activeUsers[s.UserID] = struct{}{}
	}
	stats.TotalActiveUsers = len(activeUsers)

	// Profile averages with fixed rounding policy
	levels := make([]int, len(snap.Profiles))
	streaks := make([]int, len(snap.Profiles))
	for i, p := range snap.Profiles {
		levels[i] = p.Level
		streaks[i] = p.CurrentStreak
	}
	stats.AvgLevel = round1(mean(levels))
	stats.AvgStreak = roundNearest(mean(streaks))

	stats.TopChallenges = topChallenges(snap.Challenges, participantCounts, completionCounts, nowMs)
	stats.WorkoutStats = workoutStats(snap.Workouts, snap.Sessions)

	participation, err := Bucketize(joins, participationWindowDays, nowMs)
	if err != nil {
		return nil, err
	}
	stats.Participation = participation

	return stats, nil
}

// validateSnapshot rejects structurally broken rows. Absent collections are
// treated as empty.
func validateSnapshot(snap *Snapshot) error {
	for _, c := range snap.Challenges {
		if c == nil || c.ID == "" {
			return fmt.Errorf("%w: invalid challenge entry", ErrMalformedSnapshot)
		}
	}
	for _, p := range snap.Participants {
		if p == nil || p.ID == "" || p.ChallengeID == "" {
			return fmt.Errorf("%w: invalid participant entry", ErrMalformedSnapshot)
		}
	}
	for _, p := range snap.Profiles {
		if p == nil || p.UserID == "" {
			return fmt.Errorf("%w: invalid profile entry", ErrMalformedSnapshot)
		}
	}
	for _, w := range snap.Workouts {
		if w == nil || w.ID == "" {
			return fmt.Errorf("%w: invalid workout entry", ErrMalformedSnapshot)
		}
	}
	for _, s := range snap.Sessions {
		if s == nil || s.UserID == "" {
			return fmt.Errorf("%w: invalid workout session entry", ErrMalformedSnapshot)
		}
	}
	return nil
}

// workoutStats builds the per-workout table ordered by created_at DESC,
// id ASC. Completion rate is completed sessions over total sessions of the
// workout, 0 when the workout has no sessions. Sessions referencing no known
// workout are excluded.
func workoutStats(workouts []*domain.Workout, sessions []*domain.WorkoutSession) []domain.WorkoutSummary {
	sessionCounts := make(map[string]int)
	completedCounts := make(map[string]int)
	for _, s := range sessions {
		sessionCounts[s.WorkoutID]++
		if s.CompletedAt != nil {
			completedCounts[s.WorkoutID]++
		}
	}

	sorted := make([]*domain.Workout, len(workouts))
	copy(sorted, workouts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].CreatedAt != sorted[j].CreatedAt {
			return sorted[i].CreatedAt > sorted[j].CreatedAt
		}
		return sorted[i].ID < sorted[j].ID
	})

	summaries := make([]domain.WorkoutSummary, 0, len(sorted))
	for _, w := range sorted {
		summaries = append(summaries, domain.WorkoutSummary{
			WorkoutID:      w.ID,
			Title:          w.Title,
			Category:       w.Category,
			Sessions:       sessionCounts[w.ID],
			Completions:    completedCounts[w.ID],
			CompletionRate: rate(completedCounts[w.ID], sessionCounts[w.ID]),
		})
	}
	return summaries
}

// topChallenges builds the top-N table ordered by participant count DESC,
// created_at ASC, id ASC.
func topChallenges(challenges []*domain.Challenge, participantCounts, completionCounts map[string]int, nowMs int64) []domain.ChallengeSummary {
	sorted := make([]*domain.Challenge, len(challenges))
	copy(sorted, challenges)
	sort.Slice(sorted, func(i, j int) bool {
		ci, cj := participantCounts[sorted[i].ID], participantCounts[sorted[j].ID]
		if ci != cj {
			return ci > cj
		}
		if sorted[i].CreatedAt != sorted[j].CreatedAt {
			return sorted[i].CreatedAt < sorted[j].CreatedAt
		}
		return sorted[i].ID < sorted[j].ID
	})

	limit := topChallengesLimit
	if len(sorted) < limit {
		limit = len(sorted)
	}

	top := make([]domain.ChallengeSummary, 0, limit)
	for _, c := range sorted[:limit] {
		top = append(top, domain.ChallengeSummary{
			ChallengeID:    c.ID,
			Title:          c.Title,
			Type:           c.Type,
			Participants:   participantCounts[c.ID],
			CompletionRate: rate(completionCounts[c.ID], participantCounts[c.ID]),
			Active:         c.IsActive(nowMs),
		})
	}
	return top
}
