package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"fitmetrics/internal/domain"
	"fitmetrics/internal/storage"
)

// ErrEmptyLeaderboard is returned when winner selection needs at least one
// participant. Displaying an empty leaderboard is not an error.
var ErrEmptyLeaderboard = errors.New("challenge has no participants")

// Ranker computes challenge leaderboards from participant and profile data.
type Ranker struct {
	participantStore storage.ParticipantStore
	profileStore     storage.ProfileStore
}

// NewRanker creates a new leaderboard ranker.
func NewRanker(participantStore storage.ParticipantStore, profileStore storage.ProfileStore) *Ranker {
	return &Ranker{
		participantStore: participantStore,
		profileStore:     profileStore,
	}
}

// Compute loads a challenge's participants and returns the ranked
// leaderboard. limit > 0 truncates to the top entries after ranking the full
// set; limit <= 0 returns every entry. A challenge without participants
// yields an empty, valid leaderboard.
func (r *Ranker) Compute(ctx context.Context, challengeID string, limit int) ([]domain.LeaderboardEntry, error) {
	participants, err := r.participantStore.GetByChallengeID(ctx, challengeID)
	if err != nil {
		return nil, fmt.Errorf("load participants: %w", err)
	}

	names, err := r.displayNames(ctx)
	if err != nil {
		return nil, err
	}

	return Rank(participants, names, limit), nil
}

// Rank orders participants by score DESC, joined_at ASC, id ASC and assigns
// positional ranks 1..N over the full set. Truncation to limit happens after
// ranking, so a top-K slice carries the same ranks it has in the full
// leaderboard. Pure transform.
func Rank(participants []*domain.Participant, names map[string]string, limit int) []domain.LeaderboardEntry {
	sorted := make([]*domain.Participant, len(participants))
	copy(sorted, participants)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Points != sorted[j].Points {
			return sorted[i].Points > sorted[j].Points
		}
		if sorted[i].JoinedAt != sorted[j].JoinedAt {
			return sorted[i].JoinedAt < sorted[j].JoinedAt
		}
		return sorted[i].ID < sorted[j].ID
	})

	entries := make([]domain.LeaderboardEntry, len(sorted))
	for i, p := range sorted {
		entries[i] = domain.LeaderboardEntry{
			Rank:          i + 1,
			ParticipantID: p.ID,
			UserID:        p.UserID,
			UserName:      names[p.UserID],
			Score:         p.Points,
			JoinedAt:      p.JoinedAt,
		}
	}

	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return entries
}

// Winners converts the top K leaderboard entries into a winner payload.
// Returns ErrEmptyLeaderboard when there are no entries to select from.
func Winners(entries []domain.LeaderboardEntry, k int) ([]domain.Winner, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyLeaderboard
	}
	if k > len(entries) {
		k = len(entries)
	}

	winners := make([]domain.Winner, k)
	for i, e := range entries[:k] {
		winners[i] = domain.Winner{
			Rank:     e.Rank,
			UserID:   e.UserID,
			UserName: e.UserName,
			Points:   e.Score,
		}
	}
	return winners, nil
}

// displayNames builds a user_id -> display name lookup.
func (r *Ranker) displayNames(ctx context.Context) (map[string]string, error) {
	profiles, err := r.profileStore.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}

	names := make(map[string]string, len(profiles))
	for _, p := range profiles {
		names[p.UserID] = p.DisplayName
	}
	return names, nil
}
