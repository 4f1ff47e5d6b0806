package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"fitmetrics/internal/domain"
	"fitmetrics/internal/storage"
)

func TestChallengeStore_InsertAndGet(t *testing.T) {
	pool := setupTestDB(t)
	store := NewChallengeStore(pool)
	ctx := context.Background()

	now := time.Now().UnixMilli()
	challenge := &domain.Challenge{
		ID:      "ch-1",
		Title:   "30-Day Plank",
		Type:    domain.ChallengeTypeCommunity,
		Status:  domain.ChallengeStatusActive,
		StartAt: now - 1000,
		EndAt:   now + 1000,
	}

	require.NoError(t, store.Insert(ctx, challenge))

	got, err := store.GetByID(ctx, "ch-1")
	require.NoError(t, err)
	require.Equal(t, "30-Day Plank", got.Title)
	require.Equal(t, domain.ChallengeTypeCommunity, got.Type)
	require.Equal(t, domain.ChallengeStatusActive, got.Status)
	require.Nil(t, got.WinnerAnnouncedAt)
	require.Nil(t, got.WinnerData)
	require.NotZero(t, got.CreatedAt)
}

func TestChallengeStore_InsertDuplicate(t *testing.T) {
	pool := setupTestDB(t)
	store := NewChallengeStore(pool)
	ctx := context.Background()

	challenge := &domain.Challenge{
		ID:     "ch-1",
		Title:  "Spring Sprint",
		Type:   domain.ChallengeTypeLocal,
		Status: domain.ChallengeStatusActive,
	}

	require.NoError(t, store.Insert(ctx, challenge))

	err := store.Insert(ctx, challenge)
	require.True(t, errors.Is(err, storage.ErrDuplicateKey))
}

func TestChallengeStore_GetByIDNotFound(t *testing.T) {
	pool := setupTestDB(t)
	store := NewChallengeStore(pool)

	_, err := store.GetByID(context.Background(), "missing")
	require.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestChallengeStore_GetUnannounced(t *testing.T) {
	pool := setupTestDB(t)
	store := NewChallengeStore(pool)
	ctx := context.Background()

	announced := int64(5000)
	challenges := []*domain.Challenge{
		{ID: "ch-active", Title: "A", Type: domain.ChallengeTypeLocal, Status: domain.ChallengeStatusActive, EndAt: 100},
		{ID: "ch-done-old", Title: "B", Type: domain.ChallengeTypeLocal, Status: domain.ChallengeStatusCompleted, EndAt: 100},
		{ID: "ch-done-new", Title: "C", Type: domain.ChallengeTypeLocal, Status: domain.ChallengeStatusCompleted, EndAt: 200},
		{ID: "ch-announced", Title: "D", Type: domain.ChallengeTypeLocal, Status: domain.ChallengeStatusCompleted, EndAt: 300, WinnerAnnouncedAt: &announced},
	}
	for _, c := range challenges {
		require.NoError(t, store.Insert(ctx, c))
	}

	got, err := store.GetUnannounced(ctx)
	require.NoError(t, err)

	require.Len(t, got, 2)
	require.Equal(t, "ch-done-new", got[0].ID)
	require.Equal(t, "ch-done-old", got[1].ID)
}

func TestChallengeStore_SetWinners(t *testing.T) {
	pool := setupTestDB(t)
	store := NewChallengeStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, &domain.Challenge{
		ID:     "ch-1",
		Title:  "Summer Steps",
		Type:   domain.ChallengeTypeVerified,
		Status: domain.ChallengeStatusCompleted,
	}))

	winners := []domain.Winner{
		{Rank: 1, UserID: "user-1", UserName: "Alex", Points: 900},
		{Rank: 2, UserID: "user-2", UserName: "Sam", Points: 850},
	}
	require.NoError(t, store.SetWinners(ctx, "ch-1", winners, 12345))

	got, err := store.GetByID(ctx, "ch-1")
	require.NoError(t, err)
	require.NotNil(t, got.WinnerAnnouncedAt)
	require.Equal(t, int64(12345), *got.WinnerAnnouncedAt)
	require.Equal(t, winners, got.WinnerData)
}

func TestChallengeStore_SetWinnersAlreadyAnnounced(t *testing.T) {
	pool := setupTestDB(t)
	store := NewChallengeStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, &domain.Challenge{
		ID:     "ch-1",
		Title:  "Summer Steps",
		Type:   domain.ChallengeTypeVerified,
		Status: domain.ChallengeStatusCompleted,
	}))

	first := []domain.Winner{{Rank: 1, UserID: "user-1", UserName: "Alex", Points: 900}}
	require.NoError(t, store.SetWinners(ctx, "ch-1", first, 100))

	// Second announcer loses the check-and-set
	second := []domain.Winner{{Rank: 1, UserID: "user-2", UserName: "Sam", Points: 850}}
	err := store.SetWinners(ctx, "ch-1", second, 200)
	require.True(t, errors.Is(err, storage.ErrAlreadyAnnounced))

	// First announcement is untouched
	got, err := store.GetByID(ctx, "ch-1")
	require.NoError(t, err)
	require.Equal(t, int64(100), *got.WinnerAnnouncedAt)
	require.Equal(t, first, got.WinnerData)
}

func TestChallengeStore_SetWinnersNotFound(t *testing.T) {
	pool := setupTestDB(t)
	store := NewChallengeStore(pool)

	err := store.SetWinners(context.Background(), "missing", nil, 100)
	require.True(t, errors.Is(err, storage.ErrNotFound))
}
