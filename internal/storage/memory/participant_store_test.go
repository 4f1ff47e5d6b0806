package memory

import (
	"context"
	"errors"
	"testing"

	"fitmetrics/internal/domain"
	"fitmetrics/internal/storage"
)

func TestParticipantStore_InsertAndGetByChallenge(t *testing.T) {
	store := NewParticipantStore()
	ctx := context.Background()

	ps := []*domain.Participant{
		{ID: "p2", ChallengeID: "ch-1", UserID: "u2", Points: 50, JoinedAt: 200},
		{ID: "p1", ChallengeID: "ch-1", UserID: "u1", Points: 90, JoinedAt: 100},
		{ID: "p3", ChallengeID: "ch-2", UserID: "u3", Points: 10, JoinedAt: 150},
	}
	for _, p := range ps {
		if err := store.Insert(ctx, p); err != nil {
			t.Fatalf("Insert %s failed: %v", p.ID, err)
		}
	}

	result, err := store.GetByChallengeID(ctx, "ch-1")
	if err != nil {
		t.Fatalf("GetByChallengeID failed: %v", err)
	}

	if len(result) != 2 {
		t.Fatalf("Expected 2 participants, got %d", len(result))
	}
	// Ordered by joined_at ASC
	if result[0].ID != "p1" || result[1].ID != "p2" {
		t.Errorf("Wrong order: got %s, %s", result[0].ID, result[1].ID)
	}
}

func TestParticipantStore_DuplicateKey(t *testing.T) {
	store := NewParticipantStore()
	ctx := context.Background()

	p := &domain.Participant{ID: "p1", ChallengeID: "ch-1", UserID: "u1"}
	if err := store.Insert(ctx, p); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.Insert(ctx, p)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestParticipantStore_InsertBulkPartialDuplicate(t *testing.T) {
	store := NewParticipantStore()
	ctx := context.Background()

	first := &domain.Participant{ID: "p1", ChallengeID: "ch-1", UserID: "u1"}
	if err := store.Insert(ctx, first); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	batch := []*domain.Participant{
		{ID: "p2", ChallengeID: "ch-1", UserID: "u2"},
		{ID: "p1", ChallengeID: "ch-1", UserID: "u1"}, // duplicate
	}

	err := store.InsertBulk(ctx, batch)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}

	// Verify no partial insert
	all, _ := store.GetAll(ctx)
	if len(all) != 1 {
		t.Errorf("Expected 1 participant (no partial insert), got %d", len(all))
	}
}

func TestParticipantStore_TieBreakByID(t *testing.T) {
	store := NewParticipantStore()
	ctx := context.Background()

	ps := []*domain.Participant{
		{ID: "pb", ChallengeID: "ch-1", UserID: "u2", JoinedAt: 100},
		{ID: "pa", ChallengeID: "ch-1", UserID: "u1", JoinedAt: 100},
	}
	if err := store.InsertBulk(ctx, ps); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	result, _ := store.GetByChallengeID(ctx, "ch-1")
	if result[0].ID != "pa" {
		t.Errorf("Equal joined_at should break tie by id ASC, got %s first", result[0].ID)
	}
}

func TestParticipantStore_InvalidInput(t *testing.T) {
	store := NewParticipantStore()
	ctx := context.Background()

	if err := store.Insert(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for nil, got %v", err)
	}
	if err := store.Insert(ctx, &domain.Participant{ID: "p1"}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for missing challenge/user, got %v", err)
	}
}
