package memory

import (
	"context"
	"errors"
	"testing"

	"fitmetrics/internal/domain"
	"fitmetrics/internal/storage"
)

func TestWorkoutStore_InsertAndGetByUser(t *testing.T) {
	store := NewWorkoutStore()
	ctx := context.Background()

	ws := []*domain.WorkoutSession{
		{ID: "w2", UserID: "u1", CreatedAt: 200},
		{ID: "w1", UserID: "u1", CreatedAt: 100},
		{ID: "w3", UserID: "u2", CreatedAt: 150},
	}
	for _, w := range ws {
		if err := store.Insert(ctx, w); err != nil {
			t.Fatalf("Insert %s failed: %v", w.ID, err)
		}
	}

	result, err := store.GetByUserID(ctx, "u1")
	if err != nil {
		t.Fatalf("GetByUserID failed: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("Expected 2 sessions, got %d", len(result))
	}
	if result[0].ID != "w1" {
		t.Errorf("Expected created_at ASC order, got %s first", result[0].ID)
	}
}

func TestWorkoutStore_CountByUser(t *testing.T) {
	store := NewWorkoutStore()
	ctx := context.Background()

	sessions := []*domain.WorkoutSession{
		{ID: "w1", UserID: "u1"},
		{ID: "w2", UserID: "u1"},
		{ID: "w3", UserID: "u2"},
	}
	for _, w := range sessions {
		if err := store.Insert(ctx, w); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	counts, err := store.CountByUser(ctx)
	if err != nil {
		t.Fatalf("CountByUser failed: %v", err)
	}
	if counts["u1"] != 2 || counts["u2"] != 1 {
		t.Errorf("Count mismatch: %v", counts)
	}
}

func TestWorkoutStore_Workouts(t *testing.T) {
	store := NewWorkoutStore()
	ctx := context.Background()

	workouts := []*domain.Workout{
		{ID: "wo-1", Title: "Morning Run", Category: "cardio", CreatedAt: 100},
		{ID: "wo-2", Title: "Core Blast", Category: "strength", CreatedAt: 300},
		{ID: "wo-3", Title: "Stretch", Category: "mobility", CreatedAt: 200},
	}
	for _, w := range workouts {
		if err := store.InsertWorkout(ctx, w); err != nil {
			t.Fatalf("InsertWorkout %s failed: %v", w.ID, err)
		}
	}

	if err := store.InsertWorkout(ctx, workouts[0]); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}

	result, err := store.GetAllWorkouts(ctx)
	if err != nil {
		t.Fatalf("GetAllWorkouts failed: %v", err)
	}
	if len(result) != 3 {
		t.Fatalf("Expected 3 workouts, got %d", len(result))
	}
	wantOrder := []string{"wo-2", "wo-3", "wo-1"}
	for i, id := range wantOrder {
		if result[i].ID != id {
			t.Errorf("Expected created_at DESC order, got %s at %d", result[i].ID, i)
		}
	}
}

func TestWorkoutStore_DuplicateKey(t *testing.T) {
	store := NewWorkoutStore()
	ctx := context.Background()

	w := &domain.WorkoutSession{ID: "w1", UserID: "u1"}
	if err := store.Insert(ctx, w); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.Insert(ctx, w)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}
