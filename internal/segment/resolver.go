package segment

import (
	"context"
	"fmt"

	"fitmetrics/internal/domain"
	"fitmetrics/internal/storage"
)

// Result is a resolved notification audience. An empty audience is valid and
// carries WarningNoRecipients so operators notice before sending.
type Result struct {
	Profiles []*domain.Profile
	Warnings []domain.Warning
}

// Resolver evaluates segment filters against the profile population.
type Resolver struct {
	profileStore storage.ProfileStore
}

// NewResolver creates a new segment resolver.
func NewResolver(profileStore storage.ProfileStore) *Resolver {
	return &Resolver{profileStore: profileStore}
}

// Resolve loads all profiles and applies the filter. A nil filter targets
// every profile ("all users" mode).
func (r *Resolver) Resolve(ctx context.Context, filter *domain.SegmentFilter) (*Result, error) {
	profiles, err := r.profileStore.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}
	return Apply(filter, profiles), nil
}

// Apply filters profiles by the conjunction of all set bounds. Unset fields
// match everything; an all-unset filter returns every profile. Pure transform.
func Apply(filter *domain.SegmentFilter, profiles []*domain.Profile) *Result {
	result := &Result{}

	for _, p := range profiles {
		if matches(filter, p) {
			result.Profiles = append(result.Profiles, p)
		}
	}

	if len(result.Profiles) == 0 {
		result.Warnings = append(result.Warnings, domain.WarningNoRecipients)
	}
	return result
}

// matches checks every set constraint; all must hold.
func matches(filter *domain.SegmentFilter, p *domain.Profile) bool {
	if filter == nil {
		return true
	}
	if filter.LevelMin != nil && p.Level < *filter.LevelMin {
		return false
	}
	if filter.LevelMax != nil && p.Level > *filter.LevelMax {
		return false
	}
	if filter.StreakMin != nil && p.CurrentStreak < *filter.StreakMin {
		return false
	}
	if filter.StreakMax != nil && p.CurrentStreak > *filter.StreakMax {
		return false
	}
	if filter.ActiveAfter != nil && p.LastActiveAt < *filter.ActiveAfter {
		return false
	}
	return true
}
