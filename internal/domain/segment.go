package domain

// SegmentFilter selects profiles by conjunction of optional bounds.
// Nil fields are unset and match everything.
type SegmentFilter struct {
	LevelMin    *int   `json:"level_min,omitempty"`
	LevelMax    *int   `json:"level_max,omitempty"`
	StreakMin   *int   `json:"streak_min,omitempty"`
	StreakMax   *int   `json:"streak_max,omitempty"`
	ActiveAfter *int64 `json:"active_after,omitempty"` // Unix ms, matches LastActiveAt >= value
}

// IsEmpty reports whether no criteria are set (filter matches all profiles).
func (f *SegmentFilter) IsEmpty() bool {
	return f.LevelMin == nil && f.LevelMax == nil &&
		f.StreakMin == nil && f.StreakMax == nil && f.ActiveAfter == nil
}
