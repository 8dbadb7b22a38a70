package domain

import "time"

// Stats aggregates the statistics achievement predicates read. It is a plain
// value snapshot assembled by the board store at evaluation time.
type Stats struct {
	CompletedTotal      int              `json:"completed_total"`
	CompletedByCategory map[Category]int `json:"completed_by_category,omitempty"`
	UrgentCompleted     int              `json:"urgent_completed"`
	CurrentStreak       int              `json:"current_streak"`
	LongestStreak       int              `json:"longest_streak"`
	FocusMinutes        int              `json:"focus_minutes"`
}

// CompletedIn returns the completed count for one category.
func (s Stats) CompletedIn(c Category) int {
	if s.CompletedByCategory == nil {
		return 0
	}
	return s.CompletedByCategory[c]
}

// Achievement is the evaluated view of one badge for one user.
//
// UnlockedAt is set at most once and never cleared, even if the statistic
// that unlocked it later decreases.
type Achievement struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Progress    float64    `json:"progress"`
	UnlockedAt  *time.Time `json:"unlocked_at,omitempty"`
}

// Unlocked reports whether the badge has been earned.
func (a *Achievement) Unlocked() bool {
	return a != nil && a.UnlockedAt != nil
}
