package domain

import "time"

// StreakState is the derived day-based completion streak for one user.
//
// LastCompletionDay is a local-midnight timestamp; comparing it with another
// day value is always an exact Equal/AddDate comparison, never a duration.
type StreakState struct {
	UserID            string    `json:"user_id"`
	Current           int       `json:"current"`
	Longest           int       `json:"longest"`
	LastCompletionDay time.Time `json:"last_completion_day"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Alive reports whether the streak is still running relative to today:
// the most recent completion day is today or yesterday.
func (s StreakState) Alive(today time.Time) bool {
	if s.LastCompletionDay.IsZero() || s.Current == 0 {
		return false
	}
	return !today.After(s.LastCompletionDay.AddDate(0, 0, 1))
}
