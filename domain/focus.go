package domain

import "time"

// FocusSession records one timed focus run against a task.
type FocusSession struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	TaskID         string     `json:"task_id,omitempty"`
	PlannedMinutes int        `json:"planned_minutes"`
	StartedAt      time.Time  `json:"started_at"`
	EndedAt        *time.Time `json:"ended_at,omitempty"`
	Completed      bool       `json:"completed"`
}

// Running reports whether the session has not been finished yet.
func (f *FocusSession) Running() bool {
	return f != nil && f.EndedAt == nil
}

// Minutes returns the elapsed whole minutes of a finished session.
func (f *FocusSession) Minutes() int {
	if f == nil || f.EndedAt == nil {
		return 0
	}
	return int(f.EndedAt.Sub(f.StartedAt) / time.Minute)
}
