package repository

import (
	"context"
	"time"
)

// UnlockRecord is the persisted fact that a user earned a badge.
type UnlockRecord struct {
	UserID        string
	AchievementID string
	UnlockedAt    time.Time
}

type AchievementRepository interface {
	// ListUnlocked returns every unlock record for the user.
	ListUnlocked(ctx context.Context, userID string) ([]UnlockRecord, error)
	// Unlock persists an unlock exactly once; repeated calls for the same
	// (user, achievement) pair keep the original timestamp.
	Unlock(ctx context.Context, record UnlockRecord) error
}
