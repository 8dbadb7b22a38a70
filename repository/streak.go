package repository

import (
	"context"

	"github.com/tasksnap/backend/domain"
)

// StreakRepository stores per-user streak snapshots. The snapshot is a cache
// of derived state; losing it only costs the streak history, never task data.
type StreakRepository interface {
	Get(ctx context.Context, userID string) (*domain.StreakState, error)
	Save(ctx context.Context, state *domain.StreakState) error
}
