package usecase

import (
	"context"
	"time"

	"github.com/tasksnap/backend/domain"
)

// Sync operations replicated to the user's other devices.
const (
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

// SyncOutbox abstracts the replication layer so the board store stays
// transport-agnostic. Queueing is fire-and-forget from the store's point of
// view; delivery failures are the outbox's problem.
type SyncOutbox interface {
	QueueTask(ctx context.Context, operation string, task *domain.Task) error
}

// TierSource resolves the active-task limit for a user. It is consulted at
// every gated operation so a tier upgrade takes effect on the next call.
type TierSource interface {
	Limit(ctx context.Context, userID string) domain.TierLimit
}

// StreakRecorder consumes completion events and returns the updated streak.
type StreakRecorder interface {
	RecordCompletion(ctx context.Context, userID string, at time.Time) (domain.StreakState, error)
}

// AchievementSink re-evaluates unlock predicates against fresh statistics
// and returns the badges unlocked by this evaluation.
type AchievementSink interface {
	Evaluate(ctx context.Context, userID string, stats domain.Stats) ([]domain.Achievement, error)
}

// FocusStats exposes the focus-time aggregate some achievement rules read.
type FocusStats interface {
	CompletedMinutes(ctx context.Context, userID string) (int, error)
}
