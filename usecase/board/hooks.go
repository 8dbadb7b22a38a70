package board

import (
	"go.uber.org/zap"

	"github.com/tasksnap/backend/domain"
)

// Hooks are fire-and-forget notifications triggered by committed
// transitions. The store calls them synchronously but never depends on their
// completion or success; implementations must not block.
type Hooks interface {
	TaskCompleted(task domain.Task)
	StreakAdvanced(state domain.StreakState)
	AchievementUnlocked(achievement domain.Achievement)
}

// NopHooks discards every notification.
type NopHooks struct{}

func (NopHooks) TaskCompleted(domain.Task)              {}
func (NopHooks) StreakAdvanced(domain.StreakState)      {}
func (NopHooks) AchievementUnlocked(domain.Achievement) {}

// LogHooks records celebrations in the log; it stands in for the push
// notification and haptic senders owned by the mobile clients.
type LogHooks struct {
	Logger *zap.Logger
}

func NewLogHooks(logger *zap.Logger) LogHooks {
	if logger == nil {
		logger = zap.NewNop()
	}
	return LogHooks{Logger: logger}
}

func (h LogHooks) TaskCompleted(task domain.Task) {
	h.Logger.Info("task completed",
		zap.String("task_id", task.ID),
		zap.String("user_id", task.UserID),
		zap.String("category", string(task.Category)))
}

func (h LogHooks) StreakAdvanced(state domain.StreakState) {
	h.Logger.Info("streak updated",
		zap.String("user_id", state.UserID),
		zap.Int("current", state.Current),
		zap.Int("longest", state.Longest))
}

func (h LogHooks) AchievementUnlocked(achievement domain.Achievement) {
	h.Logger.Info("achievement unlocked",
		zap.String("achievement_id", achievement.ID),
		zap.String("title", achievement.Title))
}
