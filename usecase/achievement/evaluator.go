package achievement

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tasksnap/backend/domain"
	"github.com/tasksnap/backend/repository"
)

// Evaluator applies the declarative rule set to aggregate statistics. Only
// the evaluator sets unlock timestamps, and an unlock is monotonic: once
// set it survives any later drop in the underlying statistic.
type Evaluator struct {
	rules  []Rule
	repo   repository.AchievementRepository
	clock  func() time.Time
	logger *zap.Logger

	mu       sync.Mutex
	unlocked map[string]map[string]time.Time // userID → ruleID → unlockedAt
}

type Option func(*Evaluator)

// WithClock overrides the time source, mainly for tests.
func WithClock(clock func() time.Time) Option {
	return func(e *Evaluator) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithRules replaces the default rule set.
func WithRules(rules []Rule) Option {
	return func(e *Evaluator) {
		if len(rules) > 0 {
			e.rules = rules
		}
	}
}

func New(repo repository.AchievementRepository, logger *zap.Logger, opts ...Option) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Evaluator{
		rules:    DefaultRules(),
		repo:     repo,
		clock:    time.Now,
		logger:   logger,
		unlocked: make(map[string]map[string]time.Time),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate scans every rule against the snapshot and returns the badges
// newly unlocked by this pass. Unlock writes are serialized under the
// evaluator mutex so concurrent evaluations cannot lose an unlock.
func (e *Evaluator) Evaluate(ctx context.Context, userID string, stats domain.Stats) ([]domain.Achievement, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	records := e.loadLocked(ctx, userID)
	now := e.clock()

	var newlyUnlocked []domain.Achievement
	for _, rule := range e.rules {
		progress := clamp(rule.Progress(stats))
		if _, done := records[rule.ID]; done {
			continue
		}
		if progress < 1 {
			continue
		}

		records[rule.ID] = now
		unlocked := domain.Achievement{
			ID:          rule.ID,
			Title:       rule.Title,
			Description: rule.Description,
			Progress:    1,
			UnlockedAt:  &now,
		}
		if e.repo != nil {
			if err := e.repo.Unlock(ctx, repository.UnlockRecord{
				UserID:        userID,
				AchievementID: rule.ID,
				UnlockedAt:    now,
			}); err != nil {
				e.logger.Warn("failed to persist achievement unlock",
					zap.String("user_id", userID),
					zap.String("achievement_id", rule.ID),
					zap.Error(err))
			}
		}
		newlyUnlocked = append(newlyUnlocked, unlocked)
	}
	return newlyUnlocked, nil
}

// List returns the full badge sheet for a user: unlocked badges keep their
// original timestamp and report progress 1 regardless of current stats.
func (e *Evaluator) List(ctx context.Context, userID string, stats domain.Stats) []domain.Achievement {
	e.mu.Lock()
	defer e.mu.Unlock()

	records := e.loadLocked(ctx, userID)

	out := make([]domain.Achievement, 0, len(e.rules))
	for _, rule := range e.rules {
		a := domain.Achievement{
			ID:          rule.ID,
			Title:       rule.Title,
			Description: rule.Description,
			Progress:    clamp(rule.Progress(stats)),
		}
		if at, ok := records[rule.ID]; ok {
			unlockedAt := at
			a.UnlockedAt = &unlockedAt
			a.Progress = 1
		}
		out = append(out, a)
	}
	return out
}

func (e *Evaluator) loadLocked(ctx context.Context, userID string) map[string]time.Time {
	if records, ok := e.unlocked[userID]; ok {
		return records
	}
	records := make(map[string]time.Time)
	if e.repo != nil {
		stored, err := e.repo.ListUnlocked(ctx, userID)
		if err != nil {
			e.logger.Warn("failed to load unlock records",
				zap.String("user_id", userID), zap.Error(err))
		}
		for _, rec := range stored {
			records[rec.AchievementID] = rec.UnlockedAt
		}
	}
	e.unlocked[userID] = records
	return records
}
