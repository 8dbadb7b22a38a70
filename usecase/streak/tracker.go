package streak

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tasksnap/backend/domain"
	"github.com/tasksnap/backend/repository"
)

// Tracker derives per-user completion streaks from the completion events the
// board store emits. It owns the derived state; it never writes back into
// tasks.
//
// The computation cannot fail: snapshot persistence is a cache, so storage
// errors are logged and the in-memory state stays authoritative for the
// session.
type Tracker struct {
	repo   repository.StreakRepository
	loc    *time.Location
	clock  func() time.Time
	logger *zap.Logger

	mu     sync.Mutex
	states map[string]*domain.StreakState
}

type Option func(*Tracker)

// WithLocation sets the calendar time zone used for day boundaries.
func WithLocation(loc *time.Location) Option {
	return func(t *Tracker) {
		if loc != nil {
			t.loc = loc
		}
	}
}

// WithClock overrides the time source, mainly for tests.
func WithClock(clock func() time.Time) Option {
	return func(t *Tracker) {
		if clock != nil {
			t.clock = clock
		}
	}
}

func New(repo repository.StreakRepository, logger *zap.Logger, opts ...Option) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Tracker{
		repo:   repo,
		loc:    time.Local,
		clock:  time.Now,
		logger: logger,
		states: make(map[string]*domain.StreakState),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// RecordCompletion folds one completion timestamp into the user's streak.
// Same-day repeats are no-ops; a completion on the day after the last one
// extends the streak; a gap restarts it at 1.
func (t *Tracker) RecordCompletion(ctx context.Context, userID string, at time.Time) (domain.StreakState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	state := t.loadLocked(ctx, userID)
	day := t.dayOf(at)

	switch {
	case state.LastCompletionDay.IsZero():
		state.Current = 1
		state.LastCompletionDay = day
	case day.Equal(state.LastCompletionDay):
		// Same calendar day, streak unchanged.
	case day.Equal(state.LastCompletionDay.AddDate(0, 0, 1)):
		state.Current++
		state.LastCompletionDay = day
	case day.After(state.LastCompletionDay):
		state.Current = 1
		state.LastCompletionDay = day
	default:
		// Out-of-order completion from a sync replay; an older day never
		// rewinds the streak.
	}

	if state.Current > state.Longest {
		state.Longest = state.Current
	}
	state.UpdatedAt = t.clock()
	t.persistLocked(ctx, state)
	return *state, nil
}

// Refresh is the app-foreground check: when the most recent completion day
// is more than one calendar day ago, the streak expires to zero even though
// no new completion arrived. Longest is untouched.
func (t *Tracker) Refresh(ctx context.Context, userID string) domain.StreakState {
	t.mu.Lock()
	defer t.mu.Unlock()

	state := t.loadLocked(ctx, userID)
	today := t.dayOf(t.clock())

	if state.Current > 0 && !state.Alive(today) {
		state.Current = 0
		state.UpdatedAt = t.clock()
		t.persistLocked(ctx, state)
	}
	return *state
}

// Current returns the streak after applying the expiry rule, without
// recording anything.
func (t *Tracker) Current(ctx context.Context, userID string) domain.StreakState {
	return t.Refresh(ctx, userID)
}

func (t *Tracker) loadLocked(ctx context.Context, userID string) *domain.StreakState {
	if state, ok := t.states[userID]; ok {
		return state
	}
	state := &domain.StreakState{UserID: userID}
	if t.repo != nil {
		stored, err := t.repo.Get(ctx, userID)
		switch {
		case err == nil && stored != nil:
			state = stored
		case err != nil && !domain.IsDomainError(err, domain.ErrCodeNotFound):
			t.logger.Warn("streak snapshot load failed",
				zap.String("user_id", userID), zap.Error(err))
		}
	}
	t.states[userID] = state
	return state
}

func (t *Tracker) persistLocked(ctx context.Context, state *domain.StreakState) {
	if t.repo == nil {
		return
	}
	if err := t.repo.Save(ctx, state); err != nil {
		t.logger.Warn("streak snapshot save failed",
			zap.String("user_id", state.UserID), zap.Error(err))
	}
}

// dayOf truncates a timestamp to local midnight in the tracker's zone.
func (t *Tracker) dayOf(at time.Time) time.Time {
	local := at.In(t.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, t.loc)
}
