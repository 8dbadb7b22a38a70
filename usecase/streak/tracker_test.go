package streak

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tasksnap/backend/domain"
)

type memStreakRepo struct {
	states map[string]domain.StreakState
	saves  int
}

func newMemStreakRepo() *memStreakRepo {
	return &memStreakRepo{states: make(map[string]domain.StreakState)}
}

func (r *memStreakRepo) Get(_ context.Context, userID string) (*domain.StreakState, error) {
	state, ok := r.states[userID]
	if !ok {
		return nil, domain.NewError(domain.ErrCodeNotFound, "streak snapshot not found")
	}
	copied := state
	return &copied, nil
}

func (r *memStreakRepo) Save(_ context.Context, state *domain.StreakState) error {
	r.saves++
	r.states[state.UserID] = *state
	return nil
}

func day(y int, m time.Month, d, hour, min int) time.Time {
	return time.Date(y, m, d, hour, min, 0, 0, time.UTC)
}

func newTestTracker(now *time.Time) (*Tracker, *memStreakRepo) {
	repo := newMemStreakRepo()
	tracker := New(repo, nil,
		WithLocation(time.UTC),
		WithClock(func() time.Time { return *now }))
	return tracker, repo
}

func TestFirstCompletionStartsStreak(t *testing.T) {
	now := day(2026, 3, 2, 10, 0)
	tracker, _ := newTestTracker(&now)

	state, err := tracker.RecordCompletion(context.Background(), "u1", now)
	require.NoError(t, err)
	require.Equal(t, 1, state.Current)
	require.Equal(t, 1, state.Longest)
}

func TestSameDayCompletionsDoNotStack(t *testing.T) {
	now := day(2026, 3, 2, 8, 0)
	tracker, _ := newTestTracker(&now)
	ctx := context.Background()

	tracker.RecordCompletion(ctx, "u1", day(2026, 3, 2, 8, 0))
	tracker.RecordCompletion(ctx, "u1", day(2026, 3, 2, 12, 0))
	state, err := tracker.RecordCompletion(ctx, "u1", day(2026, 3, 2, 23, 59))
	require.NoError(t, err)
	require.Equal(t, 1, state.Current, "three completions on one calendar day count once")
}

func TestConsecutiveDaysExtendStreak(t *testing.T) {
	now := day(2026, 3, 1, 9, 0)
	tracker, _ := newTestTracker(&now)
	ctx := context.Background()

	for d := 1; d <= 5; d++ {
		now = day(2026, 3, d, 9, 0)
		state, err := tracker.RecordCompletion(ctx, "u1", now)
		require.NoError(t, err)
		require.Equal(t, d, state.Current)
	}
}

func TestGapResetsStreakButNotLongest(t *testing.T) {
	now := day(2026, 3, 1, 9, 0)
	tracker, _ := newTestTracker(&now)
	ctx := context.Background()

	for d := 1; d <= 4; d++ {
		now = day(2026, 3, d, 9, 0)
		tracker.RecordCompletion(ctx, "u1", now)
	}

	// Nothing on the 5th; completing on the 6th starts over.
	now = day(2026, 3, 6, 9, 0)
	state, err := tracker.RecordCompletion(ctx, "u1", now)
	require.NoError(t, err)
	require.Equal(t, 1, state.Current)
	require.Equal(t, 4, state.Longest)
}

func TestLateNightThenEarlyMorningCounts(t *testing.T) {
	now := day(2026, 3, 2, 23, 0)
	tracker, _ := newTestTracker(&now)
	ctx := context.Background()

	tracker.RecordCompletion(ctx, "u1", day(2026, 3, 2, 23, 0))
	now = day(2026, 3, 3, 0, 0).Add(10 * time.Minute)
	state, err := tracker.RecordCompletion(ctx, "u1", now)
	require.NoError(t, err)
	require.Equal(t, 2, state.Current, "23:00 then 00:10 next day are consecutive calendar days")
}

func TestOutOfOrderReplayNeverRewinds(t *testing.T) {
	now := day(2026, 3, 5, 9, 0)
	tracker, _ := newTestTracker(&now)
	ctx := context.Background()

	tracker.RecordCompletion(ctx, "u1", day(2026, 3, 4, 9, 0))
	tracker.RecordCompletion(ctx, "u1", day(2026, 3, 5, 9, 0))

	// A replayed completion from two days back arrives late over sync.
	state, err := tracker.RecordCompletion(ctx, "u1", day(2026, 3, 3, 9, 0))
	require.NoError(t, err)
	require.Equal(t, 2, state.Current)
}

func TestRefreshExpiresStaleStreak(t *testing.T) {
	now := day(2026, 3, 2, 9, 0)
	tracker, _ := newTestTracker(&now)
	ctx := context.Background()

	tracker.RecordCompletion(ctx, "u1", day(2026, 3, 1, 9, 0))
	tracker.RecordCompletion(ctx, "u1", day(2026, 3, 2, 9, 0))

	// Next day: still alive, yesterday's completion keeps it.
	now = day(2026, 3, 3, 8, 0)
	state := tracker.Refresh(ctx, "u1")
	require.Equal(t, 2, state.Current)

	// Two days later with nothing in between: expired.
	now = day(2026, 3, 4, 8, 0)
	state = tracker.Refresh(ctx, "u1")
	require.Equal(t, 0, state.Current)
	require.Equal(t, 2, state.Longest, "expiry never touches the longest streak")
}

func TestRefreshOnZeroStreakIsStable(t *testing.T) {
	now := day(2026, 3, 2, 9, 0)
	tracker, repo := newTestTracker(&now)

	state := tracker.Refresh(context.Background(), "unknown")
	require.Equal(t, 0, state.Current)
	require.Zero(t, repo.saves, "nothing to persist for an empty streak")
}

func TestStreakSurvivesRestartViaSnapshot(t *testing.T) {
	now := day(2026, 3, 2, 9, 0)
	tracker, repo := newTestTracker(&now)
	ctx := context.Background()

	tracker.RecordCompletion(ctx, "u1", day(2026, 3, 1, 9, 0))
	tracker.RecordCompletion(ctx, "u1", day(2026, 3, 2, 9, 0))

	// A fresh tracker over the same repository picks up where we left off.
	reloaded := New(repo, nil,
		WithLocation(time.UTC),
		WithClock(func() time.Time { return now }))
	now = day(2026, 3, 3, 9, 0)
	state, err := reloaded.RecordCompletion(ctx, "u1", now)
	require.NoError(t, err)
	require.Equal(t, 3, state.Current)
}
