package achievement

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tasksnap/backend/domain"
	"github.com/tasksnap/backend/repository"
)

type memUnlockRepo struct {
	records map[string]map[string]time.Time
}

func newMemUnlockRepo() *memUnlockRepo {
	return &memUnlockRepo{records: make(map[string]map[string]time.Time)}
}

func (r *memUnlockRepo) ListUnlocked(_ context.Context, userID string) ([]repository.UnlockRecord, error) {
	var out []repository.UnlockRecord
	for id, at := range r.records[userID] {
		out = append(out, repository.UnlockRecord{UserID: userID, AchievementID: id, UnlockedAt: at})
	}
	return out, nil
}

func (r *memUnlockRepo) Unlock(_ context.Context, rec repository.UnlockRecord) error {
	if r.records[rec.UserID] == nil {
		r.records[rec.UserID] = make(map[string]time.Time)
	}
	if _, ok := r.records[rec.UserID][rec.AchievementID]; !ok {
		r.records[rec.UserID][rec.AchievementID] = rec.UnlockedAt
	}
	return nil
}

func findBadge(t *testing.T, sheet []domain.Achievement, id string) domain.Achievement {
	t.Helper()
	for _, a := range sheet {
		if a.ID == id {
			return a
		}
	}
	t.Fatalf("badge %q missing from sheet", id)
	return domain.Achievement{}
}

func TestProgressApproachesUnlock(t *testing.T) {
	e := New(newMemUnlockRepo(), nil)
	ctx := context.Background()

	unlocked, err := e.Evaluate(ctx, "u1", domain.Stats{CompletedTotal: 9})
	require.NoError(t, err)
	for _, a := range unlocked {
		require.NotEqual(t, "ten_down", a.ID, "9 completions must not unlock the 10-task badge")
	}

	sheet := e.List(ctx, "u1", domain.Stats{CompletedTotal: 9})
	tenDown := findBadge(t, sheet, "ten_down")
	require.InDelta(t, 0.9, tenDown.Progress, 1e-9)
	require.Nil(t, tenDown.UnlockedAt)

	unlocked, err = e.Evaluate(ctx, "u1", domain.Stats{CompletedTotal: 10})
	require.NoError(t, err)
	ids := make([]string, 0, len(unlocked))
	for _, a := range unlocked {
		ids = append(ids, a.ID)
	}
	require.Contains(t, ids, "ten_down")
}

func TestUnlockIsMonotonic(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	e := New(newMemUnlockRepo(), nil, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	unlocked, err := e.Evaluate(ctx, "u1", domain.Stats{LongestStreak: 3})
	require.NoError(t, err)
	require.Len(t, unlocked, 1)
	require.Equal(t, "on_a_roll", unlocked[0].ID)

	// The streak later collapses; the badge and its timestamp survive.
	later := e.List(ctx, "u1", domain.Stats{LongestStreak: 3, CurrentStreak: 0})
	onARoll := findBadge(t, later, "on_a_roll")
	require.NotNil(t, onARoll.UnlockedAt)
	require.True(t, onARoll.UnlockedAt.Equal(now))
	require.Equal(t, float64(1), onARoll.Progress)

	// Re-evaluating at the threshold again does not re-unlock.
	again, err := e.Evaluate(ctx, "u1", domain.Stats{LongestStreak: 3})
	require.NoError(t, err)
	require.Empty(t, again)
}

func TestEvaluateReturnsOnlyNewUnlocks(t *testing.T) {
	e := New(newMemUnlockRepo(), nil)
	ctx := context.Background()

	first, err := e.Evaluate(ctx, "u1", domain.Stats{CompletedTotal: 1})
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.Equal(t, "first_snap", first[0].ID)

	second, err := e.Evaluate(ctx, "u1", domain.Stats{CompletedTotal: 10})
	require.NoError(t, err)
	require.Len(t, second, 1)
	require.Equal(t, "ten_down", second[0].ID)
}

func TestUnlocksSurviveRestart(t *testing.T) {
	repo := newMemUnlockRepo()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	e := New(repo, nil, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	_, err := e.Evaluate(ctx, "u1", domain.Stats{CompletedTotal: 1})
	require.NoError(t, err)

	reloaded := New(repo, nil)
	sheet := reloaded.List(ctx, "u1", domain.Stats{})
	firstSnap := findBadge(t, sheet, "first_snap")
	require.NotNil(t, firstSnap.UnlockedAt)
	require.True(t, firstSnap.UnlockedAt.Equal(now), "original unlock timestamp is kept")
}

func TestCategoryAndFocusRules(t *testing.T) {
	e := New(newMemUnlockRepo(), nil)
	ctx := context.Background()

	stats := domain.Stats{
		CompletedTotal: 12,
		CompletedByCategory: map[domain.Category]int{
			domain.CategoryClean: 10,
			domain.CategoryFix:   2,
		},
		UrgentCompleted: 5,
		FocusMinutes:    75,
	}

	unlocked, err := e.Evaluate(ctx, "u1", stats)
	require.NoError(t, err)

	ids := make(map[string]bool)
	for _, a := range unlocked {
		ids[a.ID] = true
	}
	require.True(t, ids["deep_clean"])
	require.True(t, ids["firefighter"])
	require.True(t, ids["deep_focus"])
	require.False(t, ids["handy"], "2 of 10 fix-it tasks is partial progress only")
	require.False(t, ids["well_rounded"], "two categories covered out of six")
}

func TestWellRoundedNeedsEveryCategory(t *testing.T) {
	e := New(newMemUnlockRepo(), nil)
	ctx := context.Background()

	byCategory := make(map[domain.Category]int)
	for _, c := range domain.Categories() {
		byCategory[c] = 1
	}
	stats := domain.Stats{
		CompletedTotal:      len(byCategory),
		CompletedByCategory: byCategory,
	}

	unlocked, err := e.Evaluate(ctx, "u1", stats)
	require.NoError(t, err)
	found := false
	for _, a := range unlocked {
		if a.ID == "well_rounded" {
			found = true
		}
	}
	require.True(t, found)
}
