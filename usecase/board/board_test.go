package board

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/tasksnap/backend/domain"
	"github.com/tasksnap/backend/repository"
	"github.com/tasksnap/backend/usecase"
	"github.com/tasksnap/backend/usecase/tier"
)

type memRepo struct {
	mu      sync.Mutex
	tasks   map[string]domain.Task
	failing bool
}

func newMemRepo() *memRepo {
	return &memRepo{tasks: make(map[string]domain.Task)}
}

func (r *memRepo) GetByID(_ context.Context, id string) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return task.Clone(), nil
}

func (r *memRepo) List(_ context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing {
		return nil, errors.New("db unavailable")
	}
	var out []domain.Task
	for _, task := range r.tasks {
		if filter.UserID != "" && task.UserID != filter.UserID {
			continue
		}
		out = append(out, *task.Clone())
	}
	return out, nil
}

func (r *memRepo) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing {
		return nil, errors.New("db unavailable")
	}
	r.tasks[task.ID] = *task.Clone()
	return task.Clone(), nil
}

func (r *memRepo) Update(_ context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing {
		return errors.New("db unavailable")
	}
	if _, ok := r.tasks[task.ID]; !ok {
		return domain.ErrTaskNotFound
	}
	r.tasks[task.ID] = *task.Clone()
	return nil
}

func (r *memRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing {
		return errors.New("db unavailable")
	}
	if _, ok := r.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

// streakStub counts completions and reports them as the current streak.
type streakStub struct {
	log   *[]string
	state domain.StreakState
}

func (s *streakStub) RecordCompletion(_ context.Context, userID string, _ time.Time) (domain.StreakState, error) {
	if s.log != nil {
		*s.log = append(*s.log, "streak")
	}
	s.state.UserID = userID
	s.state.Current++
	if s.state.Current > s.state.Longest {
		s.state.Longest = s.state.Current
	}
	return s.state, nil
}

type achStub struct {
	log     *[]string
	seen    []domain.Stats
	unlocks []domain.Achievement
}

func (a *achStub) Evaluate(_ context.Context, _ string, stats domain.Stats) ([]domain.Achievement, error) {
	if a.log != nil {
		*a.log = append(*a.log, "achievements")
	}
	a.seen = append(a.seen, stats)
	return a.unlocks, nil
}

type recordHooks struct {
	log *[]string
}

func (h recordHooks) TaskCompleted(domain.Task)         { *h.log = append(*h.log, "hook:completed") }
func (h recordHooks) StreakAdvanced(domain.StreakState) { *h.log = append(*h.log, "hook:streak") }
func (h recordHooks) AchievementUnlocked(domain.Achievement) {
	*h.log = append(*h.log, "hook:unlocked")
}

type outboxStub struct {
	ops []string
}

func (o *outboxStub) QueueTask(_ context.Context, operation string, task *domain.Task) error {
	o.ops = append(o.ops, operation+":"+task.ID)
	return nil
}

func newTestStore(t *testing.T, limit domain.TierLimit, opts ...Option) (*Store, *memRepo, *streakStub, *achStub) {
	t.Helper()
	repo := newMemRepo()
	streaks := &streakStub{}
	achievements := &achStub{}
	store := New(repo, tier.Fixed{Value: limit}, streaks, achievements, nil, opts...)
	return store, repo, streaks, achievements
}

func mustCreate(t *testing.T, store *Store, userID, title string) *domain.Task {
	t.Helper()
	task, err := store.Create(context.Background(), userID, CreateInput{
		Title:    title,
		Category: domain.CategoryOther,
	})
	if err != nil {
		t.Fatalf("create %q: %v", title, err)
	}
	return task
}

func TestCreateGatedByTierLimit(t *testing.T) {
	store, repo, _, _ := newTestStore(t, domain.LimitOf(3))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		mustCreate(t, store, "u1", fmt.Sprintf("task %d", i))
	}

	_, err := store.Create(ctx, "u1", CreateInput{Title: "one too many", Category: domain.CategoryOther})
	if !domain.IsDomainError(err, domain.ErrCodeCapacity) {
		t.Fatalf("expected capacity error, got %v", err)
	}
	if got := store.ActiveCount("u1"); got != 3 {
		t.Fatalf("active count = %d, want 3", got)
	}
	if len(repo.tasks) != 3 {
		t.Fatalf("repo has %d tasks, want 3 (rejected create must not persist)", len(repo.tasks))
	}

	// Another user's board is not affected by u1's limit.
	mustCreate(t, store, "u2", "other board")
}

func TestCreateUnlimitedTier(t *testing.T) {
	store, _, _, _ := newTestStore(t, domain.NoLimit())
	for i := 0; i < 40; i++ {
		mustCreate(t, store, "u1", fmt.Sprintf("task %d", i))
	}
	if got := store.ActiveCount("u1"); got != 40 {
		t.Fatalf("active count = %d, want 40", got)
	}
}

func TestCreateZeroLimitAlwaysRejects(t *testing.T) {
	store, _, _, _ := newTestStore(t, domain.LimitOf(0))
	_, err := store.Create(context.Background(), "u1", CreateInput{Title: "t", Category: domain.CategoryOther})
	if !domain.IsDomainError(err, domain.ErrCodeCapacity) {
		t.Fatalf("expected capacity error for zero limit, got %v", err)
	}
}

func TestCompletionFreesCapacity(t *testing.T) {
	store, _, _, _ := newTestStore(t, domain.LimitOf(2))
	ctx := context.Background()

	a := mustCreate(t, store, "u1", "a")
	mustCreate(t, store, "u1", "b")

	if _, err := store.Create(ctx, "u1", CreateInput{Title: "c", Category: domain.CategoryOther}); err == nil {
		t.Fatal("expected capacity error at the limit")
	}

	done, err := store.SetStatus(ctx, a.ID, domain.StatusDone)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.CompletedAt == nil {
		t.Fatal("completed task must carry a completion timestamp")
	}

	if _, err := store.Create(ctx, "u1", CreateInput{Title: "c", Category: domain.CategoryOther}); err != nil {
		t.Fatalf("create after completion should pass the gate: %v", err)
	}
}

func TestSetStatusSameColumnIsNoop(t *testing.T) {
	store, _, _, _ := newTestStore(t, domain.LimitOf(5))
	ctx := context.Background()

	var events []usecase.EventType
	store.Subscribe(func(e usecase.Event) { events = append(events, e.Type) })

	task := mustCreate(t, store, "u1", "a")
	created := len(events)

	got, err := store.SetStatus(ctx, task.ID, domain.StatusTodo)
	if err != nil {
		t.Fatalf("same-status move: %v", err)
	}
	if !got.UpdatedAt.Equal(task.UpdatedAt) {
		t.Fatal("no-op move must not touch UpdatedAt")
	}
	if len(events) != created {
		t.Fatalf("no-op move published %d extra events", len(events)-created)
	}
}

func TestActiveColumnsMoveFreely(t *testing.T) {
	store, _, _, _ := newTestStore(t, domain.LimitOf(1))
	ctx := context.Background()

	task := mustCreate(t, store, "u1", "only one")

	// At the cap, shuffling between the active columns is still allowed:
	// the active count does not change.
	if _, err := store.SetStatus(ctx, task.ID, domain.StatusDoing); err != nil {
		t.Fatalf("todo→doing at the cap: %v", err)
	}
	if _, err := store.SetStatus(ctx, task.ID, domain.StatusTodo); err != nil {
		t.Fatalf("doing→todo at the cap: %v", err)
	}
}

func TestReopenIsGated(t *testing.T) {
	store, _, _, _ := newTestStore(t, domain.LimitOf(1))
	ctx := context.Background()

	first := mustCreate(t, store, "u1", "first")
	if _, err := store.SetStatus(ctx, first.ID, domain.StatusDone); err != nil {
		t.Fatalf("complete first: %v", err)
	}
	second := mustCreate(t, store, "u1", "second")

	_, err := store.SetStatus(ctx, first.ID, domain.StatusTodo)
	if !domain.IsDomainError(err, domain.ErrCodeCapacity) {
		t.Fatalf("reopen at the cap should hit the gate, got %v", err)
	}

	if _, err := store.SetStatus(ctx, second.ID, domain.StatusDone); err != nil {
		t.Fatalf("complete second: %v", err)
	}
	reopened, err := store.SetStatus(ctx, first.ID, domain.StatusTodo)
	if err != nil {
		t.Fatalf("reopen with room: %v", err)
	}
	if reopened.CompletedAt != nil {
		t.Fatal("reopened task must not keep its completion timestamp")
	}
}

func TestStorageFailureLeavesStateUntouched(t *testing.T) {
	store, repo, _, _ := newTestStore(t, domain.LimitOf(5))
	ctx := context.Background()

	task := mustCreate(t, store, "u1", "a")

	repo.failing = true
	_, err := store.SetStatus(ctx, task.ID, domain.StatusDone)
	if !domain.IsDomainError(err, domain.ErrCodeStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}

	kept, err := store.Get(task.ID)
	if err != nil {
		t.Fatalf("get after failed move: %v", err)
	}
	if kept.Status != domain.StatusTodo || kept.CompletedAt != nil {
		t.Fatalf("failed move leaked into memory: status=%s completedAt=%v", kept.Status, kept.CompletedAt)
	}
	if store.LastError() == nil {
		t.Fatal("last error should surface the storage failure")
	}

	repo.failing = false
	if _, err := store.SetStatus(ctx, task.ID, domain.StatusDone); err != nil {
		t.Fatalf("retry after recovery: %v", err)
	}
	if store.LastError() != nil {
		t.Fatal("successful mutation should clear the last error")
	}
}

func TestCompletionCascadeOrder(t *testing.T) {
	var log []string
	repo := newMemRepo()
	streaks := &streakStub{log: &log}
	achievements := &achStub{
		log:     &log,
		unlocks: []domain.Achievement{{ID: "first_snap", Title: "First Snap"}},
	}
	store := New(repo, tier.Fixed{Value: domain.LimitOf(5)}, streaks, achievements, nil,
		WithHooks(recordHooks{log: &log}))
	store.Subscribe(func(e usecase.Event) { log = append(log, "event:"+string(e.Type)) })

	ctx := context.Background()
	task := mustCreate(t, store, "u1", "a")
	log = log[:0]

	if _, err := store.SetStatus(ctx, task.ID, domain.StatusDone); err != nil {
		t.Fatalf("complete: %v", err)
	}

	want := []string{
		"streak",
		"achievements",
		"hook:completed",
		"hook:streak",
		"hook:unlocked",
		"event:task.completed",
		"event:streak.changed",
		"event:achievement.unlocked",
	}
	if len(log) != len(want) {
		t.Fatalf("cascade log = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("cascade step %d = %q, want %q (full log %v)", i, log[i], want[i], log)
		}
	}
}

func TestCascadeOverlaysFreshStreakIntoStats(t *testing.T) {
	store, _, streaks, achievements := newTestStore(t, domain.LimitOf(10))
	ctx := context.Background()
	streaks.state = domain.StreakState{Current: 4, Longest: 9}

	task := mustCreate(t, store, "u1", "a")
	if _, err := store.SetStatus(ctx, task.ID, domain.StatusDone); err != nil {
		t.Fatalf("complete: %v", err)
	}

	if len(achievements.seen) != 1 {
		t.Fatalf("evaluator called %d times, want 1", len(achievements.seen))
	}
	stats := achievements.seen[0]
	if stats.CurrentStreak != 5 || stats.LongestStreak != 9 {
		t.Fatalf("stats streak = %d/%d, want 5/9 (fresh recompute, not a stale read)",
			stats.CurrentStreak, stats.LongestStreak)
	}
	if stats.CompletedTotal != 1 {
		t.Fatalf("completed total = %d, want 1", stats.CompletedTotal)
	}
}

func TestMutationsQueueSyncOperations(t *testing.T) {
	outbox := &outboxStub{}
	repo := newMemRepo()
	store := New(repo, tier.Fixed{Value: domain.LimitOf(5)}, &streakStub{}, &achStub{}, nil,
		WithOutbox(outbox))
	ctx := context.Background()

	task := mustCreate(t, store, "u1", "a")
	if _, err := store.ToggleUrgent(ctx, task.ID); err != nil {
		t.Fatalf("toggle urgent: %v", err)
	}
	if err := store.Delete(ctx, task.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	want := []string{
		usecase.OperationCreate + ":" + task.ID,
		usecase.OperationUpdate + ":" + task.ID,
		usecase.OperationDelete + ":" + task.ID,
	}
	if len(outbox.ops) != len(want) {
		t.Fatalf("queued ops = %v, want %v", outbox.ops, want)
	}
	for i := range want {
		if outbox.ops[i] != want[i] {
			t.Fatalf("queued op %d = %q, want %q", i, outbox.ops[i], want[i])
		}
	}
}

func TestApplyRemoteLastWriterWins(t *testing.T) {
	store, _, _, _ := newTestStore(t, domain.LimitOf(5))
	ctx := context.Background()

	local := mustCreate(t, store, "u1", "local title")

	stale := *local.Clone()
	stale.Title = "stale remote edit"
	stale.UpdatedAt = local.UpdatedAt.Add(-time.Minute)
	if applied := store.ApplyRemote(ctx, []domain.Task{stale}); applied != 0 {
		t.Fatalf("stale remote change applied %d, want 0", applied)
	}
	kept, _ := store.Get(local.ID)
	if kept.Title != "local title" {
		t.Fatalf("stale remote overwrote local edit: %q", kept.Title)
	}

	fresh := *local.Clone()
	fresh.Title = "newer remote edit"
	fresh.UpdatedAt = local.UpdatedAt.Add(time.Minute)
	if applied := store.ApplyRemote(ctx, []domain.Task{fresh}); applied != 1 {
		t.Fatalf("fresh remote change applied %d, want 1", applied)
	}
	kept, _ = store.Get(local.ID)
	if kept.Title != "newer remote edit" {
		t.Fatalf("fresh remote change not applied: %q", kept.Title)
	}
}

func TestApplyRemoteBypassesCapacityGate(t *testing.T) {
	store, _, _, _ := newTestStore(t, domain.LimitOf(1))
	ctx := context.Background()

	mustCreate(t, store, "u1", "fills the cap")

	now := time.Now()
	incoming := domain.Task{
		ID:        "remote-1",
		UserID:    "u1",
		Title:     "created on another device",
		Category:  domain.CategoryOther,
		Status:    domain.StatusTodo,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if applied := store.ApplyRemote(ctx, []domain.Task{incoming}); applied != 1 {
		t.Fatalf("remote change applied %d, want 1 (the gate covers local actions only)", applied)
	}
	if got := store.ActiveCount("u1"); got != 2 {
		t.Fatalf("active count = %d, want 2", got)
	}
}

func TestApplyRemoteNormalizesCompletion(t *testing.T) {
	store, _, _, _ := newTestStore(t, domain.LimitOf(5))
	ctx := context.Background()

	now := time.Now()
	incoming := domain.Task{
		ID:        "remote-done",
		UserID:    "u1",
		Title:     "done elsewhere",
		Category:  domain.CategoryClean,
		Status:    domain.StatusDone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	store.ApplyRemote(ctx, []domain.Task{incoming})

	got, err := store.Get("remote-done")
	if err != nil {
		t.Fatalf("get remote task: %v", err)
	}
	if got.CompletedAt == nil {
		t.Fatal("done task without a completion timestamp must be repaired on merge")
	}
}

func TestRemoveRemote(t *testing.T) {
	store, _, _, _ := newTestStore(t, domain.LimitOf(5))
	ctx := context.Background()

	task := mustCreate(t, store, "u1", "a")
	if !store.RemoveRemote(ctx, task.ID) {
		t.Fatal("remote deletion of a known task should succeed")
	}
	if _, err := store.Get(task.ID); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Fatalf("task still present after remote deletion: %v", err)
	}
	if store.RemoveRemote(ctx, "missing") {
		t.Fatal("remote deletion of an unknown task should report false")
	}
}

func TestDeleteToleratesMissingRow(t *testing.T) {
	store, repo, _, _ := newTestStore(t, domain.LimitOf(5))
	ctx := context.Background()

	task := mustCreate(t, store, "u1", "a")
	repo.mu.Lock()
	delete(repo.tasks, task.ID)
	repo.mu.Unlock()

	if err := store.Delete(ctx, task.ID); err != nil {
		t.Fatalf("deleting a task storage already forgot: %v", err)
	}
	if _, err := store.Get(task.ID); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Fatal("local copy should be dropped too")
	}
}

func TestLoadRepairsCompletionMismatch(t *testing.T) {
	repo := newMemRepo()
	now := time.Now()
	stray := now.Add(-time.Hour)
	repo.tasks["broken-done"] = domain.Task{
		ID: "broken-done", UserID: "u1", Title: "done without timestamp",
		Category: domain.CategoryOther, Status: domain.StatusDone,
		CreatedAt: now, UpdatedAt: now,
	}
	repo.tasks["broken-todo"] = domain.Task{
		ID: "broken-todo", UserID: "u1", Title: "todo with timestamp",
		Category: domain.CategoryOther, Status: domain.StatusTodo,
		CreatedAt: now, UpdatedAt: now, CompletedAt: &stray,
	}

	store := New(repo, tier.Fixed{Value: domain.LimitOf(5)}, &streakStub{}, &achStub{}, nil)
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	done, _ := store.Get("broken-done")
	if done.CompletedAt == nil {
		t.Fatal("done row should gain a completion timestamp on load")
	}
	todo, _ := store.Get("broken-todo")
	if todo.CompletedAt != nil {
		t.Fatal("active row should lose its stray completion timestamp on load")
	}
}

func TestColumnsOrdering(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := now
	store, _, _, _ := newTestStore(t, domain.NoLimit(), WithClock(func() time.Time { return clock }))
	ctx := context.Background()

	old := mustCreate(t, store, "u1", "old calm")
	clock = clock.Add(time.Minute)
	urgent, err := store.Create(ctx, "u1", CreateInput{Title: "new urgent", Category: domain.CategoryFix, Urgent: true})
	if err != nil {
		t.Fatalf("create urgent: %v", err)
	}
	clock = clock.Add(time.Minute)
	firstDone := mustCreate(t, store, "u1", "first done")
	clock = clock.Add(time.Minute)
	lastDone := mustCreate(t, store, "u1", "last done")

	if _, err := store.SetStatus(ctx, firstDone.ID, domain.StatusDone); err != nil {
		t.Fatalf("complete: %v", err)
	}
	clock = clock.Add(time.Minute)
	if _, err := store.SetStatus(ctx, lastDone.ID, domain.StatusDone); err != nil {
		t.Fatalf("complete: %v", err)
	}

	view := store.Columns("u1")
	if len(view.Todo) != 2 || view.Todo[0].ID != urgent.ID || view.Todo[1].ID != old.ID {
		t.Fatalf("todo order wrong: urgent tasks come first, then oldest first")
	}
	if len(view.Done) != 2 || view.Done[0].ID != lastDone.ID || view.Done[1].ID != firstDone.ID {
		t.Fatalf("done order wrong: most recently completed first")
	}
}

func TestCreateValidation(t *testing.T) {
	store, _, _, _ := newTestStore(t, domain.LimitOf(5))
	ctx := context.Background()

	cases := []struct {
		name string
		in   CreateInput
	}{
		{"empty title", CreateInput{Title: "   ", Category: domain.CategoryOther}},
		{"unknown category", CreateInput{Title: "ok", Category: "laundry"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := store.Create(ctx, "u1", tc.in); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
				t.Fatalf("expected invalid error, got %v", err)
			}
		})
	}
	if got := store.ActiveCount("u1"); got != 0 {
		t.Fatalf("rejected creates must not persist, active count = %d", got)
	}
}
