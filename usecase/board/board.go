package board

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tasksnap/backend/domain"
	"github.com/tasksnap/backend/repository"
	"github.com/tasksnap/backend/usecase"
)

// Store is the single authority over the task collection and its kanban
// state. All mutations run under one mutex (single writer); reads hand out
// clones so callers never alias store-owned state.
//
// A committed transition into done triggers its side effects synchronously
// and in a fixed order: streak recompute first, achievement evaluation
// second, then hooks and subscribers. Achievement predicates may read the
// freshly updated streak, so the order matters.
type Store struct {
	repo         repository.TaskRepository
	tiers        usecase.TierSource
	streaks      usecase.StreakRecorder
	achievements usecase.AchievementSink
	focus        usecase.FocusStats
	outbox       usecase.SyncOutbox
	hooks        Hooks
	bus          *usecase.Bus
	clock        func() time.Time
	logger       *zap.Logger

	mu      sync.Mutex
	tasks   map[string]*domain.Task
	lastErr error
}

// Option tweaks optional collaborators on the store.
type Option func(*Store)

// WithClock overrides the time source, mainly for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithHooks installs the fire-and-forget notification hooks.
func WithHooks(hooks Hooks) Option {
	return func(s *Store) {
		if hooks != nil {
			s.hooks = hooks
		}
	}
}

// WithOutbox installs the replication outbox.
func WithOutbox(outbox usecase.SyncOutbox) Option {
	return func(s *Store) { s.outbox = outbox }
}

// WithFocusStats wires the focus-minutes aggregate into stat snapshots.
func WithFocusStats(focus usecase.FocusStats) Option {
	return func(s *Store) { s.focus = focus }
}

// WithBus installs the subscriber bus used for post-commit notifications.
func WithBus(bus *usecase.Bus) Option {
	return func(s *Store) {
		if bus != nil {
			s.bus = bus
		}
	}
}

func New(
	repo repository.TaskRepository,
	tiers usecase.TierSource,
	streaks usecase.StreakRecorder,
	achievements usecase.AchievementSink,
	logger *zap.Logger,
	opts ...Option,
) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		repo:         repo,
		tiers:        tiers,
		streaks:      streaks,
		achievements: achievements,
		hooks:        NopHooks{},
		bus:          usecase.NewBus(),
		clock:        time.Now,
		logger:       logger,
		tasks:        make(map[string]*domain.Task),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load hydrates the in-memory collection from the persistence collaborator.
// Rows violating the completedAt/status invariant are repaired in place.
func (s *Store) Load(ctx context.Context) error {
	tasks, err := s.repo.List(ctx, repository.TaskFilter{})
	if err != nil {
		return domain.WrapError(domain.ErrCodeStorage, "load tasks", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = make(map[string]*domain.Task, len(tasks))
	for i := range tasks {
		task := tasks[i].Clone()
		if repaired := normalizeCompletion(task); repaired {
			s.logger.Warn("repaired completed_at/status mismatch",
				zap.String("task_id", task.ID),
				zap.String("status", string(task.Status)))
		}
		s.tasks[task.ID] = task
	}
	s.logger.Info("board loaded", zap.Int("tasks", len(s.tasks)))
	return nil
}

// Subscribe registers a listener invoked synchronously after each committed
// mutation, in subscription order.
func (s *Store) Subscribe(l usecase.Listener) {
	s.bus.Subscribe(l)
}

// LastError returns the most recent storage failure, for banner-style
// surfaces. It is cleared by the next successful mutation.
func (s *Store) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Get returns a copy of one task.
func (s *Store) Get(taskID string) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[taskID]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return task.Clone(), nil
}

// List returns the user's tasks, newest first.
func (s *Store) List(userID string) []domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Task
	for _, task := range s.tasks {
		if task.UserID == userID {
			out = append(out, *task.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// View is the column-grouped board for one user.
type View struct {
	Todo  []domain.Task `json:"todo"`
	Doing []domain.Task `json:"doing"`
	Done  []domain.Task `json:"done"`
}

// Columns groups the user's tasks by kanban column. Active columns order
// urgent tasks first, then oldest first; done orders by completion, newest
// first.
func (s *Store) Columns(userID string) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	var view View
	for _, task := range s.tasks {
		if task.UserID != userID {
			continue
		}
		clone := *task.Clone()
		switch task.Status {
		case domain.StatusTodo:
			view.Todo = append(view.Todo, clone)
		case domain.StatusDoing:
			view.Doing = append(view.Doing, clone)
		case domain.StatusDone:
			view.Done = append(view.Done, clone)
		}
	}

	sortActive(view.Todo)
	sortActive(view.Doing)
	sort.Slice(view.Done, func(i, j int) bool {
		return completedAfter(view.Done[i], view.Done[j])
	})
	return view
}

// ActiveCount returns how many of the user's tasks count against the limit.
func (s *Store) ActiveCount(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeCountLocked(userID)
}

// Stats assembles the aggregate snapshot achievement predicates read. The
// streak fields are zero here; completion-driven evaluation overlays them
// with the freshly recomputed values.
func (s *Store) Stats(ctx context.Context, userID string) domain.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statsLocked(ctx, userID)
}

func (s *Store) activeCountLocked(userID string) int {
	count := 0
	for _, task := range s.tasks {
		if task.UserID == userID && task.IsActive() {
			count++
		}
	}
	return count
}

func (s *Store) statsLocked(ctx context.Context, userID string) domain.Stats {
	stats := domain.Stats{
		CompletedByCategory: make(map[domain.Category]int),
	}
	for _, task := range s.tasks {
		if task.UserID != userID || !task.IsCompleted() {
			continue
		}
		stats.CompletedTotal++
		stats.CompletedByCategory[task.Category]++
		if task.Urgent {
			stats.UrgentCompleted++
		}
	}
	if s.focus != nil {
		minutes, err := s.focus.CompletedMinutes(ctx, userID)
		if err != nil {
			s.logger.Warn("focus minutes unavailable", zap.Error(err))
		} else {
			stats.FocusMinutes = minutes
		}
	}
	return stats
}

func (s *Store) publish(e usecase.Event) {
	s.bus.Publish(e)
}

func (s *Store) queueSync(ctx context.Context, operation string, task *domain.Task) {
	if s.outbox == nil {
		return
	}
	if err := s.outbox.QueueTask(ctx, operation, task.Clone()); err != nil {
		s.logger.Warn("failed to queue sync operation",
			zap.String("operation", operation),
			zap.String("task_id", task.ID),
			zap.Error(err))
	}
}

// normalizeCompletion enforces completedAt != nil iff status == done on a
// task coming from outside the store (storage rows, remote changes).
func normalizeCompletion(task *domain.Task) bool {
	switch {
	case task.Status == domain.StatusDone && task.CompletedAt == nil:
		at := task.UpdatedAt
		task.CompletedAt = &at
		return true
	case task.Status != domain.StatusDone && task.CompletedAt != nil:
		task.CompletedAt = nil
		return true
	}
	return false
}

func sortActive(tasks []domain.Task) {
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].Urgent != tasks[j].Urgent {
			return tasks[i].Urgent
		}
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
}

func completedAfter(a, b domain.Task) bool {
	switch {
	case a.CompletedAt == nil:
		return false
	case b.CompletedAt == nil:
		return true
	default:
		return a.CompletedAt.After(*b.CompletedAt)
	}
}
