package board

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tasksnap/backend/domain"
	"github.com/tasksnap/backend/usecase"
)

// CreateInput carries the caller-supplied fields for a new task.
type CreateInput struct {
	Title          string
	Category       domain.Category
	SpaceID        string
	Urgent         bool
	DueDate        *time.Time
	BeforeImageRef string
}

// Create validates the input, checks the capacity gate and commits a new
// task into the todo column. It either returns the created task or a typed
// error with nothing written.
func (s *Store) Create(ctx context.Context, userID string, in CreateInput) (*domain.Task, error) {
	if userID == "" {
		return nil, domain.ErrInvalidPayload
	}

	now := s.clock()
	task := &domain.Task{
		ID:             uuid.NewString(),
		UserID:         userID,
		SpaceID:        in.SpaceID,
		Title:          strings.TrimSpace(in.Title),
		Category:       in.Category,
		Status:         domain.StatusTodo,
		Urgent:         in.Urgent,
		DueDate:        in.DueDate,
		BeforeImageRef: in.BeforeImageRef,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := task.ValidateNew(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	active := s.activeCountLocked(userID)
	limit := s.tiers.Limit(ctx, userID)
	if !limit.CanActivate(active) {
		return nil, domain.NewCapacityError(active, limit)
	}

	if _, err := s.repo.Create(ctx, task.Clone()); err != nil {
		return nil, s.storageFailureLocked("create task", err)
	}

	s.tasks[task.ID] = task
	s.lastErr = nil
	s.queueSync(ctx, usecase.OperationCreate, task)
	s.publish(usecase.Event{Type: usecase.EventTaskCreated, Task: task.Clone()})
	return task.Clone(), nil
}

// SetStatus moves a task between kanban columns, applying the transition
// rules:
//
//   - same status: no-op, no side effects
//   - todo ↔ doing: always allowed, active count unchanged
//   - any active → done: always allowed, sets completedAt and fires the
//     completion cascade
//   - done → active (reopen): gated, evaluated with the reopened task
//     counted as active; clears completedAt
func (s *Store) SetStatus(ctx context.Context, taskID string, next domain.Status) (*domain.Task, error) {
	if !next.Valid() {
		return nil, domain.NewError(domain.ErrCodeInvalid, "unknown status")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.tasks[taskID]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	if current.Status == next {
		return current.Clone(), nil
	}

	reopen := current.Status == domain.StatusDone && next.Active()
	if reopen {
		active := s.activeCountLocked(current.UserID)
		limit := s.tiers.Limit(ctx, current.UserID)
		if !limit.CanActivate(active) {
			return nil, domain.NewCapacityError(active, limit)
		}
	}

	now := s.clock()
	updated := current.Clone()
	updated.Status = next
	updated.UpdatedAt = now

	completing := next == domain.StatusDone
	if completing {
		at := now
		updated.CompletedAt = &at
	} else {
		updated.CompletedAt = nil
	}

	if err := s.repo.Update(ctx, updated.Clone()); err != nil {
		return nil, s.storageFailureLocked("update task status", err)
	}

	s.tasks[taskID] = updated
	s.lastErr = nil
	s.queueSync(ctx, usecase.OperationUpdate, updated)

	switch {
	case completing:
		s.completionCascadeLocked(ctx, updated, now)
	case reopen:
		s.publish(usecase.Event{Type: usecase.EventTaskReopened, Task: updated.Clone()})
	default:
		s.publish(usecase.Event{Type: usecase.EventTaskUpdated, Task: updated.Clone()})
	}
	return updated.Clone(), nil
}

// ToggleUrgent flips the urgent flag. Not subject to the capacity gate.
func (s *Store) ToggleUrgent(ctx context.Context, taskID string) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.tasks[taskID]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}

	updated := current.Clone()
	updated.Urgent = !updated.Urgent
	updated.UpdatedAt = s.clock()

	if err := s.repo.Update(ctx, updated.Clone()); err != nil {
		return nil, s.storageFailureLocked("toggle urgent", err)
	}

	s.tasks[taskID] = updated
	s.lastErr = nil
	s.queueSync(ctx, usecase.OperationUpdate, updated)
	s.publish(usecase.Event{Type: usecase.EventTaskUpdated, Task: updated.Clone()})
	return updated.Clone(), nil
}

// UpdateInput lists the editable fields; nil pointers leave a field alone.
type UpdateInput struct {
	Title          *string
	Category       *domain.Category
	DueDate        *time.Time
	ClearDueDate   bool
	BeforeImageRef *string
	AfterImageRef  *string
}

// UpdateFields edits task content. Status and completedAt are untouchable
// here; SetStatus is the only path that moves columns.
func (s *Store) UpdateFields(ctx context.Context, taskID string, in UpdateInput) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.tasks[taskID]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}

	updated := current.Clone()
	if in.Title != nil {
		updated.Title = strings.TrimSpace(*in.Title)
		if updated.Title == "" {
			return nil, domain.NewError(domain.ErrCodeInvalid, "task title must not be empty")
		}
	}
	if in.Category != nil {
		if !in.Category.Valid() {
			return nil, domain.NewError(domain.ErrCodeInvalid, "unknown task category")
		}
		updated.Category = *in.Category
	}
	if in.ClearDueDate {
		updated.DueDate = nil
	} else if in.DueDate != nil {
		due := *in.DueDate
		updated.DueDate = &due
	}
	if in.BeforeImageRef != nil {
		updated.BeforeImageRef = *in.BeforeImageRef
	}
	if in.AfterImageRef != nil {
		updated.AfterImageRef = *in.AfterImageRef
	}
	updated.UpdatedAt = s.clock()

	if err := s.repo.Update(ctx, updated.Clone()); err != nil {
		return nil, s.storageFailureLocked("update task", err)
	}

	s.tasks[taskID] = updated
	s.lastErr = nil
	s.queueSync(ctx, usecase.OperationUpdate, updated)
	s.publish(usecase.Event{Type: usecase.EventTaskUpdated, Task: updated.Clone()})
	return updated.Clone(), nil
}

// Delete removes a task permanently. There is no undelete.
func (s *Store) Delete(ctx context.Context, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.tasks[taskID]
	if !ok {
		return domain.ErrTaskNotFound
	}

	if err := s.repo.Delete(ctx, taskID); err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			// Storage already forgot it; drop our copy too.
			delete(s.tasks, taskID)
			return nil
		}
		return s.storageFailureLocked("delete task", err)
	}

	delete(s.tasks, taskID)
	s.lastErr = nil
	s.queueSync(ctx, usecase.OperationDelete, current)
	s.publish(usecase.Event{Type: usecase.EventTaskDeleted, Task: current.Clone()})
	return nil
}

// completionCascadeLocked runs the ordered side effects of a committed done
// transition: streak recompute, achievement evaluation, hooks, subscribers.
// Downstream failures are logged, never propagated; the transition itself is
// already durable.
func (s *Store) completionCascadeLocked(ctx context.Context, task *domain.Task, at time.Time) {
	streak, err := s.streaks.RecordCompletion(ctx, task.UserID, at)
	if err != nil {
		s.logger.Warn("streak recompute reported an error",
			zap.String("user_id", task.UserID), zap.Error(err))
	}

	stats := s.statsLocked(ctx, task.UserID)
	stats.CurrentStreak = streak.Current
	stats.LongestStreak = streak.Longest

	unlocked, err := s.achievements.Evaluate(ctx, task.UserID, stats)
	if err != nil {
		s.logger.Warn("achievement evaluation failed",
			zap.String("user_id", task.UserID), zap.Error(err))
	}

	s.hooks.TaskCompleted(*task.Clone())
	s.hooks.StreakAdvanced(streak)
	for _, a := range unlocked {
		s.hooks.AchievementUnlocked(a)
	}

	s.publish(usecase.Event{Type: usecase.EventTaskCompleted, Task: task.Clone()})
	s.publish(usecase.Event{Type: usecase.EventStreakChanged, Streak: &streak})
	for i := range unlocked {
		s.publish(usecase.Event{Type: usecase.EventAchievementUnlocked, Achievement: &unlocked[i]})
	}
}

func (s *Store) storageFailureLocked(op string, err error) error {
	wrapped := domain.WrapError(domain.ErrCodeStorage, op+" failed", err)
	s.lastErr = wrapped
	s.logger.Error("storage operation failed", zap.String("op", op), zap.Error(err))
	return wrapped
}
