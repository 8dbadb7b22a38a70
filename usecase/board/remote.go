package board

import (
	"context"

	"go.uber.org/zap"

	"github.com/tasksnap/backend/domain"
	"github.com/tasksnap/backend/usecase"
)

// ApplyRemote merges a batch of replicated tasks by last-writer-wins on
// UpdatedAt per task. A local edit newer than the incoming copy is kept and
// the skipped change is logged only; merge never raises a user-facing error.
//
// Remote changes are trusted state from the user's other devices, so they
// bypass the capacity gate: the gate applies at the boundary of local user
// actions, not retroactively.
func (s *Store) ApplyRemote(ctx context.Context, incoming []domain.Task) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	applied := 0
	for i := range incoming {
		remote := incoming[i].Clone()
		if remote.ID == "" {
			continue
		}
		normalizeCompletion(remote)

		local, exists := s.tasks[remote.ID]
		if exists && local.UpdatedAt.After(remote.UpdatedAt) {
			s.logger.Info("sync conflict resolved, local edit newer",
				zap.String("task_id", remote.ID),
				zap.Time("local_updated_at", local.UpdatedAt),
				zap.Time("remote_updated_at", remote.UpdatedAt))
			continue
		}

		var err error
		if exists {
			err = s.repo.Update(ctx, remote.Clone())
		} else {
			_, err = s.repo.Create(ctx, remote.Clone())
		}
		if err != nil {
			s.logger.Warn("failed to persist remote change",
				zap.String("task_id", remote.ID), zap.Error(err))
			continue
		}

		s.tasks[remote.ID] = remote
		applied++
		s.publish(usecase.Event{Type: usecase.EventRemoteApplied, Task: remote.Clone()})
	}
	return applied
}

// RemoveRemote handles a replicated deletion.
func (s *Store) RemoveRemote(ctx context.Context, taskID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.tasks[taskID]
	if !ok {
		return false
	}
	if err := s.repo.Delete(ctx, taskID); err != nil && !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		s.logger.Warn("failed to persist remote deletion",
			zap.String("task_id", taskID), zap.Error(err))
		return false
	}
	delete(s.tasks, taskID)
	s.publish(usecase.Event{Type: usecase.EventTaskDeleted, Task: current.Clone()})
	return true
}
