package repository

import (
	"context"

	"github.com/tasksnap/backend/domain"
)

type FocusFilter struct {
	UserID string
	TaskID string
	Limit  int
	Offset int
}

type FocusRepository interface {
	GetByID(ctx context.Context, id string) (*domain.FocusSession, error)
	List(ctx context.Context, filter FocusFilter) ([]domain.FocusSession, error)
	Create(ctx context.Context, session *domain.FocusSession) (*domain.FocusSession, error)
	Update(ctx context.Context, session *domain.FocusSession) error
	// CompletedMinutes sums the elapsed minutes of finished sessions.
	CompletedMinutes(ctx context.Context, userID string) (int, error)
}
