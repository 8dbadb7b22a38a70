package repository

import (
	"context"

	"github.com/tasksnap/backend/domain"
)

type SpaceRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Space, error)
	ListForUser(ctx context.Context, userID string) ([]domain.Space, error)
	Create(ctx context.Context, space *domain.Space) (*domain.Space, error)
	AddMember(ctx context.Context, member domain.SpaceMember) error
	ListMembers(ctx context.Context, spaceID string) ([]domain.SpaceMember, error)
	IsMember(ctx context.Context, spaceID, userID string) (bool, error)
}
