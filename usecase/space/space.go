package space

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tasksnap/backend/domain"
	"github.com/tasksnap/backend/repository"
)

// UseCase manages shared collaborative spaces and their membership.
type UseCase struct {
	spaces repository.SpaceRepository
	logger *zap.Logger
}

func New(spaces repository.SpaceRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		spaces: spaces,
		logger: logger,
	}
}

func (uc *UseCase) ListSpaces(ctx context.Context, userID string) ([]domain.Space, error) {
	return uc.spaces.ListForUser(ctx, userID)
}

func (uc *UseCase) GetSpace(ctx context.Context, id string) (*domain.Space, error) {
	return uc.spaces.GetByID(ctx, id)
}

// CreateSpace makes a new space with the creator as owner.
func (uc *UseCase) CreateSpace(ctx context.Context, ownerID, name string) (*domain.Space, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "space name must not be empty")
	}
	if ownerID == "" {
		return nil, domain.ErrInvalidPayload
	}

	space := &domain.Space{
		ID:      uuid.NewString(),
		Name:    name,
		OwnerID: ownerID,
	}
	created, err := uc.spaces.Create(ctx, space)
	if err != nil {
		return nil, err
	}

	member := domain.SpaceMember{
		SpaceID:  created.ID,
		UserID:   ownerID,
		Role:     domain.SpaceRoleOwner,
		JoinedAt: time.Now(),
	}
	if err := uc.spaces.AddMember(ctx, member); err != nil {
		uc.logger.Error("failed to add owner membership",
			zap.String("space_id", created.ID), zap.Error(err))
		return nil, err
	}
	return created, nil
}

// Invite adds a member. Only existing members may invite.
func (uc *UseCase) Invite(ctx context.Context, spaceID, inviterID, inviteeID string) error {
	if inviteeID == "" {
		return domain.ErrInvalidPayload
	}

	isMember, err := uc.spaces.IsMember(ctx, spaceID, inviterID)
	if err != nil {
		return err
	}
	if !isMember {
		return domain.NewError(domain.ErrCodeForbidden, "only members may invite")
	}

	return uc.spaces.AddMember(ctx, domain.SpaceMember{
		SpaceID:  spaceID,
		UserID:   inviteeID,
		Role:     domain.SpaceRoleMember,
		JoinedAt: time.Now(),
	})
}

func (uc *UseCase) Members(ctx context.Context, spaceID, requesterID string) ([]domain.SpaceMember, error) {
	isMember, err := uc.spaces.IsMember(ctx, spaceID, requesterID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, domain.NewError(domain.ErrCodeForbidden, "not a member of this space")
	}
	return uc.spaces.ListMembers(ctx, spaceID)
}

// CanAccess reports whether the user may read a space's tasks.
func (uc *UseCase) CanAccess(ctx context.Context, spaceID, userID string) (bool, error) {
	if spaceID == "" {
		return true, nil
	}
	return uc.spaces.IsMember(ctx, spaceID, userID)
}
