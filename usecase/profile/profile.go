package profile

import (
	"context"

	"go.uber.org/zap"

	"github.com/tasksnap/backend/domain"
	"github.com/tasksnap/backend/repository"
)

type UseCase struct {
	users  repository.UserRepository
	logger *zap.Logger
}

func New(users repository.UserRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		logger: logger,
	}
}

func (uc *UseCase) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	return uc.users.GetByID(ctx, userID)
}

// UpdateProfile upserts profile fields, including the subscription tier. The
// board's capacity gate reads the tier through the tier provider on each
// gated operation, so an upgrade here is effective immediately.
func (uc *UseCase) UpdateProfile(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user == nil || user.ID == "" {
		return nil, domain.ErrInvalidPayload
	}
	switch user.Tier {
	case "", domain.TierFree, domain.TierPro, domain.TierUnlimited:
	default:
		return nil, domain.NewError(domain.ErrCodeInvalid, "unknown subscription tier")
	}
	if user.Tier == "" {
		user.Tier = domain.TierFree
	}

	if err := uc.users.Upsert(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
