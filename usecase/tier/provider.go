package tier

import (
	"context"

	"go.uber.org/zap"

	"github.com/tasksnap/backend/domain"
	"github.com/tasksnap/backend/repository"
)

// Provider resolves the active-task limit for a user. The user's stored tier
// wins; unknown users and lookup failures fall back to the free-tier limit so
// the gate never accidentally opens.
type Provider struct {
	users     repository.UserRepository
	freeLimit int
	proLimit  int
	logger    *zap.Logger
}

func New(users repository.UserRepository, freeLimit, proLimit int, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		users:     users,
		freeLimit: freeLimit,
		proLimit:  proLimit,
		logger:    logger,
	}
}

// Limit is read at every gated operation, never cached here, so a tier
// upgrade takes effect on the next create or reopen.
func (p *Provider) Limit(ctx context.Context, userID string) domain.TierLimit {
	if p.users == nil || userID == "" {
		return domain.LimitOf(p.freeLimit)
	}

	user, err := p.users.GetByID(ctx, userID)
	if err != nil {
		if !domain.IsDomainError(err, domain.ErrCodeNotFound) {
			p.logger.Warn("tier lookup failed, using free limit",
				zap.String("user_id", userID), zap.Error(err))
		}
		return domain.LimitOf(p.freeLimit)
	}

	switch user.Tier {
	case domain.TierUnlimited:
		return domain.NoLimit()
	case domain.TierPro:
		return domain.LimitOf(p.proLimit)
	default:
		return domain.LimitOf(p.freeLimit)
	}
}

// Fixed is a TierSource returning the same limit for every user, used in
// tests and single-user deployments.
type Fixed struct {
	Value domain.TierLimit
}

func (f Fixed) Limit(context.Context, string) domain.TierLimit {
	return f.Value
}
