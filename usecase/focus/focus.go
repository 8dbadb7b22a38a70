package focus

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tasksnap/backend/domain"
	"github.com/tasksnap/backend/repository"
)

// UseCase runs focus-timer sessions. A session is started against an
// optional task and finished once; finished minutes feed the achievement
// statistics.
type UseCase struct {
	sessions       repository.FocusRepository
	defaultMinutes int
	clock          func() time.Time
	logger         *zap.Logger
}

type Option func(*UseCase)

// WithClock overrides the time source, mainly for tests.
func WithClock(clock func() time.Time) Option {
	return func(uc *UseCase) {
		if clock != nil {
			uc.clock = clock
		}
	}
}

func New(sessions repository.FocusRepository, defaultMinutes int, logger *zap.Logger, opts ...Option) *UseCase {
	if defaultMinutes <= 0 {
		defaultMinutes = 25
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	uc := &UseCase{
		sessions:       sessions,
		defaultMinutes: defaultMinutes,
		clock:          time.Now,
		logger:         logger,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Start opens a new session.
func (uc *UseCase) Start(ctx context.Context, userID, taskID string, plannedMinutes int) (*domain.FocusSession, error) {
	if userID == "" {
		return nil, domain.ErrInvalidPayload
	}
	if plannedMinutes <= 0 {
		plannedMinutes = uc.defaultMinutes
	}

	session := &domain.FocusSession{
		ID:             uuid.NewString(),
		UserID:         userID,
		TaskID:         taskID,
		PlannedMinutes: plannedMinutes,
		StartedAt:      uc.clock(),
	}
	return uc.sessions.Create(ctx, session)
}

// Finish closes a running session. Completed marks whether the user sat
// through the planned time rather than abandoning early.
func (uc *UseCase) Finish(ctx context.Context, sessionID string, completed bool) (*domain.FocusSession, error) {
	session, err := uc.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.Running() {
		return session, nil
	}

	ended := uc.clock()
	session.EndedAt = &ended
	session.Completed = completed
	if err := uc.sessions.Update(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (uc *UseCase) List(ctx context.Context, filter repository.FocusFilter) ([]domain.FocusSession, error) {
	return uc.sessions.List(ctx, filter)
}

// CompletedMinutes implements usecase.FocusStats.
func (uc *UseCase) CompletedMinutes(ctx context.Context, userID string) (int, error) {
	return uc.sessions.CompletedMinutes(ctx, userID)
}
