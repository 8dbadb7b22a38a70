package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tasksnap/backend/domain"
	"github.com/tasksnap/backend/repository"
)

type UseCase struct {
	users     repository.UserRepository
	sessions  repository.SessionRepository
	jwtSecret string
	jwtIssuer string
	logger    *zap.Logger
}

func New(users repository.UserRepository, sessions repository.SessionRepository, jwtSecret, jwtIssuer string, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:     users,
		sessions:  sessions,
		jwtSecret: jwtSecret,
		jwtIssuer: jwtIssuer,
		logger:    logger,
	}
}

// IssueToken signs a bearer token bound to the session. The auth middleware
// extracts user_id from it on every protected request.
func (uc *UseCase) IssueToken(session *domain.Session) (string, error) {
	if session == nil {
		return "", domain.ErrInvalidPayload
	}
	claims := jwt.MapClaims{
		"user_id": session.UserID,
		"sid":     session.ID,
		"iss":     uc.jwtIssuer,
		"iat":     time.Now().Unix(),
		"exp":     session.ExpiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(uc.jwtSecret))
}

// CreateSession logs a device in. Unknown users are provisioned on the free
// tier so a fresh install can start capturing tasks immediately.
func (uc *UseCase) CreateSession(ctx context.Context, userID, deviceID string, ttl time.Duration) (*domain.Session, error) {
	if userID == "" {
		return nil, domain.ErrInvalidPayload
	}

	if _, err := uc.users.GetByID(ctx, userID); err != nil {
		if !domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, err
		}
		user := &domain.User{
			ID:     userID,
			Tier:   domain.TierFree,
			Status: "active",
		}
		if err := uc.users.Upsert(ctx, user); err != nil {
			return nil, err
		}
		uc.logger.Info("provisioned new user", zap.String("user_id", userID))
	}

	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		DeviceID:  deviceID,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(ttl),
	}

	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (uc *UseCase) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsExpired(time.Now()) {
		_ = uc.sessions.Delete(ctx, sessionID)
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (uc *UseCase) RefreshSession(ctx context.Context, sessionID string, ttl time.Duration) (*domain.Session, error) {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := uc.sessions.Extend(ctx, sessionID, int(ttl.Seconds())); err != nil {
		return nil, err
	}
	session.ExpiresAt = time.Now().Add(ttl)
	return session, nil
}

func (uc *UseCase) RevokeSession(ctx context.Context, sessionID string) error {
	return uc.sessions.Delete(ctx, sessionID)
}
