package redis

import (
	"context"
	"encoding/json"
	"fmt"

	redislib "github.com/redis/go-redis/v9"

	"github.com/tasksnap/backend/domain"
	"github.com/tasksnap/backend/repository"
)

type streakRepository struct {
	client *redislib.Client
	prefix string
}

// NewStreakRepository creates a Redis-backed streak snapshot store. Snapshots
// have no TTL: a streak survives app restarts, it only expires by the
// calendar rule the tracker applies.
func NewStreakRepository(client *redislib.Client) repository.StreakRepository {
	return &streakRepository{
		client: client,
		prefix: "streak:",
	}
}

func (r *streakRepository) Get(ctx context.Context, userID string) (*domain.StreakState, error) {
	result, err := r.client.Get(ctx, r.key(userID)).Result()
	if err != nil {
		if err == redislib.Nil {
			return nil, domain.NewError(domain.ErrCodeNotFound, "streak snapshot not found")
		}
		return nil, err
	}

	var state domain.StreakState
	if err := json.Unmarshal([]byte(result), &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (r *streakRepository) Save(ctx context.Context, state *domain.StreakState) error {
	if state == nil || state.UserID == "" {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(state.UserID), payload, 0).Err()
}

func (r *streakRepository) key(userID string) string {
	return fmt.Sprintf("%s%s", r.prefix, userID)
}
