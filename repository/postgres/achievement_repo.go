package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tasksnap/backend/repository"
)

type achievementRepository struct {
	pool *pgxpool.Pool
}

// NewAchievementRepository returns a Postgres-backed unlock-record store.
func NewAchievementRepository(pool *pgxpool.Pool) repository.AchievementRepository {
	return &achievementRepository{pool: pool}
}

func (r *achievementRepository) ListUnlocked(ctx context.Context, userID string) ([]repository.UnlockRecord, error) {
	const query = `
	SELECT user_id, achievement_id, unlocked_at
	FROM achievement_unlocks
	WHERE user_id = $1
	ORDER BY unlocked_at
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []repository.UnlockRecord
	for rows.Next() {
		var rec repository.UnlockRecord
		if err := rows.Scan(&rec.UserID, &rec.AchievementID, &rec.UnlockedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Unlock is idempotent: the unique (user_id, achievement_id) pair keeps the
// first timestamp, which is what makes unlocks monotonic across devices.
func (r *achievementRepository) Unlock(ctx context.Context, record repository.UnlockRecord) error {
	const query = `
	INSERT INTO achievement_unlocks (user_id, achievement_id, unlocked_at)
	VALUES ($1, $2, $3)
	ON CONFLICT (user_id, achievement_id) DO NOTHING
	`
	_, err := r.pool.Exec(ctx, query, record.UserID, record.AchievementID, record.UnlockedAt)
	return err
}
