package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tasksnap/backend/domain"
	"github.com/tasksnap/backend/repository"
)

type focusRepository struct {
	pool *pgxpool.Pool
}

// NewFocusRepository returns a Postgres-backed implementation of FocusRepository.
func NewFocusRepository(pool *pgxpool.Pool) repository.FocusRepository {
	return &focusRepository{pool: pool}
}

func (r *focusRepository) GetByID(ctx context.Context, id string) (*domain.FocusSession, error) {
	const query = `
	SELECT id, user_id, task_id, planned_minutes, started_at, ended_at, completed
	FROM focus_sessions
	WHERE id = $1
	`
	row := r.pool.QueryRow(ctx, query, id)
	return scanFocus(row)
}

func (r *focusRepository) List(ctx context.Context, filter repository.FocusFilter) ([]domain.FocusSession, error) {
	const query = `
	SELECT id, user_id, task_id, planned_minutes, started_at, ended_at, completed
	FROM focus_sessions
	WHERE ($1 = '' OR user_id = $1)
	  AND ($2 = '' OR task_id = $2)
	ORDER BY started_at DESC
	LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query,
		filter.UserID, filter.TaskID, clampLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []domain.FocusSession
	for rows.Next() {
		session, err := scanFocus(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	return sessions, rows.Err()
}

func (r *focusRepository) Create(ctx context.Context, session *domain.FocusSession) (*domain.FocusSession, error) {
	if session == nil {
		return nil, domain.ErrInvalidPayload
	}
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.StartedAt.IsZero() {
		session.StartedAt = time.Now()
	}

	const query = `
	INSERT INTO focus_sessions (id, user_id, task_id, planned_minutes, started_at, ended_at, completed)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := r.pool.Exec(ctx, query,
		session.ID,
		session.UserID,
		session.TaskID,
		session.PlannedMinutes,
		session.StartedAt,
		nullTimePtr(session.EndedAt),
		session.Completed,
	); err != nil {
		return nil, err
	}
	return session, nil
}

func (r *focusRepository) Update(ctx context.Context, session *domain.FocusSession) error {
	if session == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE focus_sessions
	SET planned_minutes = $2,
		ended_at = $3,
		completed = $4
	WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		session.ID,
		session.PlannedMinutes,
		nullTimePtr(session.EndedAt),
		session.Completed,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrFocusNotFound
	}
	return nil
}

func (r *focusRepository) CompletedMinutes(ctx context.Context, userID string) (int, error) {
	const query = `
	SELECT COALESCE(SUM(EXTRACT(EPOCH FROM (ended_at - started_at)) / 60), 0)::int
	FROM focus_sessions
	WHERE user_id = $1 AND ended_at IS NOT NULL
	`
	var minutes int
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&minutes); err != nil {
		return 0, err
	}
	return minutes, nil
}

func scanFocus(row interface {
	Scan(dest ...interface{}) error
}) (*domain.FocusSession, error) {
	var session domain.FocusSession
	var ended *time.Time

	if err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.TaskID,
		&session.PlannedMinutes,
		&session.StartedAt,
		&ended,
		&session.Completed,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrFocusNotFound
		}
		return nil, err
	}

	session.EndedAt = ended
	return &session, nil
}
