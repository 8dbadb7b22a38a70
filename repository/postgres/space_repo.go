package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tasksnap/backend/domain"
	"github.com/tasksnap/backend/repository"
)

type spaceRepository struct {
	pool *pgxpool.Pool
}

// NewSpaceRepository returns a Postgres-backed implementation of SpaceRepository.
func NewSpaceRepository(pool *pgxpool.Pool) repository.SpaceRepository {
	return &spaceRepository{pool: pool}
}

func (r *spaceRepository) GetByID(ctx context.Context, id string) (*domain.Space, error) {
	const query = `
	SELECT id, name, owner_id, created_at, updated_at
	FROM spaces
	WHERE id = $1
	`
	var space domain.Space
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&space.ID, &space.Name, &space.OwnerID, &space.CreatedAt, &space.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSpaceNotFound
		}
		return nil, err
	}
	return &space, nil
}

func (r *spaceRepository) ListForUser(ctx context.Context, userID string) ([]domain.Space, error) {
	const query = `
	SELECT s.id, s.name, s.owner_id, s.created_at, s.updated_at
	FROM spaces s
	JOIN space_members m ON m.space_id = s.id
	WHERE m.user_id = $1
	ORDER BY s.created_at
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var spaces []domain.Space
	for rows.Next() {
		var space domain.Space
		if err := rows.Scan(&space.ID, &space.Name, &space.OwnerID, &space.CreatedAt, &space.UpdatedAt); err != nil {
			return nil, err
		}
		spaces = append(spaces, space)
	}
	return spaces, rows.Err()
}

func (r *spaceRepository) Create(ctx context.Context, space *domain.Space) (*domain.Space, error) {
	if space == nil {
		return nil, domain.ErrInvalidPayload
	}
	if space.ID == "" {
		space.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO spaces (id, name, owner_id)
	VALUES ($1, $2, $3)
	RETURNING created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query, space.ID, space.Name, space.OwnerID).
		Scan(&space.CreatedAt, &space.UpdatedAt); err != nil {
		return nil, err
	}
	return space, nil
}

func (r *spaceRepository) AddMember(ctx context.Context, member domain.SpaceMember) error {
	const query = `
	INSERT INTO space_members (space_id, user_id, role, joined_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (space_id, user_id) DO NOTHING
	`
	_, err := r.pool.Exec(ctx, query, member.SpaceID, member.UserID, member.Role, member.JoinedAt)
	return err
}

func (r *spaceRepository) ListMembers(ctx context.Context, spaceID string) ([]domain.SpaceMember, error) {
	const query = `
	SELECT space_id, user_id, role, joined_at
	FROM space_members
	WHERE space_id = $1
	ORDER BY joined_at
	`
	rows, err := r.pool.Query(ctx, query, spaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.SpaceMember
	for rows.Next() {
		var m domain.SpaceMember
		if err := rows.Scan(&m.SpaceID, &m.UserID, &m.Role, &m.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *spaceRepository) IsMember(ctx context.Context, spaceID, userID string) (bool, error) {
	const query = `
	SELECT EXISTS (
		SELECT 1 FROM space_members WHERE space_id = $1 AND user_id = $2
	)
	`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, spaceID, userID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
