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

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	const query = `
	SELECT id, user_id, space_id, title, category, status, urgent, due_date,
	       before_image_ref, after_image_ref, created_at, updated_at, completed_at
	FROM tasks
	WHERE id = $1
	`
	row := r.pool.QueryRow(ctx, query, id)
	return scanTask(row)
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	const query = `
	SELECT id, user_id, space_id, title, category, status, urgent, due_date,
	       before_image_ref, after_image_ref, created_at, updated_at, completed_at
	FROM tasks
	WHERE ($1 = '' OR user_id = $1)
	  AND ($2 = '' OR space_id = $2)
	  AND ($3 = '' OR status = $3)
	ORDER BY created_at DESC
	LIMIT $4 OFFSET $5
	`
	rows, err := r.pool.Query(ctx, query,
		filter.UserID, filter.SpaceID, string(filter.Status),
		clampLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO tasks (id, user_id, space_id, title, category, status, urgent, due_date,
	                   before_image_ref, after_image_ref, created_at, updated_at, completed_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}
	if task.UpdatedAt.IsZero() {
		task.UpdatedAt = task.CreatedAt
	}

	if _, err := r.pool.Exec(ctx, query,
		task.ID,
		task.UserID,
		task.SpaceID,
		task.Title,
		string(task.Category),
		string(task.Status),
		task.Urgent,
		nullTimePtr(task.DueDate),
		task.BeforeImageRef,
		task.AfterImageRef,
		task.CreatedAt,
		task.UpdatedAt,
		nullTimePtr(task.CompletedAt),
	); err != nil {
		return nil, err
	}

	return task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE tasks
	SET title = $2,
		category = $3,
		status = $4,
		urgent = $5,
		due_date = $6,
		before_image_ref = $7,
		after_image_ref = $8,
		updated_at = $9,
		completed_at = $10
	WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		task.ID,
		task.Title,
		string(task.Category),
		string(task.Status),
		task.Urgent,
		nullTimePtr(task.DueDate),
		task.BeforeImageRef,
		task.AfterImageRef,
		task.UpdatedAt,
		nullTimePtr(task.CompletedAt),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM tasks WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func scanTask(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Task, error) {
	var task domain.Task
	var (
		category  string
		status    string
		due       *time.Time
		completed *time.Time
	)

	if err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.SpaceID,
		&task.Title,
		&category,
		&status,
		&task.Urgent,
		&due,
		&task.BeforeImageRef,
		&task.AfterImageRef,
		&task.CreatedAt,
		&task.UpdatedAt,
		&completed,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	task.Category = domain.Category(category)
	task.Status = domain.Status(status)
	task.DueDate = due
	task.CompletedAt = completed
	return &task, nil
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 500 {
		return 500
	}
	return limit
}
