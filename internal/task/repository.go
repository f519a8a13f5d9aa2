// AngelaMos | 2026
// repository.go

package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wemanage-app/backend/internal/core"
)

const taskColumns = `
	id, project_id, title, description, status, priority, assigned_to,
	due_date, created_by, created_at, updated_at`

type Repository interface {
	Create(ctx context.Context, task *Task) error
	GetByID(ctx context.Context, id int64) (*Task, error)
	ListByProject(ctx context.Context, projectID int64) ([]Task, error)
	ListAccessible(ctx context.Context, userID int64) ([]Task, error)
	ListAll(ctx context.Context) ([]Task, error)
	Update(ctx context.Context, task *Task) error
	Delete(ctx context.Context, id int64) error
	CountByStatusAccessible(
		ctx context.Context,
		userID int64,
	) ([]StatusCount, error)
	CountByStatusAll(ctx context.Context) ([]StatusCount, error)
	CountByStatusProject(
		ctx context.Context,
		projectID int64,
	) ([]StatusCount, error)
	Count(ctx context.Context) (int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, task *Task) error {
	query := `
		INSERT INTO tasks (
			project_id, title, description, status, priority, assigned_to,
			due_date, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	err := r.db.GetContext(ctx, task, query,
		task.ProjectID,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.AssignedTo,
		task.DueDate,
		task.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	var task Task
	err := r.db.GetContext(ctx, &task, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get task: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}

	return &task, nil
}

func (r *repository) ListByProject(
	ctx context.Context,
	projectID int64,
) ([]Task, error) {
	query := `SELECT ` + taskColumns + `
		FROM tasks
		WHERE project_id = $1
		ORDER BY created_at DESC`

	var tasks []Task
	if err := r.db.SelectContext(ctx, &tasks, query, projectID); err != nil {
		return nil, fmt.Errorf("list tasks by project: %w", err)
	}

	return tasks, nil
}

func (r *repository) ListAccessible(
	ctx context.Context,
	userID int64,
) ([]Task, error) {
	query := `SELECT ` + taskColumns + `
		FROM tasks
		WHERE assigned_to = $1
		   OR project_id IN (
			SELECT project_id FROM project_members WHERE user_id = $1
		)
		ORDER BY created_at DESC`

	var tasks []Task
	if err := r.db.SelectContext(ctx, &tasks, query, userID); err != nil {
		return nil, fmt.Errorf("list accessible tasks: %w", err)
	}

	return tasks, nil
}

func (r *repository) ListAll(ctx context.Context) ([]Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks ORDER BY created_at DESC`

	var tasks []Task
	if err := r.db.SelectContext(ctx, &tasks, query); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	return tasks, nil
}

func (r *repository) Update(ctx context.Context, task *Task) error {
	query := `
		UPDATE tasks
		SET title = $2, description = $3, status = $4, priority = $5,
		    assigned_to = $6, due_date = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &task.UpdatedAt, query,
		task.ID,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.AssignedTo,
		task.DueDate,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update task: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete task: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) CountByStatusAccessible(
	ctx context.Context,
	userID int64,
) ([]StatusCount, error) {
	query := `
		SELECT status, COUNT(*) AS count
		FROM tasks
		WHERE assigned_to = $1
		   OR project_id IN (
			SELECT project_id FROM project_members WHERE user_id = $1
		)
		GROUP BY status`

	var counts []StatusCount
	if err := r.db.SelectContext(ctx, &counts, query, userID); err != nil {
		return nil, fmt.Errorf("count tasks by status: %w", err)
	}

	return counts, nil
}

func (r *repository) CountByStatusAll(
	ctx context.Context,
) ([]StatusCount, error) {
	query := `
		SELECT status, COUNT(*) AS count
		FROM tasks
		GROUP BY status`

	var counts []StatusCount
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("count tasks by status: %w", err)
	}

	return counts, nil
}

func (r *repository) CountByStatusProject(
	ctx context.Context,
	projectID int64,
) ([]StatusCount, error) {
	query := `
		SELECT status, COUNT(*) AS count
		FROM tasks
		WHERE project_id = $1
		GROUP BY status`

	var counts []StatusCount
	if err := r.db.SelectContext(ctx, &counts, query, projectID); err != nil {
		return nil, fmt.Errorf("count tasks by status: %w", err)
	}

	return counts, nil
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM tasks`)
	if err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}

	return count, nil
}
