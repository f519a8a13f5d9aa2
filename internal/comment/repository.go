// AngelaMos | 2026
// repository.go

package comment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wemanage-app/backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, comment *Comment) error
	GetByID(ctx context.Context, id int64) (*Comment, error)
	ListByTask(ctx context.Context, taskID int64) ([]Comment, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, comment *Comment) error {
	query := `
		INSERT INTO comments (task_id, user_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.GetContext(ctx, comment, query,
		comment.TaskID,
		comment.UserID,
		comment.Body,
	)
	if err != nil {
		return fmt.Errorf("create comment: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Comment, error) {
	query := `
		SELECT c.id, c.task_id, c.user_id, c.body, c.created_at,
		       u.name AS author_name, u.avatar_url AS author_avatar
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.id = $1`

	var comment Comment
	err := r.db.GetContext(ctx, &comment, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get comment: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}

	return &comment, nil
}

// ListByTask returns the task's thread oldest-first.
func (r *repository) ListByTask(
	ctx context.Context,
	taskID int64,
) ([]Comment, error) {
	query := `
		SELECT c.id, c.task_id, c.user_id, c.body, c.created_at,
		       u.name AS author_name, u.avatar_url AS author_avatar
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.task_id = $1
		ORDER BY c.created_at ASC`

	var comments []Comment
	if err := r.db.SelectContext(ctx, &comments, query, taskID); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	return comments, nil
}
