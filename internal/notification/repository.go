// AngelaMos | 2026
// repository.go

package notification

import (
	"context"
	"fmt"

	"github.com/wemanage-app/backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	ListForUser(ctx context.Context, userID int64) ([]Notification, error)
	MarkRead(ctx context.Context, id, userID int64) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, n *Notification) error {
	query := `
		INSERT INTO notifications (user_id, type, message, task_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.GetContext(ctx, n, query,
		n.UserID,
		n.Type,
		n.Message,
		n.TaskID,
	)
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	return nil
}

func (r *repository) ListForUser(
	ctx context.Context,
	userID int64,
) ([]Notification, error) {
	query := `
		SELECT id, user_id, type, message, task_id, read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC`

	var notifications []Notification
	if err := r.db.SelectContext(ctx, &notifications, query, userID); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	return notifications, nil
}

// MarkRead is scoped to the owner; a foreign id reads as not found.
func (r *repository) MarkRead(ctx context.Context, id, userID int64) error {
	query := `
		UPDATE notifications
		SET read = TRUE
		WHERE id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("mark notification read: %w", core.ErrNotFound)
	}

	return nil
}
