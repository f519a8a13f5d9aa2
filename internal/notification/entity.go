// AngelaMos | 2026
// entity.go

package notification

import "time"

type Type string

const (
	TypeTaskAssignment Type = "TASK_ASSIGNMENT"
	TypeTaskUpdate     Type = "TASK_UPDATE"
)

type Notification struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Type      Type      `db:"type"`
	Message   string    `db:"message"`
	TaskID    *int64    `db:"task_id"`
	Read      bool      `db:"read"`
	CreatedAt time.Time `db:"created_at"`
}
