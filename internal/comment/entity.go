// AngelaMos | 2026
// entity.go

package comment

import "time"

type Comment struct {
	ID        int64     `db:"id"`
	TaskID    int64     `db:"task_id"`
	UserID    int64     `db:"user_id"`
	Body      string    `db:"body"`
	CreatedAt time.Time `db:"created_at"`

	// Joined from users for display.
	AuthorName   string  `db:"author_name"`
	AuthorAvatar *string `db:"author_avatar"`
}
