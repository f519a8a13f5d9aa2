// AngelaMos | 2026
// entity.go

package project

import "time"

type Project struct {
	ID          int64      `db:"id"`
	Name        string     `db:"name"`
	Description string     `db:"description"`
	StartDate   *time.Time `db:"start_date"`
	EndDate     *time.Time `db:"end_date"`
	Progress    float64    `db:"progress"`
	CreatedBy   int64      `db:"created_by"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

// Member is a row of the project team, joined with the user record for
// display.
type Member struct {
	UserID    int64   `db:"user_id"`
	Name      string  `db:"name"`
	Email     string  `db:"email"`
	AvatarURL *string `db:"avatar_url"`
}
