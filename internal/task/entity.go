// AngelaMos | 2026
// entity.go

package task

import "time"

type Status string

const (
	StatusTodo       Status = "TO_DO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Task struct {
	ID          int64      `db:"id"`
	ProjectID   int64      `db:"project_id"`
	Title       string     `db:"title"`
	Description string     `db:"description"`
	Status      Status     `db:"status"`
	Priority    Priority   `db:"priority"`
	AssignedTo  *int64     `db:"assigned_to"`
	DueDate     *time.Time `db:"due_date"`
	CreatedBy   int64      `db:"created_by"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

// StatusCount is one row of the report aggregation.
type StatusCount struct {
	Status Status `db:"status"`
	Count  int    `db:"count"`
}
