// AngelaMos | 2026
// dto.go

package task

import "time"

type CreateTaskRequest struct {
	ProjectID   int64      `json:"project_id"  validate:"required,gt=0"`
	Title       string     `json:"title"       validate:"required,min=1,max=200"`
	Description string     `json:"description" validate:"max=5000"`
	Status      string     `json:"status"      validate:"omitempty,oneof=TO_DO IN_PROGRESS DONE"`
	Priority    string     `json:"priority"    validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	AssignedTo  *int64     `json:"assigned_to" validate:"omitempty,gt=0"`
	DueDate     *time.Time `json:"due_date"`
}

type UpdateTaskRequest struct {
	Title       *string    `json:"title"       validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	Status      *string    `json:"status"      validate:"omitempty,oneof=TO_DO IN_PROGRESS DONE"`
	Priority    *string    `json:"priority"    validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	AssignedTo  *int64     `json:"assigned_to" validate:"omitempty,gt=0"`
	DueDate     *time.Time `json:"due_date"`
}

type TaskResponse struct {
	ID          int64      `json:"id"`
	ProjectID   int64      `json:"project_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	AssignedTo  *int64     `json:"assigned_to"`
	DueDate     *time.Time `json:"due_date"`
	CreatedBy   int64      `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ReportResponse aggregates task state across the caller's visible
// tasks, or a single project when filtered. CompletionRate is a rounded
// percentage.
type ReportResponse struct {
	ToDo           int `json:"to_do"`
	InProgress     int `json:"in_progress"`
	Done           int `json:"done"`
	Total          int `json:"total"`
	CompletionRate int `json:"completion_rate"`
}

func toTaskResponse(t *Task) *TaskResponse {
	return &TaskResponse{
		ID:          t.ID,
		ProjectID:   t.ProjectID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		AssignedTo:  t.AssignedTo,
		DueDate:     t.DueDate,
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toTaskResponses(tasks []Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, *toTaskResponse(&tasks[i]))
	}
	return out
}
