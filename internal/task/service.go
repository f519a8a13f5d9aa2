// AngelaMos | 2026
// service.go

package task

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/wemanage-app/backend/internal/middleware"
)

// AccessChecker is the project-side authorization gate; the project
// service satisfies it.
type AccessChecker interface {
	CheckAccess(
		ctx context.Context,
		identity *middleware.Identity,
		projectID int64,
	) error
}

// Notifier receives assignment events. Notification failures are logged
// and swallowed; a task write must never roll back because a
// notification insert failed.
type Notifier interface {
	NotifyTaskAssigned(
		ctx context.Context,
		userID, taskID int64,
		taskTitle string,
	) error
	NotifyTaskUpdated(
		ctx context.Context,
		userID, taskID int64,
		taskTitle string,
	) error
}

type Service struct {
	repo     Repository
	access   AccessChecker
	notifier Notifier
}

func NewService(repo Repository, access AccessChecker, notifier Notifier) *Service {
	return &Service{
		repo:     repo,
		access:   access,
		notifier: notifier,
	}
}

func (s *Service) Create(
	ctx context.Context,
	identity *middleware.Identity,
	req CreateTaskRequest,
) (*TaskResponse, error) {
	if err := s.access.CheckAccess(ctx, identity, req.ProjectID); err != nil {
		return nil, err
	}

	status := StatusTodo
	if req.Status != "" {
		status = Status(req.Status)
	}

	priority := PriorityMedium
	if req.Priority != "" {
		priority = Priority(req.Priority)
	}

	task := &Task{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		Priority:    priority,
		AssignedTo:  req.AssignedTo,
		DueDate:     req.DueDate,
		CreatedBy:   identity.UserID,
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, err
	}

	s.notifyAssignment(ctx, task, nil)

	return toTaskResponse(task), nil
}

// List returns the caller's visible tasks: a specific project when
// projectID is set (access-gated), otherwise tasks assigned to them
// plus everything across their projects, or everything outright for an
// admin.
func (s *Service) List(
	ctx context.Context,
	identity *middleware.Identity,
	projectID int64,
) ([]TaskResponse, error) {
	if projectID != 0 {
		if err := s.access.CheckAccess(ctx, identity, projectID); err != nil {
			return nil, err
		}

		tasks, err := s.repo.ListByProject(ctx, projectID)
		if err != nil {
			return nil, err
		}
		return toTaskResponses(tasks), nil
	}

	var (
		tasks []Task
		err   error
	)
	if identity.IsAdmin() {
		tasks, err = s.repo.ListAll(ctx)
	} else {
		tasks, err = s.repo.ListAccessible(ctx, identity.UserID)
	}
	if err != nil {
		return nil, err
	}

	return toTaskResponses(tasks), nil
}

func (s *Service) Get(
	ctx context.Context,
	identity *middleware.Identity,
	taskID int64,
) (*TaskResponse, error) {
	task, err := s.loadGated(ctx, identity, taskID)
	if err != nil {
		return nil, err
	}

	return toTaskResponse(task), nil
}

// Update applies a partial update. Only fields present in the request
// change; an assignment change fires a notification to the new
// assignee.
func (s *Service) Update(
	ctx context.Context,
	identity *middleware.Identity,
	taskID int64,
	req UpdateTaskRequest,
) (*TaskResponse, error) {
	task, err := s.loadGated(ctx, identity, taskID)
	if err != nil {
		return nil, err
	}

	previousAssignee := task.AssignedTo

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Status != nil {
		task.Status = Status(*req.Status)
	}
	if req.Priority != nil {
		task.Priority = Priority(*req.Priority)
	}
	if req.AssignedTo != nil {
		task.AssignedTo = req.AssignedTo
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}

	s.notifyAssignment(ctx, task, previousAssignee)

	return toTaskResponse(task), nil
}

func (s *Service) Delete(
	ctx context.Context,
	identity *middleware.Identity,
	taskID int64,
) error {
	if _, err := s.loadGated(ctx, identity, taskID); err != nil {
		return err
	}

	return s.repo.Delete(ctx, taskID)
}

// Report aggregates status counts and the completion rate over the
// caller's visible tasks, or a single project when projectID is set.
func (s *Service) Report(
	ctx context.Context,
	identity *middleware.Identity,
	projectID int64,
) (*ReportResponse, error) {
	var (
		counts []StatusCount
		err    error
	)
	switch {
	case projectID != 0:
		if err := s.access.CheckAccess(ctx, identity, projectID); err != nil {
			return nil, err
		}
		counts, err = s.repo.CountByStatusProject(ctx, projectID)
	case identity.IsAdmin():
		counts, err = s.repo.CountByStatusAll(ctx)
	default:
		counts, err = s.repo.CountByStatusAccessible(ctx, identity.UserID)
	}
	if err != nil {
		return nil, err
	}

	report := &ReportResponse{}
	for _, c := range counts {
		switch c.Status {
		case StatusTodo:
			report.ToDo = c.Count
		case StatusInProgress:
			report.InProgress = c.Count
		case StatusDone:
			report.Done = c.Count
		}
		report.Total += c.Count
	}

	if report.Total > 0 {
		rate := float64(report.Done) / float64(report.Total) * 100
		report.CompletionRate = int(math.Round(rate))
	}

	return report, nil
}

func (s *Service) CountTasks(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// CheckTaskAccess gates task-scoped sub-resources (comments) on the
// owning project's team.
func (s *Service) CheckTaskAccess(
	ctx context.Context,
	identity *middleware.Identity,
	taskID int64,
) error {
	_, err := s.loadGated(ctx, identity, taskID)
	return err
}

func (s *Service) loadGated(
	ctx context.Context,
	identity *middleware.Identity,
	taskID int64,
) (*Task, error) {
	task, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if err := s.access.CheckAccess(ctx, identity, task.ProjectID); err != nil {
		return nil, fmt.Errorf("task %d: %w", taskID, err)
	}

	return task, nil
}

func (s *Service) notifyAssignment(
	ctx context.Context,
	task *Task,
	previousAssignee *int64,
) {
	if task.AssignedTo == nil {
		return
	}
	if previousAssignee != nil && *previousAssignee == *task.AssignedTo {
		return
	}

	notify := s.notifier.NotifyTaskAssigned
	if previousAssignee != nil {
		notify = s.notifier.NotifyTaskUpdated
	}

	err := notify(ctx, *task.AssignedTo, task.ID, task.Title)
	if err != nil {
		slog.Warn("task assignment notification failed",
			"task_id", task.ID,
			"assignee", *task.AssignedTo,
			"error", err,
		)
	}
}
