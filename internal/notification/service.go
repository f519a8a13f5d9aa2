// AngelaMos | 2026
// service.go

package notification

import (
	"context"
	"fmt"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListForUser(
	ctx context.Context,
	userID int64,
) ([]NotificationResponse, error) {
	notifications, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return toNotificationResponses(notifications), nil
}

func (s *Service) MarkRead(ctx context.Context, id, userID int64) error {
	return s.repo.MarkRead(ctx, id, userID)
}

// NotifyTaskAssigned satisfies the task package's notifier for
// first-time assignments.
func (s *Service) NotifyTaskAssigned(
	ctx context.Context,
	userID, taskID int64,
	taskTitle string,
) error {
	n := &Notification{
		UserID:  userID,
		Type:    TypeTaskAssignment,
		Message: fmt.Sprintf("You have been assigned a new task: %q", taskTitle),
		TaskID:  &taskID,
	}

	return s.repo.Create(ctx, n)
}

// NotifyTaskUpdated covers reassignment of an existing task.
func (s *Service) NotifyTaskUpdated(
	ctx context.Context,
	userID, taskID int64,
	taskTitle string,
) error {
	n := &Notification{
		UserID:  userID,
		Type:    TypeTaskUpdate,
		Message: fmt.Sprintf("You have been assigned an updated task: %q", taskTitle),
		TaskID:  &taskID,
	}

	return s.repo.Create(ctx, n)
}
