// AngelaMos | 2026
// service.go

package comment

import (
	"context"

	"github.com/wemanage-app/backend/internal/middleware"
)

// TaskAccessChecker gates comments on the owning task's project team;
// the task service satisfies it.
type TaskAccessChecker interface {
	CheckTaskAccess(
		ctx context.Context,
		identity *middleware.Identity,
		taskID int64,
	) error
}

type Service struct {
	repo   Repository
	access TaskAccessChecker
}

func NewService(repo Repository, access TaskAccessChecker) *Service {
	return &Service{
		repo:   repo,
		access: access,
	}
}

func (s *Service) List(
	ctx context.Context,
	identity *middleware.Identity,
	taskID int64,
) ([]CommentResponse, error) {
	if err := s.access.CheckTaskAccess(ctx, identity, taskID); err != nil {
		return nil, err
	}

	comments, err := s.repo.ListByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	return toCommentResponses(comments), nil
}

func (s *Service) Create(
	ctx context.Context,
	identity *middleware.Identity,
	taskID int64,
	body string,
) (*CommentResponse, error) {
	if err := s.access.CheckTaskAccess(ctx, identity, taskID); err != nil {
		return nil, err
	}

	comment := &Comment{
		TaskID: taskID,
		UserID: identity.UserID,
		Body:   body,
	}

	if err := s.repo.Create(ctx, comment); err != nil {
		return nil, err
	}

	// Re-read for the author join so the response matches a list read.
	created, err := s.repo.GetByID(ctx, comment.ID)
	if err != nil {
		return nil, err
	}

	return toCommentResponse(created), nil
}
