// AngelaMos | 2026
// service.go

package project

import (
	"context"
	"errors"
	"fmt"

	"github.com/wemanage-app/backend/internal/core"
	"github.com/wemanage-app/backend/internal/middleware"
)

var ErrProjectNameExists = errors.New("project name already exists")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CheckAccess is the per-request authorization decision for everything
// under a project: admins see all projects, everyone else must be on
// the team. It is re-evaluated on every operation; a membership revoked
// a second ago denies the next request.
func (s *Service) CheckAccess(
	ctx context.Context,
	identity *middleware.Identity,
	projectID int64,
) error {
	if identity.IsAdmin() {
		return nil
	}

	isMember, err := s.repo.IsMember(ctx, projectID, identity.UserID)
	if err != nil {
		return fmt.Errorf("check access: %w", err)
	}

	if !isMember {
		return core.ErrForbidden
	}

	return nil
}

func (s *Service) Create(
	ctx context.Context,
	identity *middleware.Identity,
	req CreateProjectRequest,
) (*ProjectResponse, error) {
	project := &Project{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		CreatedBy:   identity.UserID,
	}

	// The creator always joins the team, no matter what the request
	// listed.
	memberIDs := append([]int64{identity.UserID}, req.MemberIDs...)

	if err := s.repo.Create(ctx, project, memberIDs); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrProjectNameExists
		}
		return nil, err
	}

	members, err := s.repo.ListMembers(ctx, project.ID)
	if err != nil {
		return nil, err
	}

	return toProjectResponse(project, members), nil
}

// List returns every project for an admin and only team projects for
// anyone else.
func (s *Service) List(
	ctx context.Context,
	identity *middleware.Identity,
) ([]ProjectResponse, error) {
	var (
		projects []Project
		err      error
	)

	if identity.IsAdmin() {
		projects, err = s.repo.ListAll(ctx)
	} else {
		projects, err = s.repo.ListForUser(ctx, identity.UserID)
	}
	if err != nil {
		return nil, err
	}

	return toProjectResponses(projects), nil
}

func (s *Service) Get(
	ctx context.Context,
	identity *middleware.Identity,
	projectID int64,
) (*ProjectResponse, error) {
	if err := s.CheckAccess(ctx, identity, projectID); err != nil {
		return nil, err
	}

	project, err := s.repo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	members, err := s.repo.ListMembers(ctx, projectID)
	if err != nil {
		return nil, err
	}

	return toProjectResponse(project, members), nil
}

func (s *Service) AddMember(
	ctx context.Context,
	identity *middleware.Identity,
	projectID, userID int64,
) error {
	if err := s.CheckAccess(ctx, identity, projectID); err != nil {
		return err
	}

	if _, err := s.repo.GetByID(ctx, projectID); err != nil {
		return err
	}

	return s.repo.AddMember(ctx, projectID, userID)
}

func (s *Service) Delete(
	ctx context.Context,
	identity *middleware.Identity,
	projectID int64,
) error {
	if err := s.CheckAccess(ctx, identity, projectID); err != nil {
		return err
	}

	return s.repo.Delete(ctx, projectID)
}

func (s *Service) CountProjects(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
