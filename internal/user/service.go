// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"
	"time"

	"github.com/wemanage-app/backend/internal/auth"
	"github.com/wemanage-app/backend/internal/core"
	"github.com/wemanage-app/backend/internal/middleware"
)

// Service owns the users table. It doubles as the account source for
// the auth package and the identity loader for the request middleware.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListUsers returns one page of accounts plus the total count for the
// pagination envelope.
func (s *Service) ListUsers(
	ctx context.Context,
	page, pageSize int,
) ([]UserResponse, int, error) {
	users, err := s.repo.List(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	return toUserResponses(users), total, nil
}

// UpdateUserRole changes a user's role. An admin cannot change their
// own role; demoting yourself mid-request would orphan the admin
// surface you are standing on.
func (s *Service) UpdateUserRole(
	ctx context.Context,
	actorID, targetID int64,
	role string,
) error {
	if actorID == targetID {
		return core.ErrSelfAction
	}

	r := Role(role)
	if !r.Valid() {
		return fmt.Errorf("role %q: %w", role, core.ErrInvalidInput)
	}

	if _, err := s.repo.GetByID(ctx, targetID); err != nil {
		return err
	}

	return s.repo.UpdateRole(ctx, targetID, r)
}

// DeleteUser removes an account. Self-deletion is rejected for the
// same reason as self-demotion.
func (s *Service) DeleteUser(ctx context.Context, actorID, targetID int64) error {
	if actorID == targetID {
		return core.ErrSelfAction
	}

	return s.repo.Delete(ctx, targetID)
}

func (s *Service) CountUsers(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// LoadIdentity satisfies the middleware loader; every authenticated
// request passes through here.
func (s *Service) LoadIdentity(
	ctx context.Context,
	userID int64,
) (*middleware.Identity, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	avatarURL := ""
	if u.AvatarURL != nil {
		avatarURL = *u.AvatarURL
	}

	return &middleware.Identity{
		UserID:    u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		AvatarURL: avatarURL,
	}, nil
}

// The methods below satisfy auth.UserProvider.

func (s *Service) GetByID(ctx context.Context, id int64) (*auth.Account, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toAccount(u), nil
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.Account, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return toAccount(u), nil
}

func (s *Service) GetByProvider(
	ctx context.Context,
	provider, providerID string,
) (*auth.Account, error) {
	u, err := s.repo.GetByProvider(ctx, provider, providerID)
	if err != nil {
		return nil, err
	}
	return toAccount(u), nil
}

func (s *Service) CreateLocal(
	ctx context.Context,
	email, passwordHash, name, avatarURL string,
) (*auth.Account, error) {
	u := &User{
		Email:        email,
		Name:         name,
		PasswordHash: &passwordHash,
		Role:         RoleUser,
		AvatarURL:    &avatarURL,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	return toAccount(u), nil
}

func (s *Service) CreateFederated(
	ctx context.Context,
	email, name, provider, providerID, avatarURL string,
) (*auth.Account, error) {
	u := &User{
		Email:      email,
		Name:       name,
		Provider:   &provider,
		ProviderID: &providerID,
		Role:       RoleUser,
		AvatarURL:  &avatarURL,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	return toAccount(u), nil
}

func (s *Service) LinkProvider(
	ctx context.Context,
	id int64,
	provider, providerID, name, avatarURL string,
) (*auth.Account, error) {
	u := &User{
		ID:         id,
		Name:       name,
		Provider:   &provider,
		ProviderID: &providerID,
		AvatarURL:  &avatarURL,
	}

	if err := s.repo.LinkProvider(ctx, u); err != nil {
		return nil, err
	}

	linked, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toAccount(linked), nil
}

func (s *Service) SetResetToken(
	ctx context.Context,
	id int64,
	tokenHash string,
	expires time.Time,
) error {
	return s.repo.SetResetToken(ctx, id, tokenHash, expires)
}

func (s *Service) ClearResetToken(ctx context.Context, id int64) error {
	return s.repo.ClearResetToken(ctx, id)
}

func (s *Service) GetByResetToken(
	ctx context.Context,
	tokenHash string,
) (*auth.Account, error) {
	u, err := s.repo.GetByResetTokenHash(ctx, tokenHash)
	if err != nil {
		return nil, err
	}
	return toAccount(u), nil
}

func (s *Service) UpdatePasswordClearReset(
	ctx context.Context,
	id int64,
	passwordHash string,
) error {
	return s.repo.UpdatePasswordClearReset(ctx, id, passwordHash)
}

func toAccount(u *User) *auth.Account {
	return &auth.Account{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Provider:     u.Provider,
		ProviderID:   u.ProviderID,
		Role:         string(u.Role),
		AvatarURL:    u.AvatarURL,
	}
}
