// AngelaMos | 2026
// service_test.go

package user

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wemanage-app/backend/internal/core"
)

type fakeRepo struct {
	nextID int64
	users  map[int64]*User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{nextID: 1, users: make(map[int64]*User)}
}

func (f *fakeRepo) Create(_ context.Context, u *User) error {
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return core.ErrDuplicateKey
		}
	}
	u.ID = f.nextID
	f.nextID++
	clone := *u
	f.users[u.ID] = &clone
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id int64) (*User, error) {
	if u, ok := f.users[id]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, core.ErrNotFound
}

func (f *fakeRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range f.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeRepo) GetByProvider(
	_ context.Context,
	provider, providerID string,
) (*User, error) {
	for _, u := range f.users {
		if u.Provider != nil && *u.Provider == provider &&
			u.ProviderID != nil && *u.ProviderID == providerID {
			clone := *u
			return &clone, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeRepo) LinkProvider(_ context.Context, u *User) error {
	stored, ok := f.users[u.ID]
	if !ok {
		return core.ErrNotFound
	}
	stored.Provider = u.Provider
	stored.ProviderID = u.ProviderID
	stored.Name = u.Name
	stored.AvatarURL = u.AvatarURL
	return nil
}

func (f *fakeRepo) UpdateRole(_ context.Context, id int64, role Role) error {
	u, ok := f.users[id]
	if !ok {
		return core.ErrNotFound
	}
	u.Role = role
	return nil
}

func (f *fakeRepo) SetResetToken(
	_ context.Context,
	id int64,
	tokenHash string,
	expires time.Time,
) error {
	u, ok := f.users[id]
	if !ok {
		return core.ErrNotFound
	}
	u.ResetTokenHash = &tokenHash
	u.ResetTokenExpires = &expires
	return nil
}

func (f *fakeRepo) ClearResetToken(_ context.Context, id int64) error {
	if u, ok := f.users[id]; ok {
		u.ResetTokenHash = nil
		u.ResetTokenExpires = nil
	}
	return nil
}

func (f *fakeRepo) GetByResetTokenHash(
	_ context.Context,
	tokenHash string,
) (*User, error) {
	for _, u := range f.users {
		if u.ResetTokenHash != nil && *u.ResetTokenHash == tokenHash &&
			u.ResetTokenExpires != nil && u.ResetTokenExpires.After(time.Now()) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeRepo) UpdatePasswordClearReset(
	_ context.Context,
	id int64,
	passwordHash string,
) error {
	u, ok := f.users[id]
	if !ok {
		return core.ErrNotFound
	}
	u.PasswordHash = &passwordHash
	u.ResetTokenHash = nil
	u.ResetTokenExpires = nil
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.users[id]; !ok {
		return core.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeRepo) List(_ context.Context, limit, offset int) ([]User, error) {
	out := make([]User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRepo) Count(_ context.Context) (int, error) {
	return len(f.users), nil
}

func seedUser(t *testing.T, repo *fakeRepo, email string, role Role) *User {
	t.Helper()

	u := &User{Email: email, Name: "User " + email, Role: role}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestUpdateUserRole(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	admin := seedUser(t, repo, "admin@example.com", RoleAdmin)
	member := seedUser(t, repo, "member@example.com", RoleUser)

	require.NoError(t, svc.UpdateUserRole(ctx, admin.ID, member.ID, "ADMIN"))
	assert.Equal(t, RoleAdmin, repo.users[member.ID].Role)
}

func TestUpdateUserRoleSelfProtection(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	admin := seedUser(t, repo, "admin@example.com", RoleAdmin)

	err := svc.UpdateUserRole(ctx, admin.ID, admin.ID, "USER")
	assert.ErrorIs(t, err, core.ErrSelfAction)
	assert.Equal(t, RoleAdmin, repo.users[admin.ID].Role)
}

func TestUpdateUserRoleInvalidRole(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	admin := seedUser(t, repo, "admin@example.com", RoleAdmin)
	member := seedUser(t, repo, "member@example.com", RoleUser)

	err := svc.UpdateUserRole(ctx, admin.ID, member.ID, "SUPERUSER")
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestUpdateUserRoleUnknownTarget(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	admin := seedUser(t, repo, "admin@example.com", RoleAdmin)

	err := svc.UpdateUserRole(context.Background(), admin.ID, 999, "ADMIN")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestDeleteUser(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	admin := seedUser(t, repo, "admin@example.com", RoleAdmin)
	member := seedUser(t, repo, "member@example.com", RoleUser)

	require.NoError(t, svc.DeleteUser(ctx, admin.ID, member.ID))
	_, ok := repo.users[member.ID]
	assert.False(t, ok)
}

func TestDeleteUserSelfProtection(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	admin := seedUser(t, repo, "admin@example.com", RoleAdmin)

	err := svc.DeleteUser(context.Background(), admin.ID, admin.ID)
	assert.ErrorIs(t, err, core.ErrSelfAction)
	_, ok := repo.users[admin.ID]
	assert.True(t, ok)
}

func TestListUsersPaginated(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	seedUser(t, repo, "a@example.com", RoleUser)
	seedUser(t, repo, "b@example.com", RoleUser)
	seedUser(t, repo, "c@example.com", RoleAdmin)

	first, total, err := svc.ListUsers(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, first, 2)

	second, total, err := svc.ListUsers(ctx, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, second, 1)

	// Pages never overlap.
	assert.NotEqual(t, first[0].ID, second[0].ID)
	assert.NotEqual(t, first[1].ID, second[0].ID)
}

func TestLoadIdentity(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	avatar := "https://cdn.example/a.png"
	u := &User{
		Email:     "alice@example.com",
		Name:      "Alice",
		Role:      RoleUser,
		AvatarURL: &avatar,
	}
	require.NoError(t, repo.Create(ctx, u))

	identity, err := svc.LoadIdentity(ctx, u.ID)
	require.NoError(t, err)

	assert.Equal(t, u.ID, identity.UserID)
	assert.Equal(t, "alice@example.com", identity.Email)
	assert.Equal(t, "USER", identity.Role)
	assert.Equal(t, avatar, identity.AvatarURL)

	_, err = svc.LoadIdentity(ctx, 999)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("SUPERUSER").Valid())
	assert.False(t, Role("").Valid())
}
