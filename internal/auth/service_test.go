// AngelaMos | 2026
// service_test.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wemanage-app/backend/internal/core"
)

type fakeUsers struct {
	nextID   int64
	accounts map[int64]*Account
	resets   map[int64]resetEntry
}

type resetEntry struct {
	hash    string
	expires time.Time
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		nextID:   1,
		accounts: make(map[int64]*Account),
		resets:   make(map[int64]resetEntry),
	}
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*Account, error) {
	if a, ok := f.accounts[id]; ok {
		clone := *a
		return &clone, nil
	}
	return nil, core.ErrNotFound
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*Account, error) {
	for _, a := range f.accounts {
		if a.Email == email {
			clone := *a
			return &clone, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeUsers) GetByProvider(
	_ context.Context,
	provider, providerID string,
) (*Account, error) {
	for _, a := range f.accounts {
		if a.Provider != nil && *a.Provider == provider &&
			a.ProviderID != nil && *a.ProviderID == providerID {
			clone := *a
			return &clone, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeUsers) CreateLocal(
	ctx context.Context,
	email, passwordHash, name, avatarURL string,
) (*Account, error) {
	if _, err := f.GetByEmail(ctx, email); err == nil {
		return nil, core.ErrDuplicateKey
	}

	a := &Account{
		ID:           f.nextID,
		Email:        email,
		Name:         name,
		PasswordHash: &passwordHash,
		Role:         "USER",
		AvatarURL:    &avatarURL,
	}
	f.accounts[a.ID] = a
	f.nextID++

	clone := *a
	return &clone, nil
}

func (f *fakeUsers) CreateFederated(
	ctx context.Context,
	email, name, provider, providerID, avatarURL string,
) (*Account, error) {
	if _, err := f.GetByEmail(ctx, email); err == nil {
		return nil, core.ErrDuplicateKey
	}
	if _, err := f.GetByProvider(ctx, provider, providerID); err == nil {
		return nil, core.ErrDuplicateKey
	}

	a := &Account{
		ID:         f.nextID,
		Email:      email,
		Name:       name,
		Provider:   &provider,
		ProviderID: &providerID,
		Role:       "USER",
		AvatarURL:  &avatarURL,
	}
	f.accounts[a.ID] = a
	f.nextID++

	clone := *a
	return &clone, nil
}

func (f *fakeUsers) LinkProvider(
	ctx context.Context,
	id int64,
	provider, providerID, name, avatarURL string,
) (*Account, error) {
	if existing, err := f.GetByProvider(ctx, provider, providerID); err == nil &&
		existing.ID != id {
		return nil, core.ErrDuplicateKey
	}

	a, ok := f.accounts[id]
	if !ok {
		return nil, core.ErrNotFound
	}

	a.Provider = &provider
	a.ProviderID = &providerID
	a.Name = name
	a.AvatarURL = &avatarURL

	clone := *a
	return &clone, nil
}

func (f *fakeUsers) SetResetToken(
	_ context.Context,
	id int64,
	tokenHash string,
	expires time.Time,
) error {
	if _, ok := f.accounts[id]; !ok {
		return core.ErrNotFound
	}
	f.resets[id] = resetEntry{hash: tokenHash, expires: expires}
	return nil
}

func (f *fakeUsers) ClearResetToken(_ context.Context, id int64) error {
	delete(f.resets, id)
	return nil
}

func (f *fakeUsers) GetByResetToken(
	_ context.Context,
	tokenHash string,
) (*Account, error) {
	for id, entry := range f.resets {
		if entry.hash == tokenHash && entry.expires.After(time.Now()) {
			clone := *f.accounts[id]
			return &clone, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeUsers) UpdatePasswordClearReset(
	_ context.Context,
	id int64,
	passwordHash string,
) error {
	a, ok := f.accounts[id]
	if !ok {
		return core.ErrNotFound
	}
	a.PasswordHash = &passwordHash
	delete(f.resets, id)
	return nil
}

type sentMail struct {
	to      string
	subject string
	body    string
}

type fakeMailer struct {
	sent    []sentMail
	failErr error
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	if m.failErr != nil {
		return m.failErr
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

const testFrontendURL = "https://app.example.com"

func newTestService(t *testing.T) (*Service, *fakeUsers, *fakeMailer) {
	t.Helper()

	users := newFakeUsers()
	mailer := &fakeMailer{}
	tokens := newTestTokenManager(t, time.Hour)

	return NewService(users, tokens, mailer, testFrontendURL), users, mailer
}

func registerUser(t *testing.T, svc *Service, email, password string) *AuthResponse {
	t.Helper()

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Test User",
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)
	return resp
}

func TestRegister(t *testing.T) {
	svc, users, _ := newTestService(t)
	ctx := context.Background()

	resp := registerUser(t, svc, "alice@example.com", "password1")

	assert.Equal(t, "alice@example.com", resp.Email)
	assert.Equal(t, "USER", resp.Role)
	assert.NotEmpty(t, resp.Token)
	require.NotNil(t, resp.AvatarURL)
	assert.Contains(t, *resp.AvatarURL, "dicebear.com")

	// Password is stored hashed, never plaintext.
	stored := users.accounts[resp.ID]
	require.NotNil(t, stored.PasswordHash)
	assert.NotEqual(t, "password1", *stored.PasswordHash)

	_, err := svc.Register(ctx, RegisterRequest{
		Name:     "Other",
		Email:    "alice@example.com",
		Password: "password2",
	})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestLogin(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	registerUser(t, svc, "alice@example.com", "password1")

	resp, err := svc.Login(ctx, LoginRequest{
		Email:    "alice@example.com",
		Password: "password1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)

	_, err = svc.Login(ctx, LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Unknown email fails with the same error as a bad password.
	_, err = svc.Login(ctx, LoginRequest{
		Email:    "nobody@example.com",
		Password: "password1",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginFederatedOnlyAccount(t *testing.T) {
	svc, users, _ := newTestService(t)
	ctx := context.Background()

	_, err := users.CreateFederated(
		ctx,
		"bob@example.com",
		"Bob",
		ProviderGoogle,
		"google-123",
		"https://lh3.example/bob.png",
	)
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{
		Email:    "bob@example.com",
		Password: "any-password",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func extractResetToken(t *testing.T, body string) string {
	t.Helper()

	marker := testFrontendURL + "/reset-password/"
	idx := strings.Index(body, marker)
	require.GreaterOrEqual(t, idx, 0, "reset link missing from body: %q", body)

	rest := body[idx+len(marker):]
	if end := strings.IndexAny(rest, "\n "); end >= 0 {
		rest = rest[:end]
	}
	return rest
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	svc, users, mailer := newTestService(t)

	err := svc.ForgotPassword(context.Background(), "nobody@example.com")
	require.NoError(t, err)

	assert.Empty(t, mailer.sent)
	assert.Empty(t, users.resets)
}

func TestForgotPasswordIssuesToken(t *testing.T) {
	svc, users, mailer := newTestService(t)
	ctx := context.Background()

	resp := registerUser(t, svc, "alice@example.com", "password1")

	require.NoError(t, svc.ForgotPassword(ctx, "alice@example.com"))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "alice@example.com", mailer.sent[0].to)

	token := extractResetToken(t, mailer.sent[0].body)
	assert.NotEmpty(t, token)

	// Only the hash is stored; the plaintext token never touches the
	// data layer.
	entry, ok := users.resets[resp.ID]
	require.True(t, ok)
	assert.Equal(t, core.HashToken(token), entry.hash)
	assert.NotContains(t, entry.hash, token)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), entry.expires, 5*time.Second)
}

func TestForgotPasswordMailFailureRevertsToken(t *testing.T) {
	svc, users, mailer := newTestService(t)
	ctx := context.Background()

	resp := registerUser(t, svc, "alice@example.com", "password1")
	mailer.failErr = fmt.Errorf("smtp unreachable")

	err := svc.ForgotPassword(ctx, "alice@example.com")
	require.Error(t, err)

	// A token the user was never told about must not stay live.
	_, ok := users.resets[resp.ID]
	assert.False(t, ok)
}

func TestResetPassword(t *testing.T) {
	svc, _, mailer := newTestService(t)
	ctx := context.Background()

	registerUser(t, svc, "alice@example.com", "old-password")
	require.NoError(t, svc.ForgotPassword(ctx, "alice@example.com"))
	token := extractResetToken(t, mailer.sent[0].body)

	require.NoError(t, svc.ResetPassword(ctx, token, "new-password"))

	_, err := svc.Login(ctx, LoginRequest{
		Email:    "alice@example.com",
		Password: "new-password",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{
		Email:    "alice@example.com",
		Password: "old-password",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// The token is single-use.
	err = svc.ResetPassword(ctx, token, "another-password")
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestResetPasswordExpiredToken(t *testing.T) {
	svc, users, mailer := newTestService(t)
	ctx := context.Background()

	resp := registerUser(t, svc, "alice@example.com", "password1")
	require.NoError(t, svc.ForgotPassword(ctx, "alice@example.com"))
	token := extractResetToken(t, mailer.sent[0].body)

	entry := users.resets[resp.ID]
	entry.expires = time.Now().Add(-time.Minute)
	users.resets[resp.ID] = entry

	err := svc.ResetPassword(ctx, token, "new-password")
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestResetPasswordBogusToken(t *testing.T) {
	svc, _, _ := newTestService(t)

	err := svc.ResetPassword(context.Background(), "deadbeef", "new-password")
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func googleProfile() *GoogleProfile {
	return &GoogleProfile{
		ProviderUserID: "google-123",
		Email:          "alice@example.com",
		Name:           "Alice G",
		AvatarURL:      "https://lh3.example/alice.png",
	}
}

func TestReconcileCreatesAccount(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	account, err := svc.ReconcileGoogleProfile(ctx, googleProfile())
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", account.Email)
	assert.Equal(t, "Alice G", account.Name)
	require.NotNil(t, account.Provider)
	assert.Equal(t, ProviderGoogle, *account.Provider)
	require.NotNil(t, account.AvatarURL)
	assert.Equal(t, "https://lh3.example/alice.png", *account.AvatarURL)
	assert.Nil(t, account.PasswordHash)
}

func TestReconcileIsIdempotent(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.ReconcileGoogleProfile(ctx, googleProfile())
	require.NoError(t, err)

	second, err := svc.ReconcileGoogleProfile(ctx, googleProfile())
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
}

func TestReconcileMergesIntoLocalAccount(t *testing.T) {
	svc, users, _ := newTestService(t)
	ctx := context.Background()

	local := registerUser(t, svc, "alice@example.com", "password1")

	account, err := svc.ReconcileGoogleProfile(ctx, googleProfile())
	require.NoError(t, err)

	// Same account, now carrying the provider linkage.
	assert.Equal(t, local.ID, account.ID)
	require.NotNil(t, account.Provider)
	assert.Equal(t, ProviderGoogle, *account.Provider)

	// The user-chosen name survives the merge.
	assert.Equal(t, "Test User", account.Name)

	// Password login still works after the merge.
	_, err = svc.Login(ctx, LoginRequest{
		Email:    "alice@example.com",
		Password: "password1",
	})
	require.NoError(t, err)

	assert.Len(t, users.accounts, 1)
}

func TestReconcileBackfillsEmptyName(t *testing.T) {
	svc, users, _ := newTestService(t)
	ctx := context.Background()

	created, err := users.CreateLocal(ctx, "alice@example.com", "hash", "", "")
	require.NoError(t, err)

	account, err := svc.ReconcileGoogleProfile(ctx, googleProfile())
	require.NoError(t, err)

	assert.Equal(t, created.ID, account.ID)
	assert.Equal(t, "Alice G", account.Name)
	require.NotNil(t, account.AvatarURL)
	assert.Equal(t, "https://lh3.example/alice.png", *account.AvatarURL)
}

func TestReconcileFallsBackToEmailLocalPart(t *testing.T) {
	svc, users, _ := newTestService(t)
	ctx := context.Background()

	_, err := users.CreateLocal(ctx, "alice@example.com", "hash", "", "")
	require.NoError(t, err)

	profile := googleProfile()
	profile.Name = ""
	profile.AvatarURL = ""

	account, err := svc.ReconcileGoogleProfile(ctx, profile)
	require.NoError(t, err)

	assert.Equal(t, "alice", account.Name)
	require.NotNil(t, account.AvatarURL)
	assert.Contains(t, *account.AvatarURL, "dicebear.com")
}

func TestReconcileMissingEmail(t *testing.T) {
	svc, _, _ := newTestService(t)

	profile := googleProfile()
	profile.Email = ""

	_, err := svc.ReconcileGoogleProfile(context.Background(), profile)
	assert.ErrorIs(t, err, ErrMissingProviderEmail)
}

func TestReconcileDistinctProvidersDistinctAccounts(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.ReconcileGoogleProfile(ctx, googleProfile())
	require.NoError(t, err)

	other := &GoogleProfile{
		ProviderUserID: "google-456",
		Email:          "carol@example.com",
		Name:           "Carol",
	}
	second, err := svc.ReconcileGoogleProfile(ctx, other)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestIssueTokenVerifiable(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	account, err := svc.ReconcileGoogleProfile(ctx, googleProfile())
	require.NoError(t, err)

	token, err := svc.IssueToken(account)
	require.NoError(t, err)

	userID, err := svc.tokens.VerifyToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, account.ID, userID)
}

func TestLoginErrorIsUniform(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	registerUser(t, svc, "alice@example.com", "password1")

	_, errUnknown := svc.Login(ctx, LoginRequest{
		Email:    "nobody@example.com",
		Password: "x",
	})
	_, errWrong := svc.Login(ctx, LoginRequest{
		Email:    "alice@example.com",
		Password: "x",
	})

	assert.True(t, errors.Is(errUnknown, ErrInvalidCredentials))
	assert.True(t, errors.Is(errWrong, ErrInvalidCredentials))
	assert.Equal(t, errUnknown.Error(), errWrong.Error())
}
