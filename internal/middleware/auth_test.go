// AngelaMos | 2026
// auth_test.go

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wemanage-app/backend/internal/core"
)

const testCookieName = "wm_session"

type fakeVerifier struct {
	tokens map[string]int64
	err    error
}

func (f *fakeVerifier) VerifyToken(_ context.Context, token string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	if id, ok := f.tokens[token]; ok {
		return id, nil
	}
	return 0, core.ErrTokenInvalid
}

type fakeSessions struct {
	sessions map[string]int64
	deleted  []string
}

func (f *fakeSessions) Get(_ context.Context, id string) (int64, error) {
	if userID, ok := f.sessions[id]; ok {
		return userID, nil
	}
	return 0, core.ErrNotFound
}

func (f *fakeSessions) Delete(_ context.Context, id string) error {
	delete(f.sessions, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeLoader struct {
	users map[int64]*Identity
}

func (f *fakeLoader) LoadIdentity(_ context.Context, id int64) (*Identity, error) {
	if identity, ok := f.users[id]; ok {
		return identity, nil
	}
	return nil, core.ErrNotFound
}

func newAuthFixture() (*fakeVerifier, *fakeSessions, *fakeLoader) {
	verifier := &fakeVerifier{tokens: map[string]int64{"good-token": 7}}
	sessions := &fakeSessions{sessions: map[string]int64{"good-session": 7}}
	loader := &fakeLoader{users: map[int64]*Identity{
		7: {UserID: 7, Email: "alice@example.com", Name: "Alice", Role: "USER"},
	}}
	return verifier, sessions, loader
}

func runAuthenticated(
	t *testing.T,
	verifier TokenVerifier,
	sessions SessionStore,
	loader IdentityLoader,
	mutate func(*http.Request),
) (*httptest.ResponseRecorder, *Identity) {
	t.Helper()

	var captured *Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetIdentity(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	handler := Authenticator(verifier, sessions, loader, testCookieName)(next)

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	mutate(req)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, captured
}

func TestAuthenticatorBearer(t *testing.T) {
	verifier, sessions, loader := newAuthFixture()

	rec, identity := runAuthenticated(t, verifier, sessions, loader,
		func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer good-token")
		})

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, identity)
	assert.Equal(t, int64(7), identity.UserID)
	assert.Equal(t, "alice@example.com", identity.Email)
}

func TestAuthenticatorMissingCredentials(t *testing.T) {
	verifier, sessions, loader := newAuthFixture()

	rec, identity := runAuthenticated(t, verifier, sessions, loader,
		func(r *http.Request) {})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, identity)
}

func TestAuthenticatorInvalidToken(t *testing.T) {
	verifier, sessions, loader := newAuthFixture()

	rec, _ := runAuthenticated(t, verifier, sessions, loader,
		func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer bad-token")
		})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticatorExpiredToken(t *testing.T) {
	verifier, sessions, loader := newAuthFixture()
	verifier.err = core.ErrTokenExpired

	rec, _ := runAuthenticated(t, verifier, sessions, loader,
		func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer good-token")
		})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "TOKEN_EXPIRED")
}

func TestAuthenticatorDeletedUser(t *testing.T) {
	verifier, sessions, loader := newAuthFixture()
	delete(loader.users, 7)

	// A structurally valid token for a user that no longer exists must
	// not authenticate.
	rec, identity := runAuthenticated(t, verifier, sessions, loader,
		func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer good-token")
		})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, identity)
}

func TestAuthenticatorSessionCookie(t *testing.T) {
	verifier, sessions, loader := newAuthFixture()

	rec, identity := runAuthenticated(t, verifier, sessions, loader,
		func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: testCookieName, Value: "good-session"})
		})

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, identity)
	assert.Equal(t, int64(7), identity.UserID)
}

func TestAuthenticatorUnknownSession(t *testing.T) {
	verifier, sessions, loader := newAuthFixture()

	rec, _ := runAuthenticated(t, verifier, sessions, loader,
		func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: testCookieName, Value: "stale"})
		})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// The dead cookie is cleared on the way out.
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, testCookieName, cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestAuthenticatorSessionForDeletedUser(t *testing.T) {
	verifier, sessions, loader := newAuthFixture()
	delete(loader.users, 7)

	rec, _ := runAuthenticated(t, verifier, sessions, loader,
		func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: testCookieName, Value: "good-session"})
		})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, sessions.deleted, "good-session")
}

func TestRequireAdmin(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireAdmin(next)

	tests := []struct {
		name     string
		identity *Identity
		want     int
	}{
		{"no identity", nil, http.StatusUnauthorized},
		{"regular user", &Identity{UserID: 1, Role: "USER"}, http.StatusForbidden},
		{"admin", &Identity{UserID: 2, Role: "ADMIN"}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
			if tt.identity != nil {
				req = req.WithContext(WithIdentity(req.Context(), tt.identity))
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc123", "abc123"},
		{"bearer abc123", "abc123"},
		{"Basic abc123", ""},
		{"Bearer", ""},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		assert.Equal(t, tt.want, ExtractToken(req), "header %q", tt.header)
	}
}

func TestIdentityHelpers(t *testing.T) {
	ctx := context.Background()

	assert.Nil(t, GetIdentity(ctx))
	assert.Zero(t, GetUserID(ctx))
	assert.False(t, IsAdmin(ctx))

	ctx = WithIdentity(ctx, &Identity{UserID: 9, Role: "ADMIN"})
	assert.Equal(t, int64(9), GetUserID(ctx))
	assert.True(t, IsAdmin(ctx))
}
