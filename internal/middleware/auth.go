// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/wemanage-app/backend/internal/core"
)

const IdentityKey contextKey = "identity"

const RoleAdmin = "ADMIN"

// Identity is the per-request resolved user. Both resolution paths
// (bearer token and session cookie) produce the same shape; handlers
// never learn which one ran. It is a snapshot read from the database on
// this request, not a claim carried over from token issuance time.
type Identity struct {
	UserID    int64
	Email     string
	Name      string
	Role      string
	AvatarURL string
}

func (i *Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (int64, error)
}

type SessionStore interface {
	Get(ctx context.Context, sessionID string) (int64, error)
	Delete(ctx context.Context, sessionID string) error
}

type IdentityLoader interface {
	LoadIdentity(ctx context.Context, userID int64) (*Identity, error)
}

// Authenticator resolves the request identity, trying the bearer header
// first and falling back to the session cookie set during federated
// login. The user record is re-read every request: a token or session
// for a deleted user resolves to unauthorized, never to a stale
// identity.
func Authenticator(
	verifier TokenVerifier,
	sessions SessionStore,
	users IdentityLoader,
	sessionCookie string,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := ExtractToken(r); token != "" {
				authenticateBearer(w, r, next, verifier, users, token)
				return
			}

			cookie, err := r.Cookie(sessionCookie)
			if err != nil || cookie.Value == "" {
				core.Unauthorized(w, "missing authorization token")
				return
			}

			authenticateSession(w, r, next, sessions, users, sessionCookie, cookie.Value)
		})
	}
}

func authenticateBearer(
	w http.ResponseWriter,
	r *http.Request,
	next http.Handler,
	verifier TokenVerifier,
	users IdentityLoader,
	token string,
) {
	userID, err := verifier.VerifyToken(r.Context(), token)
	if err != nil {
		handleAuthError(w, err)
		return
	}

	identity, err := users.LoadIdentity(r.Context(), userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.Unauthorized(w, "user not found")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
}

func authenticateSession(
	w http.ResponseWriter,
	r *http.Request,
	next http.Handler,
	sessions SessionStore,
	users IdentityLoader,
	cookieName, sessionID string,
) {
	userID, err := sessions.Get(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			clearSessionCookie(w, cookieName)
			core.Unauthorized(w, "session expired")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	identity, err := users.LoadIdentity(r.Context(), userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			// The user behind the session is gone; the session is
			// invalid, not a partial identity.
			//nolint:errcheck // best-effort cleanup of a dead session
			_ = sessions.Delete(r.Context(), sessionID)
			clearSessionCookie(w, cookieName)
			core.Unauthorized(w, "user not found")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
}

// RequireAdmin gates administrative routes. It must run after
// Authenticator; an unresolved identity is unauthorized, a resolved
// non-admin identity is forbidden.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := GetIdentity(r.Context())

		if identity == nil {
			core.Unauthorized(w, "authentication required")
			return
		}

		if !identity.IsAdmin() {
			core.Forbidden(w, "admin access required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

func handleAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrTokenExpired):
		core.JSONError(w, core.TokenExpiredError())
	case errors.Is(err, core.ErrTokenInvalid):
		core.JSONError(w, core.TokenInvalidError())
	default:
		core.JSONError(w, core.TokenInvalidError())
	}
}

func clearSessionCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, identity)
}

func GetIdentity(ctx context.Context) *Identity {
	if identity, ok := ctx.Value(IdentityKey).(*Identity); ok {
		return identity
	}
	return nil
}

func GetUserID(ctx context.Context) int64 {
	if identity := GetIdentity(ctx); identity != nil {
		return identity.UserID
	}
	return 0
}

func IsAdmin(ctx context.Context) bool {
	identity := GetIdentity(ctx)
	return identity != nil && identity.IsAdmin()
}
