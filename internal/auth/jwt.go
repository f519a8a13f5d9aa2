// AngelaMos | 2026
// jwt.go

package auth

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/wemanage-app/backend/internal/config"
	"github.com/wemanage-app/backend/internal/core"
)

// TokenManager issues and verifies the stateless bearer tokens. Tokens
// are HS256-signed with the server secret and carry only the user id;
// there is no revocation store, expiry is the sole termination.
type TokenManager struct {
	key    jwk.Key
	config config.JWTConfig
}

func NewTokenManager(cfg config.JWTConfig) (*TokenManager, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("jwt: signing secret is not configured")
	}

	key, err := jwk.Import([]byte(cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("import signing key: %w", err)
	}

	if setErr := key.Set(jwk.AlgorithmKey, jwa.HS256()); setErr != nil {
		return nil, fmt.Errorf("set algorithm: %w", setErr)
	}

	return &TokenManager{
		key:    key,
		config: cfg,
	}, nil
}

func (m *TokenManager) Issue(userID int64) (string, error) {
	now := time.Now()

	token, err := jwt.NewBuilder().
		Issuer(m.config.Issuer).
		Subject(strconv.FormatInt(userID, 10)).
		IssuedAt(now).
		Expiration(now.Add(m.config.Expire)).
		NotBefore(now).
		Build()
	if err != nil {
		return "", fmt.Errorf("build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), m.key))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return string(signed), nil
}

// VerifyToken validates signature and expiry and returns the embedded
// user id. Failures map onto core.ErrTokenExpired, core.ErrTokenInvalid
// (bad signature) or core.ErrTokenMalformed; nothing from an unverified
// token is ever returned.
func (m *TokenManager) VerifyToken(
	ctx context.Context,
	tokenString string,
) (int64, error) {
	token, err := jwt.Parse(
		[]byte(tokenString),
		jwt.WithKey(jwa.HS256(), m.key),
		jwt.WithValidate(true),
		jwt.WithIssuer(m.config.Issuer),
	)
	if err != nil {
		return 0, fmt.Errorf("verify token: %w", classifyParseError(err))
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return 0, fmt.Errorf(
			"verify token: missing subject: %w",
			core.ErrTokenMalformed,
		)
	}

	userID, err := strconv.ParseInt(subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf(
			"verify token: non-numeric subject: %w",
			core.ErrTokenMalformed,
		)
	}

	return userID, nil
}

func classifyParseError(err error) error {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "exp") &&
		strings.Contains(errStr, "not satisfied"):
		return core.ErrTokenExpired
	case strings.Contains(errStr, "verify"):
		return core.ErrTokenInvalid
	default:
		return core.ErrTokenMalformed
	}
}
