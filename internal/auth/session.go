// AngelaMos | 2026
// session.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/wemanage-app/backend/internal/core"
)

const sessionKeyPrefix = "session:"

// SessionStore keeps the short-lived cookie sessions used during the
// federated-login handshake. A session holds nothing but the user id;
// the user record itself is re-read on every request.
type SessionStore struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		redis: client,
		ttl:   ttl,
	}
}

func (s *SessionStore) Create(
	ctx context.Context,
	userID int64,
) (string, error) {
	sessionID := uuid.New().String()
	key := sessionKeyPrefix + sessionID

	err := s.redis.Set(ctx, key, strconv.FormatInt(userID, 10), s.ttl).Err()
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}

	return sessionID, nil
}

func (s *SessionStore) Get(
	ctx context.Context,
	sessionID string,
) (int64, error) {
	key := sessionKeyPrefix + sessionID

	value, err := s.redis.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("get session: %w", core.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("get session: %w", err)
	}

	userID, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("get session: corrupt value: %w", core.ErrNotFound)
	}

	return userID, nil
}

func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	key := sessionKeyPrefix + sessionID

	if err := s.redis.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}
