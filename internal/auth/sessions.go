package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/agromart/agromart/internal/platform/httpx"
)

// SessionStore keeps bearer tokens in Redis. A token maps to the user ID and
// expires with the configured TTL; logout deletes it immediately.
type SessionStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewSessionStore constructs a SessionStore.
func NewSessionStore(client *redis.Client, prefix string, ttl time.Duration) *SessionStore {
	if prefix == "" {
		prefix = "agromart_session"
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &SessionStore{client: client, prefix: prefix, ttl: ttl}
}

// Issue creates a new session token for the user.
func (s *SessionStore) Issue(ctx context.Context, userID int64) (string, error) {
	token := uuid.NewString()
	if err := s.client.Set(ctx, s.key(token), strconv.FormatInt(userID, 10), s.ttl).Err(); err != nil {
		return "", fmt.Errorf("auth: issue session: %w", err)
	}
	return token, nil
}

// Resolve returns the user ID bound to token and refreshes the TTL.
func (s *SessionStore) Resolve(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, httpx.ErrUnauthorized
	}
	val, err := s.client.Get(ctx, s.key(token)).Result()
	if err == redis.Nil {
		return 0, httpx.ErrUnauthorized
	}
	if err != nil {
		return 0, fmt.Errorf("auth: resolve session: %w", err)
	}
	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil || userID <= 0 {
		return 0, httpx.ErrUnauthorized
	}
	_ = s.client.Expire(ctx, s.key(token), s.ttl).Err()
	return userID, nil
}

// Revoke deletes the session token.
func (s *SessionStore) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.client.Del(ctx, s.key(token)).Err()
}

func (s *SessionStore) key(token string) string {
	return s.prefix + ":" + token
}
