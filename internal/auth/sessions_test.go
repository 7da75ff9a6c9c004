package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/agromart/agromart/internal/platform/httpx"
)

func testSessionStore(t *testing.T) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionStore(client, "test_session", time.Hour), mr
}

func TestSessionIssueAndResolve(t *testing.T) {
	store, _ := testSessionStore(t)
	ctx := context.Background()

	token, err := store.Issue(ctx, 42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := store.Resolve(ctx, token)
	require.NoError(t, err)
	require.Equal(t, int64(42), userID)
}

func TestSessionResolveUnknownToken(t *testing.T) {
	store, _ := testSessionStore(t)

	_, err := store.Resolve(context.Background(), "not-a-token")
	require.ErrorIs(t, err, httpx.ErrUnauthorized)

	_, err = store.Resolve(context.Background(), "")
	require.ErrorIs(t, err, httpx.ErrUnauthorized)
}

func TestSessionRevoke(t *testing.T) {
	store, _ := testSessionStore(t)
	ctx := context.Background()

	token, err := store.Issue(ctx, 7)
	require.NoError(t, err)
	require.NoError(t, store.Revoke(ctx, token))

	_, err = store.Resolve(ctx, token)
	require.ErrorIs(t, err, httpx.ErrUnauthorized)
}

func TestSessionExpiry(t *testing.T) {
	store, mr := testSessionStore(t)
	ctx := context.Background()

	token, err := store.Issue(ctx, 9)
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)
	_, err = store.Resolve(ctx, token)
	require.ErrorIs(t, err, httpx.ErrUnauthorized)
}

func TestSessionResolveRefreshesTTL(t *testing.T) {
	store, mr := testSessionStore(t)
	ctx := context.Background()

	token, err := store.Issue(ctx, 9)
	require.NoError(t, err)

	mr.FastForward(50 * time.Minute)
	_, err = store.Resolve(ctx, token)
	require.NoError(t, err)

	mr.FastForward(50 * time.Minute)
	userID, err := store.Resolve(ctx, token)
	require.NoError(t, err)
	require.Equal(t, int64(9), userID, "TTL refreshed by the earlier resolve")
}
