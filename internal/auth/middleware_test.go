package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agromart/agromart/internal/shared"
)

func TestRequireUserRejectsMissingToken(t *testing.T) {
	store, _ := testSessionStore(t)

	var called bool
	handler := RequireUser(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.False(t, called)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireUserInstallsUserID(t *testing.T) {
	store, _ := testSessionStore(t)
	token, err := store.Issue(context.Background(), 42)
	require.NoError(t, err)

	var gotUser int64
	handler := RequireUser(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = shared.UserFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, int64(42), gotUser)
}
