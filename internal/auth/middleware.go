package auth

import (
	"net/http"
	"strings"

	"github.com/agromart/agromart/internal/platform/httpx"
	"github.com/agromart/agromart/internal/shared"
)

// RequireUser resolves the bearer token and installs the user ID into the
// request context. Requests without a valid session get 401.
func RequireUser(sessions *SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			userID, err := sessions.Resolve(r.Context(), token)
			if err != nil {
				httpx.RespondError(w, err)
				return
			}
			ctx := shared.ContextWithUser(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return ""
}
