package shared

import "context"

type userContextKey struct{}

// ContextWithUser stores the authenticated user ID in the context.
func ContextWithUser(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userContextKey{}, userID)
}

// UserFromContext extracts the authenticated user ID, 0 when absent.
func UserFromContext(ctx context.Context) int64 {
	id, _ := ctx.Value(userContextKey{}).(int64)
	return id
}
