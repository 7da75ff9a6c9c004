package shared

import (
	"errors"

	"github.com/agromart/agromart/internal/platform/httpx"
)

// UserSafeMessage returns a message safe to show to API clients. Wrapped
// sentinel errors keep their text; anything unexpected is replaced with a
// generic message so internals never leak.
func UserSafeMessage(err error) string {
	if err == nil {
		return ""
	}
	for _, sentinel := range []error{
		httpx.ErrNotFound,
		httpx.ErrDuplicate,
		httpx.ErrValidation,
		httpx.ErrBusinessRule,
		httpx.ErrForbidden,
		httpx.ErrUnauthorized,
		ErrIdempotencyConflict,
	} {
		if errors.Is(err, sentinel) {
			return err.Error()
		}
	}
	return "An unexpected error occurred. Please try again."
}
