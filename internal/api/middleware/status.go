package middleware

import (
	"errors"
	"net/http"

	"github.com/99minutos/access-control/internal/core/domain"
)

// Public message shared by every credential failure, so a client cannot tell
// an unknown user from a wrong password.
const msgAuthFailed = "authentication failed"

// Resolve maps a known error kind to its HTTP status and public message.
// ok is false for errors outside the table; callers pick their own fallback.
func Resolve(err error) (status int, msg string, ok bool) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrAccountInactive):
		return http.StatusUnauthorized, msgAuthFailed, true
	case errors.Is(err, domain.ErrTooManyAttempts):
		return http.StatusTooManyRequests, "too many login attempts", true
	case errors.Is(err, domain.ErrMalformedHeader):
		return http.StatusUnauthorized, "invalid authorization header", true
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, "invalid or expired token", true
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, err.Error(), true
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "user already exists", true
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidRole),
		errors.Is(err, domain.ErrEmptyPassword):
		return http.StatusBadRequest, err.Error(), true
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "service unavailable", true
	}
	return 0, "", false
}
