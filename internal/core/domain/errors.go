package domain

import "errors"

// Authentication errors. They stay distinguishable internally but share one
// public message at the HTTP boundary.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account inactive")
	ErrTooManyAttempts    = errors.New("too many login attempts")
)

// Authorization errors raised by the request middleware.
var (
	ErrMalformedHeader = errors.New("malformed authorization header")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

// Token codec errors.
var (
	ErrTokenMalformed    = errors.New("token malformed")
	ErrTokenIntegrity    = errors.New("token integrity check failed")
	ErrTokenMissingField = errors.New("token missing required field")
	ErrTokenExpired      = errors.New("token expired")
)

// User management and store errors.
var (
	ErrUserExists       = errors.New("user already exists")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidRole      = errors.New("invalid role")
	ErrEmptyPassword    = errors.New("password must not be empty")
	ErrStoreUnavailable = errors.New("store unavailable")
)
