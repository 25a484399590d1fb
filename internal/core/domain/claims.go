package domain

import (
	"slices"
	"time"
)

// TokenClaims is the snapshot embedded in a token at issuance. It is not
// refreshed when the underlying user changes: a role update only shows up in
// tokens issued after it.
type TokenClaims struct {
	UserID      string
	Username    string
	Role        Role
	Permissions []string
	IssuedAt    time.Time
	// ExpiresAt is zero for tokens without expiry.
	ExpiresAt time.Time
}

// AuthContext is the request-scoped view derived from a decoded token.
type AuthContext struct {
	UserID      string
	Username    string
	Role        Role
	Permissions []string
	ExpiresAt   time.Time
}

// NewAuthContext builds a context from claims without consulting the store.
func NewAuthContext(c TokenClaims) AuthContext {
	return AuthContext{
		UserID:      c.UserID,
		Username:    c.Username,
		Role:        c.Role,
		Permissions: slices.Clone(c.Permissions),
		ExpiresAt:   c.ExpiresAt,
	}
}
