package ports

import (
	"context"
	"time"

	"github.com/99minutos/access-control/internal/core/domain"
)

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      domain.PublicUser
}

// AuthService verifies credentials and issues tokens.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	HasRole(actual, required domain.Role) bool
	HasPermission(granted []string, required string) bool
}

// TokenCodec turns claims into an opaque, tamper-evident string and back.
type TokenCodec interface {
	Encode(claims domain.TokenClaims) (string, error)
	Decode(token string) (domain.TokenClaims, error)
}

// PasswordHasher is a one-way, salted password transform.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// LoginThrottle limits repeated failed logins per username.
type LoginThrottle interface {
	Allow(ctx context.Context, username string) (bool, error)
	RecordFailure(ctx context.Context, username string) error
	Reset(ctx context.Context, username string) error
}
