package domain

import (
	"slices"
	"time"
)

// User models an account held by the credential store.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Permissions  []string  `json:"permissions"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PublicUser is the summary returned to clients after login.
type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

// Public strips everything but the identifying fields.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
	}
}

// Claims snapshots the authorization-relevant fields of u.
func (u *User) Claims(issuedAt, expiresAt time.Time) TokenClaims {
	return TokenClaims{
		UserID:      u.ID,
		Username:    u.Username,
		Role:        u.Role,
		Permissions: slices.Clone(u.Permissions),
		IssuedAt:    issuedAt,
		ExpiresAt:   expiresAt,
	}
}
