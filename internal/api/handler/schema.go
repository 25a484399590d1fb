package handler

import (
	"time"

	"github.com/99minutos/access-control/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
	User      domain.PublicUser `json:"user"`
}

type userEnvelope struct {
	User domain.PublicUser `json:"user"`
}

type createUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role"     validate:"omitempty,oneof=admin user guest"`
}

// updateUserRequest is a partial update; omitted fields are left untouched.
type updateUserRequest struct {
	Email       *string  `json:"email"       validate:"omitempty,email"`
	Role        *string  `json:"role"        validate:"omitempty,oneof=admin user guest"`
	Permissions []string `json:"permissions" validate:"omitempty,dive,required"`
	IsActive    *bool    `json:"is_active"`
}

type userListResponse struct {
	Users []*domain.User `json:"users"`
	Count int            `json:"count"`
}

type profileResponse struct {
	User        *domain.User `json:"user"`
	Permissions []string     `json:"token_permissions"`
	ExpiresAt   *time.Time   `json:"token_expires_at,omitempty"`
}

type dataResponse struct {
	Items  []string `json:"items"`
	UserID string   `json:"user_id"`
}
