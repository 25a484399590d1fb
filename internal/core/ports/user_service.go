package ports

import (
	"context"

	"github.com/99minutos/access-control/internal/core/domain"
)

// CreateUserInput carries the fields accepted when creating an account.
// An empty Role falls back to domain.DefaultRole.
type CreateUserInput struct {
	Username string
	Email    string
	Password string
	Role     domain.Role
}

// UpdateUserInput is a partial update. Permissions overrides the role
// defaults and is only accepted together with Role.
type UpdateUserInput struct {
	Email       *string
	Role        *domain.Role
	Permissions []string
	IsActive    *bool
}

// UserService manages user accounts.
type UserService interface {
	CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, id string, input UpdateUserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) error
	ListUsers(ctx context.Context, filter UserFilter) ([]*domain.User, error)
}
