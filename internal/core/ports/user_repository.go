package ports

import (
	"context"
	"time"

	"github.com/99minutos/access-control/internal/core/domain"
)

// UserUpdate carries the mutable fields of a user. Nil fields are left untouched.
type UserUpdate struct {
	Email       *string
	Role        *domain.Role
	Permissions []string
	IsActive    *bool
	UpdatedAt   time.Time
}

// UserFilter narrows FindAll. Zero values mean "no filter".
type UserFilter struct {
	ActiveOnly bool
	Role       domain.Role
}

// UserRepository is the credential store. Missing records surface as
// domain.ErrUserNotFound and driver failures wrap domain.ErrStoreUnavailable.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (string, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, id string, update UserUpdate) error
	Delete(ctx context.Context, id string) error
	FindAll(ctx context.Context, filter UserFilter) ([]*domain.User, error)
}
