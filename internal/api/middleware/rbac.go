package middleware

import (
	"fmt"

	"github.com/99minutos/access-control/internal/core/domain"
)

// RequireRole fails with ErrForbidden unless ac's role is at least required.
func (a *Authorizer) RequireRole(ac domain.AuthContext, required domain.Role) error {
	if !domain.HasRole(ac.Role, required) {
		return fmt.Errorf("%w: requires role %s, have %s", domain.ErrForbidden, required, ac.Role)
	}
	return nil
}

// RequirePermission fails with ErrForbidden unless ac carries permission.
func (a *Authorizer) RequirePermission(ac domain.AuthContext, permission string) error {
	if !domain.HasPermission(ac.Permissions, permission) {
		return fmt.Errorf("%w: missing permission %s", domain.ErrForbidden, permission)
	}
	return nil
}
