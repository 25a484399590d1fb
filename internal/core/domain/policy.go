package domain

import (
	"fmt"
	"slices"
)

// Role is the stable wire and storage identifier of a user's role.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	RoleGuest Role = "guest"
)

// DefaultRole is assigned when a user is created without an explicit role.
const DefaultRole = RoleUser

// Permission strings have the shape "<action>:<resource>".
const (
	PermReadUsers   = "read:users"
	PermWriteUsers  = "write:users"
	PermDeleteUsers = "delete:users"
	PermReadData    = "read:data"
	PermWriteData   = "write:data"
	PermDeleteData  = "delete:data"
)

var roleLevels = map[Role]int{
	RoleAdmin: 3,
	RoleUser:  2,
	RoleGuest: 1,
}

var rolePermissions = map[Role][]string{
	RoleAdmin: {PermReadUsers, PermWriteUsers, PermDeleteUsers, PermReadData, PermWriteData, PermDeleteData},
	RoleUser:  {PermReadData, PermWriteData},
	RoleGuest: {PermReadData},
}

// ParseRole converts a wire value into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return r, nil
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleLevels[r]
	return ok
}

// Level returns the ordinal of r in the hierarchy, or 0 for unknown roles.
func (r Role) Level() int {
	return roleLevels[r]
}

// PermissionsFor returns a fresh copy of the default grants for role.
func PermissionsFor(role Role) []string {
	return slices.Clone(rolePermissions[role])
}

// HasRole reports whether actual sits at or above required in the hierarchy.
// Unknown roles never satisfy and are never satisfied.
func HasRole(actual, required Role) bool {
	if !actual.Valid() || !required.Valid() {
		return false
	}
	return actual.Level() >= required.Level()
}

// HasPermission is an exact membership test; permissions are not hierarchical.
func HasPermission(granted []string, required string) bool {
	return slices.Contains(granted, required)
}
