// Package rbac implements the role/permission model: the permission store
// schema, the authorization resolver and the access gate.
package rbac

import (
	"time"

	"github.com/google/uuid"
)

// Role names returned by the resolver for the two degraded states. These are
// sentinel values rendered directly by clients, not errors.
const (
	// RoleNameUnassigned is returned when the user exists but has no role.
	RoleNameUnassigned = "Sin rol asignado"
	// RoleNameMissing is returned when the user's role reference dangles.
	RoleNameMissing = "Rol no encontrado"
)

// Role represents a named bundle of permissions assignable to users.
type Role struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Permission represents an atomic capability gating a page or an action.
type Permission struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

// Link ties a permission to a role. Pairs are unique; assigning an existing
// pair is a no-op.
type Link struct {
	RoleID       uuid.UUID `json:"roleId"`
	PermissionID uuid.UUID `json:"permissionId"`
}

// RoleDetail is a role together with its resolved permissions.
type RoleDetail struct {
	Role
	Permissions []Permission `json:"permissions"`
}

// Resolution is the resolver output consumed by gates and the client
// permission cache: the effective role name and flat permission-name set.
type Resolution struct {
	RoleName    string   `json:"roleName"`
	Permissions []string `json:"permissions"`
}

// Has reports whether the resolution grants the named permission.
func (r Resolution) Has(permission string) bool {
	for _, p := range r.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}
