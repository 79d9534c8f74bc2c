// Package users manages laboratory user accounts. Accounts are created and
// removed by identity-provider lifecycle events; only the role assignment is
// mutated through the access-management API.
package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/labtrack/labtrack/internal/rbac"
)

// User represents a user account mirrored from the identity provider.
type User struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Handle    string     `json:"handle"`
	RoleID    *uuid.UUID `json:"roleId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// UserWithRole is a user enriched with the display name of their role, the
// shape the management screen lists.
type UserWithRole struct {
	User
	RoleName string `json:"roleName"`
}

// displayRoleName maps a missing role to the unassigned sentinel.
func displayRoleName(name *string) string {
	if name == nil || *name == "" {
		return rbac.RoleNameUnassigned
	}
	return *name
}
