package rbac

import (
	"context"

	"github.com/google/uuid"
)

// RepositoryPort defines data access for the permission store. The store
// offers no multi-collection transaction, so the service sequences cascade
// deletes explicitly (links first, then parent).
type RepositoryPort interface {
	// UserRole returns the role reference for the user with the given
	// identity handle, nil when the user has no role assigned, or
	// ErrNotFound when no such user exists.
	UserRole(ctx context.Context, handle string) (*uuid.UUID, error)
	// SetUserRole assigns a role to a user. ErrNotFound when the user
	// does not exist.
	SetUserRole(ctx context.Context, userID, roleID uuid.UUID) error

	GetRole(ctx context.Context, id uuid.UUID) (Role, error)
	ListRoles(ctx context.Context) ([]Role, error)
	CreateRole(ctx context.Context, name string) (Role, error)
	DeleteRole(ctx context.Context, id uuid.UUID) error

	GetPermission(ctx context.Context, id uuid.UUID) (Permission, error)
	ListPermissions(ctx context.Context) ([]Permission, error)
	CreatePermission(ctx context.Context, name, description string) (Permission, error)
	DeletePermission(ctx context.Context, id uuid.UUID) error

	// CreateLink inserts a (role, permission) pair; inserting an existing
	// pair is a no-op.
	CreateLink(ctx context.Context, roleID, permissionID uuid.UUID) error
	DeleteLink(ctx context.Context, roleID, permissionID uuid.UUID) error
	ListLinks(ctx context.Context, roleID uuid.UUID) ([]Link, error)
	// DeleteLinksForRole removes every link of a role and reports how many
	// rows were removed.
	DeleteLinksForRole(ctx context.Context, roleID uuid.UUID) (int64, error)
	DeleteLinksForPermission(ctx context.Context, permissionID uuid.UUID) (int64, error)
	// DeleteOrphanLinks removes links whose role or permission no longer
	// exists. Used by the reconciliation sweep.
	DeleteOrphanLinks(ctx context.Context) (int64, error)
}
