package rbac

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/labtrack/labtrack/internal/platform/httpx"
	"github.com/labtrack/labtrack/internal/shared"
)

// ErrNotFound indicates that the requested record does not exist.
var ErrNotFound = httpx.ErrNotFound

// Service orchestrates permission-store operations and the authorization
// resolver. All methods are plain request/response calls; the store offers
// no cross-collection transaction, so cascades run links-first and abort on
// the first failure.
type Service struct {
	repo   RepositoryPort
	audit  *shared.AuditLogger
	logger *slog.Logger
}

// NewService builds a Service instance. audit may be nil in tests.
func NewService(repo RepositoryPort, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, logger: logger}
}

// Resolve computes the effective role name and flat permission set for the
// user with the given identity handle. Pure read; concurrent role or
// permission edits at worst yield a one-round-trip-stale list that heals on
// the next resolve.
func (s *Service) Resolve(ctx context.Context, handle string) (Resolution, error) {
	if strings.TrimSpace(handle) == "" {
		return Resolution{}, fmt.Errorf("rbac: %w", ErrNotFound)
	}

	roleID, err := s.repo.UserRole(ctx, handle)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Resolution{}, fmt.Errorf("rbac: user %q: %w", handle, ErrNotFound)
		}
		return Resolution{}, err
	}
	if roleID == nil {
		return Resolution{RoleName: RoleNameUnassigned, Permissions: []string{}}, nil
	}

	role, err := s.repo.GetRole(ctx, *roleID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Dangling role reference: should not survive the cascade
			// invariant, but must resolve to a terminal state, not an error.
			return Resolution{RoleName: RoleNameMissing, Permissions: []string{}}, nil
		}
		return Resolution{}, err
	}

	links, err := s.repo.ListLinks(ctx, role.ID)
	if err != nil {
		return Resolution{}, err
	}

	perms := make([]string, 0, len(links))
	seen := make(map[string]struct{}, len(links))
	for _, link := range links {
		perm, err := s.repo.GetPermission(ctx, link.PermissionID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				// Stale link; the reconciliation sweep removes it later.
				continue
			}
			return Resolution{}, err
		}
		if _, ok := seen[perm.Name]; ok {
			continue
		}
		seen[perm.Name] = struct{}{}
		perms = append(perms, perm.Name)
	}
	return Resolution{RoleName: role.Name, Permissions: perms}, nil
}

// HasPermission is the authoritative server-side check: it re-resolves the
// user and never consults any client snapshot. Unknown users simply lack
// every permission.
func (s *Service) HasPermission(ctx context.Context, handle, permission string) (bool, error) {
	res, err := s.Resolve(ctx, handle)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return res.Has(permission), nil
}

// ListRoles returns all roles ordered by name.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.repo.ListRoles(ctx)
}

// GetRoleDetail fetches a role together with its resolved permissions,
// skipping links whose permission no longer exists.
func (s *Service) GetRoleDetail(ctx context.Context, id uuid.UUID) (RoleDetail, error) {
	role, err := s.repo.GetRole(ctx, id)
	if err != nil {
		return RoleDetail{}, err
	}
	links, err := s.repo.ListLinks(ctx, id)
	if err != nil {
		return RoleDetail{}, err
	}
	detail := RoleDetail{Role: role, Permissions: make([]Permission, 0, len(links))}
	for _, link := range links {
		perm, err := s.repo.GetPermission(ctx, link.PermissionID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return RoleDetail{}, err
		}
		detail.Permissions = append(detail.Permissions, perm)
	}
	return detail, nil
}

// CreateRole inserts a new role. Duplicate names are rejected.
func (s *Service) CreateRole(ctx context.Context, actor, name string) (Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Role{}, fmt.Errorf("rbac: role name required: %w", httpx.ErrValidation)
	}
	role, err := s.repo.CreateRole(ctx, name)
	if err != nil {
		return Role{}, err
	}
	s.record(ctx, actor, "role.create", "roles", role.ID.String(), map[string]any{"name": role.Name})
	return role, nil
}

// DeleteRole removes a role and all its permission links. Links go first;
// any link-deletion failure aborts the whole operation so no orphaned links
// are left behind by this path.
func (s *Service) DeleteRole(ctx context.Context, actor string, id uuid.UUID) error {
	if _, err := s.repo.GetRole(ctx, id); err != nil {
		return err
	}
	removed, err := s.repo.DeleteLinksForRole(ctx, id)
	if err != nil {
		return fmt.Errorf("rbac: delete role links: %w", err)
	}
	if err := s.repo.DeleteRole(ctx, id); err != nil {
		return err
	}
	s.record(ctx, actor, "role.delete", "roles", id.String(), map[string]any{"linksRemoved": removed})
	return nil
}

// ListPermissions returns the permission catalog ordered by name.
func (s *Service) ListPermissions(ctx context.Context) ([]Permission, error) {
	return s.repo.ListPermissions(ctx)
}

// CreatePermission inserts a new permission into the catalog.
func (s *Service) CreatePermission(ctx context.Context, actor, name, description string) (Permission, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Permission{}, fmt.Errorf("rbac: permission name required: %w", httpx.ErrValidation)
	}
	perm, err := s.repo.CreatePermission(ctx, name, strings.TrimSpace(description))
	if err != nil {
		return Permission{}, err
	}
	s.record(ctx, actor, "permission.create", "permissions", perm.ID.String(), map[string]any{"name": perm.Name})
	return perm, nil
}

// DeletePermission removes a permission and all links referencing it, links
// first.
func (s *Service) DeletePermission(ctx context.Context, actor string, id uuid.UUID) error {
	if _, err := s.repo.GetPermission(ctx, id); err != nil {
		return err
	}
	removed, err := s.repo.DeleteLinksForPermission(ctx, id)
	if err != nil {
		return fmt.Errorf("rbac: delete permission links: %w", err)
	}
	if err := s.repo.DeletePermission(ctx, id); err != nil {
		return err
	}
	s.record(ctx, actor, "permission.delete", "permissions", id.String(), map[string]any{"linksRemoved": removed})
	return nil
}

// AssignPermission links a permission to a role. Assigning an existing pair
// is a no-op, not an error.
func (s *Service) AssignPermission(ctx context.Context, actor string, roleID, permissionID uuid.UUID) error {
	if _, err := s.repo.GetRole(ctx, roleID); err != nil {
		return err
	}
	if _, err := s.repo.GetPermission(ctx, permissionID); err != nil {
		return err
	}
	if err := s.repo.CreateLink(ctx, roleID, permissionID); err != nil {
		return err
	}
	s.record(ctx, actor, "role.permission.assign", "roles", roleID.String(), map[string]any{"permissionId": permissionID.String()})
	return nil
}

// RemovePermission unlinks a permission from a role.
func (s *Service) RemovePermission(ctx context.Context, actor string, roleID, permissionID uuid.UUID) error {
	if err := s.repo.DeleteLink(ctx, roleID, permissionID); err != nil {
		return err
	}
	s.record(ctx, actor, "role.permission.remove", "roles", roleID.String(), map[string]any{"permissionId": permissionID.String()})
	return nil
}

// AssignRoleToUser sets the user's single role reference.
func (s *Service) AssignRoleToUser(ctx context.Context, actor string, userID, roleID uuid.UUID) error {
	if _, err := s.repo.GetRole(ctx, roleID); err != nil {
		return err
	}
	if err := s.repo.SetUserRole(ctx, userID, roleID); err != nil {
		return err
	}
	s.record(ctx, actor, "user.role.assign", "users", userID.String(), map[string]any{"roleId": roleID.String()})
	return nil
}

// ReconcileLinks deletes links whose role or permission is gone. It backs
// the scheduled sweep compensating for the transactionless cascade.
func (s *Service) ReconcileLinks(ctx context.Context) (int64, error) {
	return s.repo.DeleteOrphanLinks(ctx)
}

func (s *Service) record(ctx context.Context, actor, action, entity, entityID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	log := shared.AuditLog{Actor: actor, Action: action, Entity: entity, EntityID: entityID, Meta: meta}
	if err := s.audit.Record(ctx, log); err != nil {
		s.logger.Warn("rbac audit record", slog.String("action", action), slog.Any("error", err))
	}
}
