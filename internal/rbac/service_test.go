package rbac

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labtrack/labtrack/internal/platform/httpx"
)

type memoryRepo struct {
	userRoles   map[string]*uuid.UUID
	users       map[uuid.UUID]string
	roles       map[uuid.UUID]Role
	permissions map[uuid.UUID]Permission
	links       []Link
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		userRoles:   make(map[string]*uuid.UUID),
		users:       make(map[uuid.UUID]string),
		roles:       make(map[uuid.UUID]Role),
		permissions: make(map[uuid.UUID]Permission),
	}
}

func (m *memoryRepo) addUser(handle string) uuid.UUID {
	id := uuid.New()
	m.users[id] = handle
	m.userRoles[handle] = nil
	return id
}

func (m *memoryRepo) UserRole(ctx context.Context, handle string) (*uuid.UUID, error) {
	roleID, ok := m.userRoles[handle]
	if !ok {
		return nil, ErrNotFound
	}
	return roleID, nil
}

func (m *memoryRepo) SetUserRole(ctx context.Context, userID, roleID uuid.UUID) error {
	handle, ok := m.users[userID]
	if !ok {
		return ErrNotFound
	}
	id := roleID
	m.userRoles[handle] = &id
	return nil
}

func (m *memoryRepo) GetRole(ctx context.Context, id uuid.UUID) (Role, error) {
	role, ok := m.roles[id]
	if !ok {
		return Role{}, ErrNotFound
	}
	return role, nil
}

func (m *memoryRepo) ListRoles(ctx context.Context) ([]Role, error) {
	out := make([]Role, 0, len(m.roles))
	for _, r := range m.roles {
		out = append(out, r)
	}
	return out, nil
}

func (m *memoryRepo) CreateRole(ctx context.Context, name string) (Role, error) {
	for _, r := range m.roles {
		if r.Name == name {
			return Role{}, httpx.ErrDuplicate
		}
	}
	role := Role{ID: uuid.New(), Name: name}
	m.roles[role.ID] = role
	return role, nil
}

func (m *memoryRepo) DeleteRole(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.roles[id]; !ok {
		return ErrNotFound
	}
	delete(m.roles, id)
	return nil
}

func (m *memoryRepo) GetPermission(ctx context.Context, id uuid.UUID) (Permission, error) {
	perm, ok := m.permissions[id]
	if !ok {
		return Permission{}, ErrNotFound
	}
	return perm, nil
}

func (m *memoryRepo) ListPermissions(ctx context.Context) ([]Permission, error) {
	out := make([]Permission, 0, len(m.permissions))
	for _, p := range m.permissions {
		out = append(out, p)
	}
	return out, nil
}

func (m *memoryRepo) CreatePermission(ctx context.Context, name, description string) (Permission, error) {
	for _, p := range m.permissions {
		if p.Name == name {
			return Permission{}, httpx.ErrDuplicate
		}
	}
	perm := Permission{ID: uuid.New(), Name: name, Description: description}
	m.permissions[perm.ID] = perm
	return perm, nil
}

func (m *memoryRepo) DeletePermission(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.permissions[id]; !ok {
		return ErrNotFound
	}
	delete(m.permissions, id)
	return nil
}

func (m *memoryRepo) CreateLink(ctx context.Context, roleID, permissionID uuid.UUID) error {
	for _, l := range m.links {
		if l.RoleID == roleID && l.PermissionID == permissionID {
			return nil
		}
	}
	m.links = append(m.links, Link{RoleID: roleID, PermissionID: permissionID})
	return nil
}

func (m *memoryRepo) DeleteLink(ctx context.Context, roleID, permissionID uuid.UUID) error {
	for i, l := range m.links {
		if l.RoleID == roleID && l.PermissionID == permissionID {
			m.links = append(m.links[:i], m.links[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *memoryRepo) ListLinks(ctx context.Context, roleID uuid.UUID) ([]Link, error) {
	var out []Link
	for _, l := range m.links {
		if l.RoleID == roleID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memoryRepo) DeleteLinksForRole(ctx context.Context, roleID uuid.UUID) (int64, error) {
	return m.deleteLinks(func(l Link) bool { return l.RoleID == roleID }), nil
}

func (m *memoryRepo) DeleteLinksForPermission(ctx context.Context, permissionID uuid.UUID) (int64, error) {
	return m.deleteLinks(func(l Link) bool { return l.PermissionID == permissionID }), nil
}

func (m *memoryRepo) DeleteOrphanLinks(ctx context.Context) (int64, error) {
	return m.deleteLinks(func(l Link) bool {
		_, roleOK := m.roles[l.RoleID]
		_, permOK := m.permissions[l.PermissionID]
		return !roleOK || !permOK
	}), nil
}

func (m *memoryRepo) deleteLinks(match func(Link) bool) int64 {
	var kept []Link
	var removed int64
	for _, l := range m.links {
		if match(l) {
			removed++
			continue
		}
		kept = append(kept, l)
	}
	m.links = kept
	return removed
}

func seedAnalyst(t *testing.T, repo *memoryRepo) (userID uuid.UUID, role Role) {
	t.Helper()
	ctx := context.Background()
	svc := NewService(repo, nil, nil)

	userID = repo.addUser("user_analyst")
	role, err := svc.CreateRole(ctx, "admin", "Analista")
	require.NoError(t, err)

	viewPerm, err := svc.CreatePermission(ctx, "admin", "VerMuestras", "")
	require.NoError(t, err)
	editPerm, err := svc.CreatePermission(ctx, "admin", "EditarMuestra", "")
	require.NoError(t, err)

	require.NoError(t, svc.AssignPermission(ctx, "admin", role.ID, viewPerm.ID))
	require.NoError(t, svc.AssignPermission(ctx, "admin", role.ID, editPerm.ID))
	require.NoError(t, svc.AssignRoleToUser(ctx, "admin", userID, role.ID))
	return userID, role
}

func TestResolveAnalyst(t *testing.T) {
	repo := newMemoryRepo()
	seedAnalyst(t, repo)
	svc := NewService(repo, nil, nil)

	res, err := svc.Resolve(context.Background(), "user_analyst")
	require.NoError(t, err)
	assert.Equal(t, "Analista", res.RoleName)
	assert.ElementsMatch(t, []string{"VerMuestras", "EditarMuestra"}, res.Permissions)
	assert.True(t, res.Has("VerMuestras"))
	assert.False(t, res.Has("EliminarMuestra"))
}

func TestResolveUserWithoutRole(t *testing.T) {
	repo := newMemoryRepo()
	repo.addUser("user_new")
	svc := NewService(repo, nil, nil)

	res, err := svc.Resolve(context.Background(), "user_new")
	require.NoError(t, err)
	assert.Equal(t, RoleNameUnassigned, res.RoleName)
	assert.Empty(t, res.Permissions)
	assert.NotNil(t, res.Permissions)
}

func TestResolveDanglingRole(t *testing.T) {
	repo := newMemoryRepo()
	repo.addUser("user_ghost")
	ghostRole := uuid.New()
	repo.userRoles["user_ghost"] = &ghostRole
	svc := NewService(repo, nil, nil)

	res, err := svc.Resolve(context.Background(), "user_ghost")
	require.NoError(t, err)
	assert.Equal(t, RoleNameMissing, res.RoleName)
	assert.Empty(t, res.Permissions)
}

func TestResolveUnknownUser(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)

	_, err := svc.Resolve(context.Background(), "user_nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveSkipsStaleLinks(t *testing.T) {
	repo := newMemoryRepo()
	_, role := seedAnalyst(t, repo)
	// A link whose permission was removed without cleanup.
	repo.links = append(repo.links, Link{RoleID: role.ID, PermissionID: uuid.New()})
	svc := NewService(repo, nil, nil)

	res, err := svc.Resolve(context.Background(), "user_analyst")
	require.NoError(t, err)
	assert.Len(t, res.Permissions, 2)
}

func TestHasPermission(t *testing.T) {
	repo := newMemoryRepo()
	seedAnalyst(t, repo)
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	ok, err := svc.HasPermission(ctx, "user_analyst", "EditarMuestra")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.HasPermission(ctx, "user_analyst", "EliminarMuestra")
	require.NoError(t, err)
	assert.False(t, ok)

	// Unknown users simply lack every permission.
	ok, err = svc.HasPermission(ctx, "user_nobody", "VerMuestras")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCreateRoleRejectsDuplicates(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)
	ctx := context.Background()

	_, err := svc.CreateRole(ctx, "admin", "Analista")
	require.NoError(t, err)
	_, err = svc.CreateRole(ctx, "admin", "Analista")
	assert.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestCreateRoleRejectsBlankName(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)

	_, err := svc.CreateRole(context.Background(), "admin", "   ")
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestDeleteRoleCascadesLinks(t *testing.T) {
	repo := newMemoryRepo()
	_, role := seedAnalyst(t, repo)
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	require.NoError(t, svc.DeleteRole(ctx, "admin", role.ID))
	assert.Empty(t, repo.links)

	// The user now points at a role that is gone.
	res, err := svc.Resolve(ctx, "user_analyst")
	require.NoError(t, err)
	assert.Equal(t, RoleNameMissing, res.RoleName)
}

func TestDeletePermissionCascadesLinks(t *testing.T) {
	repo := newMemoryRepo()
	seedAnalyst(t, repo)
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	perms, err := svc.ListPermissions(ctx)
	require.NoError(t, err)
	var editID uuid.UUID
	for _, p := range perms {
		if p.Name == "EditarMuestra" {
			editID = p.ID
		}
	}
	require.NotEqual(t, uuid.Nil, editID)

	require.NoError(t, svc.DeletePermission(ctx, "admin", editID))

	res, err := svc.Resolve(ctx, "user_analyst")
	require.NoError(t, err)
	assert.Equal(t, []string{"VerMuestras"}, res.Permissions)
}

func TestAssignPermissionIsIdempotent(t *testing.T) {
	repo := newMemoryRepo()
	_, role := seedAnalyst(t, repo)
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	perms, err := svc.ListPermissions(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.AssignPermission(ctx, "admin", role.ID, perms[0].ID))

	res, err := svc.Resolve(ctx, "user_analyst")
	require.NoError(t, err)
	assert.Len(t, res.Permissions, 2)
}

func TestAssignPermissionUnknownRole(t *testing.T) {
	repo := newMemoryRepo()
	seedAnalyst(t, repo)
	svc := NewService(repo, nil, nil)

	err := svc.AssignPermission(context.Background(), "admin", uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAssignRoleToUserUnknownRole(t *testing.T) {
	repo := newMemoryRepo()
	userID := repo.addUser("user_new")
	svc := NewService(repo, nil, nil)

	err := svc.AssignRoleToUser(context.Background(), "admin", userID, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReconcileLinksRemovesOrphans(t *testing.T) {
	repo := newMemoryRepo()
	_, role := seedAnalyst(t, repo)
	repo.links = append(repo.links,
		Link{RoleID: uuid.New(), PermissionID: uuid.New()},
		Link{RoleID: role.ID, PermissionID: uuid.New()},
	)
	svc := NewService(repo, nil, nil)

	removed, err := svc.ReconcileLinks(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, removed)
	assert.Len(t, repo.links, 2)
}
