package users

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labtrack/labtrack/internal/identity"
	"github.com/labtrack/labtrack/internal/platform/httpx"
)

type mockRepo struct {
	byHandle map[string]User
}

func newMockRepo() *mockRepo {
	return &mockRepo{byHandle: make(map[string]User)}
}

func (m *mockRepo) ListUsers(ctx context.Context) ([]UserWithRole, error) {
	var out []UserWithRole
	for _, u := range m.byHandle {
		out = append(out, UserWithRole{User: u, RoleName: "Sin rol asignado"})
	}
	return out, nil
}

func (m *mockRepo) GetByHandle(ctx context.Context, handle string) (User, error) {
	u, ok := m.byHandle[handle]
	if !ok {
		return User{}, httpx.ErrNotFound
	}
	return u, nil
}

func (m *mockRepo) Upsert(ctx context.Context, name, email, handle string) error {
	u := m.byHandle[handle]
	u.Name = name
	u.Email = email
	u.Handle = handle
	m.byHandle[handle] = u
	return nil
}

func (m *mockRepo) DeleteByHandle(ctx context.Context, handle string) error {
	if _, ok := m.byHandle[handle]; !ok {
		return httpx.ErrNotFound
	}
	delete(m.byHandle, handle)
	return nil
}

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	return NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil))), repo
}

func TestUpsertFromProvider(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	err := svc.UpsertFromProvider(ctx, identity.ProviderUser{
		Handle: "user_abc",
		Name:   " Ana Lopez ",
		Email:  "ana@lab.test",
	})
	require.NoError(t, err)

	u, err := svc.CurrentUser(ctx, "user_abc")
	require.NoError(t, err)
	assert.Equal(t, "Ana Lopez", u.Name)
	assert.Equal(t, "ana@lab.test", u.Email)

	// An update for the same handle overwrites in place.
	require.NoError(t, svc.UpsertFromProvider(ctx, identity.ProviderUser{
		Handle: "user_abc",
		Name:   "Ana Lopez Garcia",
		Email:  "ana@lab.test",
	}))
	u, err = svc.CurrentUser(ctx, "user_abc")
	require.NoError(t, err)
	assert.Equal(t, "Ana Lopez Garcia", u.Name)
	assert.Len(t, repo.byHandle, 1)
}

func TestUpsertFromProviderRejectsIncomplete(t *testing.T) {
	svc, _ := newTestService()

	err := svc.UpsertFromProvider(context.Background(), identity.ProviderUser{Handle: "user_abc"})
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestDeleteByHandle(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.UpsertFromProvider(ctx, identity.ProviderUser{
		Handle: "user_abc",
		Email:  "ana@lab.test",
	}))
	require.NoError(t, svc.DeleteByHandle(ctx, "user_abc"))
	assert.Empty(t, repo.byHandle)

	// Deleting an unknown handle is already satisfied.
	assert.NoError(t, svc.DeleteByHandle(ctx, "user_gone"))
}
