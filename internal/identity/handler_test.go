package identity

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labtrack/labtrack/internal/rbac"
	"github.com/labtrack/labtrack/internal/shared"
)

type stubResolver struct {
	res rbac.Resolution
	err error
}

func (s stubResolver) Resolve(ctx context.Context, handle string) (rbac.Resolution, error) {
	return s.res, s.err
}

type memorySnapshots struct {
	saved   map[string]rbac.Resolution
	cleared []string
}

func newMemorySnapshots() *memorySnapshots {
	return &memorySnapshots{saved: make(map[string]rbac.Resolution)}
}

func (m *memorySnapshots) Save(ctx context.Context, key string, res rbac.Resolution) error {
	m.saved[key] = res
	return nil
}

func (m *memorySnapshots) Clear(ctx context.Context, key string) error {
	m.cleared = append(m.cleared, key)
	return nil
}

func newAuthRouter(resolver rbac.Resolver, snapshots SnapshotStore) chi.Router {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	NewHandler(logger, resolver, snapshots, nil).MountRoutes(r)
	return r
}

func TestMeWithoutIdentity(t *testing.T) {
	router := newAuthRouter(stubResolver{}, newMemorySnapshots())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMeResolvesAndPersistsSnapshot(t *testing.T) {
	snapshots := newMemorySnapshots()
	resolver := stubResolver{res: rbac.Resolution{
		RoleName:    "Analista",
		Permissions: []string{"VerMuestras"},
	}}
	router := newAuthRouter(resolver, snapshots)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req = req.WithContext(shared.ContextWithIdentity(req.Context(), &shared.Identity{Handle: "user_abc"}))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var res rbac.Resolution
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "Analista", res.RoleName)

	saved, ok := snapshots.saved["user_abc"]
	require.True(t, ok)
	assert.Equal(t, "Analista", saved.RoleName)
}

func TestMeUnprovisionedUser(t *testing.T) {
	router := newAuthRouter(stubResolver{err: rbac.ErrNotFound}, newMemorySnapshots())

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req = req.WithContext(shared.ContextWithIdentity(req.Context(), &shared.Identity{Handle: "user_lagging"}))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSignOutClearsSnapshot(t *testing.T) {
	snapshots := newMemorySnapshots()
	router := newAuthRouter(stubResolver{}, snapshots)

	req := httptest.NewRequest(http.MethodPost, "/signout", nil)
	req = req.WithContext(shared.ContextWithIdentity(req.Context(), &shared.Identity{Handle: "user_abc"}))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"user_abc"}, snapshots.cleared)
}
