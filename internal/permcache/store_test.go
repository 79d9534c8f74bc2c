package permcache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labtrack/labtrack/internal/rbac"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, "permcache", time.Hour), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	res := rbac.Resolution{RoleName: "Analista", Permissions: []string{"VerMuestras"}}
	require.NoError(t, store.Save(ctx, DefaultSlotKey, res))

	loaded, ok, err := store.Load(ctx, DefaultSlotKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, res, loaded)
}

func TestRedisStoreEmptySlot(t *testing.T) {
	store, _ := newTestStore(t)

	_, ok, err := store.Load(context.Background(), DefaultSlotKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStoreCorruptedSlotReadsAsEmpty(t *testing.T) {
	store, mr := newTestStore(t)
	require.NoError(t, mr.Set("permcache:"+DefaultSlotKey, "{not json"))

	_, ok, err := store.Load(context.Background(), DefaultSlotKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStoreClear(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, DefaultSlotKey, rbac.Resolution{RoleName: "Analista"}))
	require.NoError(t, store.Clear(ctx, DefaultSlotKey))

	_, ok, err := store.Load(ctx, DefaultSlotKey)
	require.NoError(t, err)
	assert.False(t, ok)

	// Clearing an already-empty slot is not an error.
	assert.NoError(t, store.Clear(ctx, DefaultSlotKey))
}

func TestRedisStoreNormalisesNilPermissions(t *testing.T) {
	store, mr := newTestStore(t)
	require.NoError(t, mr.Set("permcache:"+DefaultSlotKey, `{"roleName":"Analista"}`))

	loaded, ok, err := store.Load(context.Background(), DefaultSlotKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotNil(t, loaded.Permissions)
	assert.Empty(t, loaded.Permissions)
}
