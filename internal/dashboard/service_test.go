package dashboard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRepo struct {
	stats Stats
	err   error
	calls int
}

func (r *countingRepo) Collect(ctx context.Context) (Stats, error) {
	r.calls++
	if r.err != nil {
		return Stats{}, r.err
	}
	return r.stats, nil
}

func newTestService(t *testing.T, repo *countingRepo) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, client, logger), mr
}

func TestStatsComputesAndCaches(t *testing.T) {
	repo := &countingRepo{stats: Stats{TotalClients: 12, PendingSamples: 3, SamplesToday: 2}}
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	first, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 12, first.TotalClients)
	assert.Equal(t, 1, repo.calls)

	// Second read is served from the cache.
	second, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.calls)
}

func TestStatsRecomputesAfterExpiry(t *testing.T) {
	repo := &countingRepo{stats: Stats{TotalClients: 5}}
	svc, mr := newTestService(t, repo)
	ctx := context.Background()

	_, err := svc.Stats(ctx)
	require.NoError(t, err)

	mr.FastForward(2 * defaultTTL)

	_, err = svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)
}

func TestRefreshOverwritesCache(t *testing.T) {
	repo := &countingRepo{stats: Stats{PendingSamples: 1}}
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	_, err := svc.Stats(ctx)
	require.NoError(t, err)

	repo.stats.PendingSamples = 7
	refreshed, err := svc.Refresh(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 7, refreshed.PendingSamples)

	cached, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 7, cached.PendingSamples)
}

func TestStatsPropagatesCollectError(t *testing.T) {
	repo := &countingRepo{err: errors.New("db down")}
	svc, _ := newTestService(t, repo)

	_, err := svc.Stats(context.Background())
	assert.Error(t, err)
}
