package runlock_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smarthousehold/inventory-service/internal/domain"
	"github.com/smarthousehold/inventory-service/internal/runlock"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisLocker_OncePerKey(t *testing.T) {
	_, client := newClient(t)
	ctx := context.Background()

	first := runlock.NewRedisLocker(client, "expiry-check:", time.Hour)
	second := runlock.NewRedisLocker(client, "expiry-check:", time.Hour)

	require.NoError(t, first.Acquire(ctx, "2026-03-10"))
	assert.ErrorIs(t, second.Acquire(ctx, "2026-03-10"), domain.ErrRunLocked)

	// A different day is a different run.
	require.NoError(t, second.Acquire(ctx, "2026-03-11"))
}

func TestRedisLocker_ReleaseOnlyByOwner(t *testing.T) {
	mr, client := newClient(t)
	ctx := context.Background()

	owner := runlock.NewRedisLocker(client, "lock:", time.Hour)
	other := runlock.NewRedisLocker(client, "lock:", time.Hour)

	require.NoError(t, owner.Acquire(ctx, "day"))
	require.NoError(t, other.Release(ctx, "day"))
	assert.True(t, mr.Exists("lock:day"), "non-owner release must not delete the key")

	require.NoError(t, owner.Release(ctx, "day"))
	assert.False(t, mr.Exists("lock:day"))
	require.NoError(t, other.Acquire(ctx, "day"))
}

func TestRedisLocker_ExpiresAfterTTL(t *testing.T) {
	mr, client := newClient(t)
	ctx := context.Background()

	l := runlock.NewRedisLocker(client, "lock:", time.Minute)
	require.NoError(t, l.Acquire(ctx, "day"))

	mr.FastForward(2 * time.Minute)
	require.NoError(t, runlock.NewRedisLocker(client, "lock:", time.Minute).Acquire(ctx, "day"))
}

func TestNopLocker(t *testing.T) {
	var l runlock.NopLocker
	require.NoError(t, l.Acquire(context.Background(), "x"))
	require.NoError(t, l.Acquire(context.Background(), "x"))
	require.NoError(t, l.Release(context.Background(), "x"))
}
