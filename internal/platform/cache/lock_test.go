package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestLockMutualExclusion(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	ctx := context.Background()

	first := NewLock(client, "billing:generate:2025-08:lock", time.Minute)
	ok, err := first.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	second := NewLock(client, "billing:generate:2025-08:lock", time.Minute)
	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, first.Release(ctx))
	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestLockExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	ctx := context.Background()

	lock := NewLock(client, "billing:generate:2025-09:lock", time.Minute)
	ok, err := lock.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Minute)

	other := NewLock(client, "billing:generate:2025-09:lock", time.Minute)
	ok, err = other.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestLockNilClientIsNoop(t *testing.T) {
	lock := NewLock(nil, "any", time.Minute)
	ok, err := lock.Acquire(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, lock.Release(context.Background()))
}
