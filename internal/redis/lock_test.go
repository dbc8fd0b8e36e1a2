package redisclient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLocker(t *testing.T) (Locker, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisLocker(client, 5*time.Second), mr
}

func TestWithLockRunsCriticalSection(t *testing.T) {
	locker, _ := testLocker(t)

	ran := false
	err := locker.WithLock(context.Background(), "regen:svc:2026-09-10", func(ctx context.Context) error {
		ran = true
		return nil
	})

	require.NoError(t, err)
	assert.True(t, ran)
}

func TestWithLockRejectsConcurrentHolder(t *testing.T) {
	locker, _ := testLocker(t)
	ctx := context.Background()
	key := "regen:svc:2026-09-10"

	err := locker.WithLock(ctx, key, func(ctx context.Context) error {
		// the same key cannot be taken while the section runs
		inner := locker.WithLock(ctx, key, func(ctx context.Context) error {
			t.Fatal("nested critical section must not run")
			return nil
		})
		assert.ErrorIs(t, inner, ErrLockNotAcquired)
		return nil
	})
	require.NoError(t, err)

	// released on return, so the key is free again
	err = locker.WithLock(ctx, key, func(ctx context.Context) error { return nil })
	require.NoError(t, err)
}

func TestWithLockDifferentKeysAreIndependent(t *testing.T) {
	locker, _ := testLocker(t)
	ctx := context.Background()

	err := locker.WithLock(ctx, "regen:svc:2026-09-10", func(ctx context.Context) error {
		return locker.WithLock(ctx, "regen:svc:2026-09-11", func(ctx context.Context) error {
			return nil
		})
	})
	require.NoError(t, err)
}

func TestWithLockPropagatesAndReleasesOnError(t *testing.T) {
	locker, mr := testLocker(t)
	ctx := context.Background()
	boom := errors.New("regeneration failed")

	err := locker.WithLock(ctx, "regen:svc:2026-09-10", func(ctx context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)

	assert.False(t, mr.Exists("lock:regen:svc:2026-09-10"))
}

func TestWithLockExpiredTokenIsNotDeleted(t *testing.T) {
	locker, mr := testLocker(t)
	ctx := context.Background()
	key := "regen:svc:2026-09-10"

	err := locker.WithLock(ctx, key, func(ctx context.Context) error {
		// simulate TTL expiry and takeover by another process
		mr.Del("lock:" + key)
		require.NoError(t, mr.Set("lock:"+key, "other-token"))
		return nil
	})
	require.NoError(t, err)

	// the release must not remove the other holder's lock
	val, getErr := mr.Get("lock:" + key)
	require.NoError(t, getErr)
	assert.Equal(t, "other-token", val)
}
