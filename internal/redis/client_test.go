package redisclient

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(mr.Addr(), Options{
		PoolSize: 5,
		Timeout:  time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Ping(context.Background()).Err())
}

func TestNewRedisClientDefaultsApply(t *testing.T) {
	mr := miniredis.RunT(t)

	// zero options are replaced, not passed through
	client, err := NewRedisClient(mr.Addr(), Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
}

func TestNewRedisClientUnreachable(t *testing.T) {
	_, err := NewRedisClient("127.0.0.1:1", Options{Timeout: 100 * time.Millisecond})
	require.Error(t, err)
}
