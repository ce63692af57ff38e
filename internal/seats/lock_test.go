package seats

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLocker(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, PreloadScripts(context.Background(), client))

	locker := NewRedisLocker(client)
	ctx := context.Background()

	release, ok, err := locker.Acquire(ctx, "lock:a", 5*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = locker.Acquire(ctx, "lock:a", 5*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	release()
	assert.False(t, mr.Exists("lock:a"))

	// A holder whose lock expired must not free the next holder's lock.
	stale, ok, err := locker.Acquire(ctx, "lock:b", time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	mr.FastForward(2 * time.Second)
	_, ok, err = locker.Acquire(ctx, "lock:b", 5*time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	stale()
	assert.True(t, mr.Exists("lock:b"))
}
