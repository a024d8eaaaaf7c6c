package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Cooldown(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryStore()
	c.now = func() time.Time { return now }
	ctx := context.Background()

	ok, err := c.Acquire(ctx, "ann@example.com", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = c.Acquire(ctx, "ann@example.com", time.Minute)
	assert.False(t, ok, "second claim inside the window")

	ok, _ = c.Acquire(ctx, "ben@example.com", time.Minute)
	assert.True(t, ok, "keys are independent")

	now = now.Add(time.Minute)
	ok, _ = c.Acquire(ctx, "ann@example.com", time.Minute)
	assert.True(t, ok, "claim expires after ttl")
}

func TestMemoryStore_Release(t *testing.T) {
	c := NewMemoryStore()
	ctx := context.Background()

	ok, err := c.Acquire(ctx, "ann@example.com", time.Hour)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, c.Release(ctx, "ann@example.com"))
	ok, _ = c.Acquire(ctx, "ann@example.com", time.Hour)
	assert.True(t, ok, "released claim can be taken again")

	assert.NoError(t, c.Release(ctx, "never-claimed"))
}

func TestMemoryStore_Sweep(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryStore()
	c.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 1100; i++ {
		_, err := c.Acquire(ctx, time.Duration(i).String(), time.Second)
		require.NoError(t, err)
	}
	now = now.Add(time.Hour)
	_, err := c.Acquire(ctx, "fresh", time.Second)
	require.NoError(t, err)
	assert.Len(t, c.claims, 1)
}

func TestMemoryStore_Counter(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryStore()
	c.now = func() time.Time { return now }
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		n, err := c.Incr(ctx, "token:u-1", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	n, _ := c.Incr(ctx, "token:u-2", time.Minute)
	assert.Equal(t, int64(1), n, "keys are independent")

	now = now.Add(time.Minute)
	n, _ = c.Incr(ctx, "token:u-1", time.Minute)
	assert.Equal(t, int64(1), n, "window restarts after ttl")

	require.NoError(t, c.Reset(ctx, "token:u-1"))
	n, _ = c.Incr(ctx, "token:u-1", time.Minute)
	assert.Equal(t, int64(1), n)
}

func TestNewRedisClient_InvalidURL(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "not-a-url")
	assert.Error(t, err)
}

func TestRedisStore_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	defer client.Close()
	store := NewRedisStore(client)
	ctx := context.Background()

	ok, err := store.Acquire(ctx, "k", time.Second)
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Error(t, store.Release(ctx, "k"))

	_, err = store.Incr(ctx, "k", time.Second)
	assert.Error(t, err)
}
