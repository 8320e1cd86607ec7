package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis instance and returns a client connected to it.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err, "failed to start miniredis")

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	return client
}

func TestRateLimiter_Allow(t *testing.T) {
	client := setupTestRedis(t)
	limiter := NewRateLimiter(client)
	ctx := context.Background()

	allowed, remaining, _, err := limiter.Allow(ctx, "ip:127.0.0.1", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, int64(1), remaining)

	allowed, remaining, _, err = limiter.Allow(ctx, "ip:127.0.0.1", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, int64(0), remaining)

	allowed, _, _, err = limiter.Allow(ctx, "ip:127.0.0.1", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestOnboardingStateStore_ConnectAndClear(t *testing.T) {
	client := setupTestRedis(t)
	store := NewOnboardingStateStore(client)
	ctx := context.Background()
	const chatID int64 = 918273645

	connecting, err := store.IsConnecting(ctx, chatID)
	require.NoError(t, err)
	assert.False(t, connecting)

	require.NoError(t, store.SetConnecting(ctx, chatID))

	connecting, err = store.IsConnecting(ctx, chatID)
	require.NoError(t, err)
	assert.True(t, connecting)

	require.NoError(t, store.Clear(ctx, chatID))

	connecting, err = store.IsConnecting(ctx, chatID)
	require.NoError(t, err)
	assert.False(t, connecting)
}
