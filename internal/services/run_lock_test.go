package services

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dossiers/internal/relance"
)

func TestLocalLock(t *testing.T) {
	ctx := context.Background()
	l := &LocalLock{}

	unlock, err := l.TryLock(ctx)
	require.NoError(t, err)

	_, err = l.TryLock(ctx)
	assert.ErrorIs(t, err, relance.ErrRunInProgress)

	require.NoError(t, unlock(ctx))
	require.NoError(t, unlock(ctx), "unlocking twice is harmless")

	unlock, err = l.TryLock(ctx)
	require.NoError(t, err)
	require.NoError(t, unlock(ctx))
}

func TestNewLocker(t *testing.T) {
	l, closeFn, err := NewLocker("", "k", time.Minute)
	require.NoError(t, err)
	assert.IsType(t, &LocalLock{}, l)
	assert.NoError(t, closeFn())

	_, _, err = NewLocker("not a url", "k", time.Minute)
	assert.Error(t, err)
}

func TestRedisLock(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	defer client.Close()

	ctx := context.Background()
	key := "relance:test-lock:" + t.Name()
	require.NoError(t, client.Del(ctx, key).Err())

	first := NewRedisLock(client, key, time.Minute)
	second := NewRedisLock(client, key, time.Minute)

	unlock, err := first.TryLock(ctx)
	require.NoError(t, err)

	_, err = second.TryLock(ctx)
	assert.ErrorIs(t, err, relance.ErrRunInProgress)

	require.NoError(t, unlock(ctx))

	unlock, err = second.TryLock(ctx)
	require.NoError(t, err)
	require.NoError(t, unlock(ctx))

	// the lock expires if a run dies without releasing it
	short := NewRedisLock(client, key, 50*time.Millisecond)
	_, err = short.TryLock(ctx)
	require.NoError(t, err)
	time.Sleep(100 * time.Millisecond)
	unlock, err = first.TryLock(ctx)
	require.NoError(t, err)
	require.NoError(t, unlock(ctx))
}
