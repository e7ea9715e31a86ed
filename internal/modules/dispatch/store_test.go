package dispatch

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLocker(t *testing.T) {
	addr := os.Getenv("VTC_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("VTC_TEST_REDIS_ADDR not set; skipping integration test")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	l := NewRedisLocker(client)
	driverID := "drv-" + uuid.NewString()

	unlock, err := l.Lock(ctx, driverID, 2*time.Second)
	require.NoError(t, err)

	_, err = l.Lock(ctx, driverID, 2*time.Second)
	assert.ErrorIs(t, err, ErrLocked)

	require.NoError(t, unlock(ctx))
	again, err := l.Lock(ctx, driverID, 2*time.Second)
	require.NoError(t, err)
	require.NoError(t, again(ctx))
}
