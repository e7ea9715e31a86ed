// README: Redis-backed per-driver dispatch lock (SET NX PX with a token-checked release).
package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const driverLockKey = "dispatch:driver:%s:lock"

// releaseScript deletes the lock only if it still holds our token, so an
// expired lock re-acquired by someone else is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

type Unlock func(ctx context.Context) error

type RedisLocker struct {
	redis *redis.Client
}

func NewRedisLocker(redis *redis.Client) *RedisLocker {
	return &RedisLocker{redis: redis}
}

func (l *RedisLocker) Lock(ctx context.Context, driverID string, ttl time.Duration) (Unlock, error) {
	key := fmt.Sprintf(driverLockKey, driverID)
	token := uuid.NewString()
	ok, err := l.redis.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("dispatch.RedisLocker.Lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return func(ctx context.Context) error {
		return releaseScript.Run(ctx, l.redis, []string{key}, token).Err()
	}, nil
}
