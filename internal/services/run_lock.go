package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"dossiers/internal/relance"
)

// releaseScript deletes the lock only if it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLock serializes batch runs across processes with SET NX PX
type RedisLock struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

var _ relance.Locker = (*RedisLock)(nil)

// NewRedisLock creates a lock stored at key, expiring after ttl if never released
func NewRedisLock(client *redis.Client, key string, ttl time.Duration) *RedisLock {
	return &RedisLock{client: client, key: key, ttl: ttl}
}

// TryLock takes the lock or returns relance.ErrRunInProgress
func (l *RedisLock) TryLock(ctx context.Context) (func(context.Context) error, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire run lock: %w", err)
	}
	if !ok {
		return nil, relance.ErrRunInProgress
	}

	return func(ctx context.Context) error {
		err := releaseScript.Run(ctx, l.client, []string{l.key}, token).Err()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("failed to release run lock: %w", err)
		}
		return nil
	}, nil
}

// LocalLock serializes batch runs inside one process
type LocalLock struct {
	mu sync.Mutex
}

var _ relance.Locker = (*LocalLock)(nil)

// TryLock takes the lock or returns relance.ErrRunInProgress
func (l *LocalLock) TryLock(context.Context) (func(context.Context) error, error) {
	if !l.mu.TryLock() {
		return nil, relance.ErrRunInProgress
	}
	var once sync.Once
	return func(context.Context) error {
		once.Do(l.mu.Unlock)
		return nil
	}, nil
}

// NewLocker returns a RedisLock when redisURL is set, a LocalLock otherwise
func NewLocker(redisURL, key string, ttl time.Duration) (relance.Locker, func() error, error) {
	if redisURL == "" {
		return &LocalLock{}, func() error { return nil }, nil
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	return NewRedisLock(client, key, ttl), client.Close, nil
}
