package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Lock is a best-effort distributed mutex backed by redis SET NX. The TTL
// bounds how long a crashed holder can block other workers.
type Lock struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewLock builds a lock for the given key.
func NewLock(client *redis.Client, key string, ttl time.Duration) *Lock {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Lock{client: client, key: key, ttl: ttl}
}

// Acquire attempts to take the lock. It reports false when another holder
// already owns the key.
func (l *Lock) Acquire(ctx context.Context) (bool, error) {
	if l == nil || l.client == nil {
		return true, nil
	}
	ok, err := l.client.SetNX(ctx, l.key, time.Now().UTC().Format(time.RFC3339), l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("platform/cache: acquire lock %s: %w", l.key, err)
	}
	return ok, nil
}

// Release drops the lock. Safe to call when the lock was never acquired.
func (l *Lock) Release(ctx context.Context) error {
	if l == nil || l.client == nil {
		return nil
	}
	if err := l.client.Del(ctx, l.key).Err(); err != nil {
		return fmt.Errorf("platform/cache: release lock %s: %w", l.key, err)
	}
	return nil
}
