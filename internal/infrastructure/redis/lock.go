package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/medportal-notify/internal/worker"
	"github.com/redis/go-redis/v9"
)

// SweepLocker makes sure only one instance runs a given sweep at a time.
type SweepLocker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSweepLocker(client *redis.Client, ttl time.Duration) *SweepLocker {
	return &SweepLocker{client: client, ttl: ttl}
}

func lockKey(name string) string {
	return "lock:" + name
}

// WithLock runs fn while holding the lock for name. It returns
// worker.ErrLockNotAcquired when another instance holds it.
func (l *SweepLocker) WithLock(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	key := lockKey(name)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire sweep lock: %w", err)
	}
	if !ok {
		return worker.ErrLockNotAcquired
	}

	defer func() {
		// ctx may already be done when fn ran into its deadline.
		relCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		_ = l.release(relCtx, key, token)
	}()

	ctxWithTimeout, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(ctxWithTimeout)
}

var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *SweepLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release sweep lock: %w", err)
	}
	return nil
}
