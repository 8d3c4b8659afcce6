package lock

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ErrNotConfigured is returned by a Redis lock without a client.
var ErrNotConfigured = errors.New("lock: redis client not configured")

// DefaultTTL bounds how long a crashed holder can block the others.
const DefaultTTL = 10 * time.Second

const releaseScript = `if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
else
  return 0
end`

// Redis serialises critical sections across processes sharing one Redis.
type Redis struct {
	Client       *redis.Client
	RetryBackoff time.Duration
	Logger       zerolog.Logger
}

// StoreKey is the lock key guarding writes to the data file at path.
func StoreKey(path string) string {
	return "pizzaria:lock:store:" + strings.TrimSpace(path)
}

// WithLock runs fn while holding key. The lock is released when fn returns, also on error,
// and only if this holder still owns it. Waiting stops when ctx is done.
func (l *Redis) WithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error {
	if l == nil || l.Client == nil {
		return ErrNotConfigured
	}
	if fn == nil {
		return errors.New("lock: callback not provided")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	retry := l.RetryBackoff
	if retry <= 0 {
		retry = 50 * time.Millisecond
	}
	token := uuid.NewString()

	for {
		ok, err := l.Client.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			return err
		}
		if ok {
			defer l.release(key, token)
			return fn(ctx)
		}
		l.Logger.Debug().Str("key", key).Msg("lock busy, waiting")
		timer := time.NewTimer(retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (l *Redis) release(key, token string) {
	ctx := context.Background()
	err := l.Client.Eval(ctx, releaseScript, []string{key}, token).Err()
	if err == nil {
		return
	}
	if strings.Contains(strings.ToLower(err.Error()), "unknown command") {
		err = l.Client.Del(ctx, key).Err()
	}
	if err != nil {
		l.Logger.Warn().Err(err).Str("key", key).Msg("lock release failed")
	}
}
