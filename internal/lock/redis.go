package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Key is what the redis locker needs: a comparable value with a stable string form.
type Key interface {
	comparable
	String() string
}

// releaseScript deletes the lock only if we still own it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a best-effort distributed lock (SET NX PX with an owner token).
// The TTL bounds how long a crashed holder can block others.
type Redis[K Key] struct {
	client     *redis.Client
	prefix     string
	ttl        time.Duration
	retryEvery time.Duration
}

func NewRedis[K Key](client *redis.Client, prefix string, ttl time.Duration) *Redis[K] {
	return &Redis[K]{
		client:     client,
		prefix:     prefix,
		ttl:        ttl,
		retryEvery: 10 * time.Millisecond,
	}
}

func (r *Redis[K]) Lock(ctx context.Context, key K) (func(), error) {
	name := r.prefix + key.String()
	token := uuid.NewString()

	for {
		ok, err := r.client.SetNX(ctx, name, token, r.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquiring lock %s: %w", name, err)
		}
		if ok {
			break
		}

		timer := time.NewTimer(r.retryEvery)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() { r.release(ctx, name, token) })
	}, nil
}

func (r *Redis[K]) release(ctx context.Context, name, token string) {
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
	defer cancel()
	if err := releaseScript.Run(releaseCtx, r.client, []string{name}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		slog.Warn("failed to release redis lock", "key", name, "error", err)
	}
}

// NewRedisClient parses a redis:// URL and verifies the connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}
