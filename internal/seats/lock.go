package seats

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SlotLocker serializes reserve attempts for one (seat, date, slot). The
// partial unique index remains the final guard; the lock only keeps losers
// from reaching the database.
type SlotLocker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), acquired bool, err error)
}

// releaseScript deletes the lock only if it still carries our token, so an
// expired holder cannot free a lock taken over by someone else.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisLocker struct {
	client *redis.Client
}

func NewRedisLocker(client *redis.Client) SlotLocker {
	return &redisLocker{client: client}
}

func (l *redisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire seat lock: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		// Detached so a cancelled request still frees its lock.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		_ = releaseScript.Run(ctx, l.client, []string{key}, token).Err()
	}
	return release, true, nil
}

// PreloadScripts loads the Lua scripts so the first release avoids a
// NOSCRIPT round trip.
func PreloadScripts(ctx context.Context, client *redis.Client) error {
	if err := releaseScript.Load(ctx, client).Err(); err != nil {
		return fmt.Errorf("failed to load seat lock release script: %w", err)
	}
	return nil
}

type noopLocker struct{}

// NewNoopLocker is used when Redis is not configured.
func NewNoopLocker() SlotLocker {
	return noopLocker{}
}

func (noopLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	return func() {}, true, nil
}
