package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Only the owner may extend or drop the lock.
var (
	refreshScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0`)

	releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)
)

// PollLock implements ports.PollLock with SET NX and owner-checked scripts.
type PollLock struct {
	client *goredis.Client
	prefix string
}

// NewPollLock creates a new Redis-backed poll lock.
func NewPollLock(client *goredis.Client) *PollLock {
	return &PollLock{
		client: client,
		prefix: "settlement:poll:",
	}
}

// Acquire takes the lock for bundleID. Returns false if another owner holds it.
func (l *PollLock) Acquire(ctx context.Context, bundleID, owner string, ttl time.Duration) (bool, error) {
	result, err := l.client.SetArgs(ctx, l.prefix+bundleID, owner, goredis.SetArgs{
		Mode: "NX",
		TTL:  ttl,
	}).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis poll lock acquire: %w", err)
	}
	return result == "OK", nil
}

// Refresh extends the lock if owner still holds it.
func (l *PollLock) Refresh(ctx context.Context, bundleID, owner string, ttl time.Duration) (bool, error) {
	n, err := refreshScript.Run(ctx, l.client, []string{l.prefix + bundleID}, owner, ttl.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("redis poll lock refresh: %w", err)
	}
	return n == 1, nil
}

// Release drops the lock if owner still holds it.
func (l *PollLock) Release(ctx context.Context, bundleID, owner string) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.prefix + bundleID}, owner).Err(); err != nil {
		return fmt.Errorf("redis poll lock release: %w", err)
	}
	return nil
}
