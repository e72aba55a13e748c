package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const idempotencyPrefix = "settlement:idempotency:"

// IdempotencyCache implements ports.IdempotencyCache using Redis. Only the
// payment id is cached; replays always read the payment's current state from
// the database.
type IdempotencyCache struct {
	client *goredis.Client
}

// NewIdempotencyCache creates a new Redis-backed idempotency cache.
func NewIdempotencyCache(client *goredis.Client) *IdempotencyCache {
	return &IdempotencyCache{client: client}
}

// Get returns the payment id recorded under key, or nil if there is none.
func (c *IdempotencyCache) Get(ctx context.Context, key string) (*uuid.UUID, error) {
	val, err := c.client.Get(ctx, idempotencyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis idempotency get: %w", err)
	}
	paymentID, err := uuid.Parse(val)
	if err != nil {
		return nil, fmt.Errorf("redis idempotency value for %q: %w", key, err)
	}
	return &paymentID, nil
}

// Set records paymentID under key until ttl elapses.
func (c *IdempotencyCache) Set(ctx context.Context, key string, paymentID uuid.UUID, ttl time.Duration) error {
	if err := c.client.Set(ctx, idempotencyPrefix+key, paymentID.String(), ttl).Err(); err != nil {
		return fmt.Errorf("redis idempotency set: %w", err)
	}
	return nil
}
