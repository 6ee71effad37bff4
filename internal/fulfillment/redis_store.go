package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eyira/storefront/pkg/redis"
)

// RedisScope namespaces processed-session keys in redis.
const RedisScope = "fulfillment"

// RedisStore shares processed sessions across instances through redis keys
// that expire after ttl.
type RedisStore struct {
	store redis.IdempotencyStore
	ttl   time.Duration
	scope string
}

func NewRedisStore(store redis.IdempotencyStore, ttl time.Duration) (*RedisStore, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	return &RedisStore{store: store, ttl: ttl, scope: RedisScope}, nil
}

func (r *RedisStore) HasProcessed(ctx context.Context, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, errors.New("session id is required")
	}
	exists, err := r.store.Exists(ctx, r.store.IdempotencyKey(r.scope, sessionID))
	if err != nil {
		return false, fmt.Errorf("check processed session: %w", err)
	}
	return exists, nil
}

func (r *RedisStore) MarkProcessed(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return errors.New("session id is required")
	}
	// SETNX keeps the first mark's expiry when a session is marked twice.
	if _, err := r.store.SetNX(ctx, r.store.IdempotencyKey(r.scope, sessionID), time.Now().UTC().Format(time.RFC3339), r.ttl); err != nil {
		return fmt.Errorf("mark processed session: %w", err)
	}
	return nil
}

