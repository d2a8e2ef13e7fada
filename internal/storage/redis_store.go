package storage

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/storefront/pkg/redis"
)

// RedisStore keeps session keys for one shopper session. Every Set and every
// successful Get refreshes the key's TTL.
type RedisStore struct {
	client    *redis.Client
	sessionID string
	ttl       time.Duration
}

func NewRedisStore(client *redis.Client, sessionID string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, sessionID: sessionID, ttl: ttl}
}

func (r *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, r.client.SessionKey(r.sessionID, key))
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	// Reads keep the session alive; a failed refresh still returns the value.
	_ = r.client.Touch(ctx, r.client.SessionKey(r.sessionID, key), r.ttl)
	return value, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, r.client.SessionKey(r.sessionID, key), value, r.ttl)
}

func (r *RedisStore) Remove(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.client.SessionKey(r.sessionID, key))
}

// Close leaves the shared client open; cmd/storefront closes it on shutdown.
func (r *RedisStore) Close() error { return nil }
