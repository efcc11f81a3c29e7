package tokenstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "refresh:"

// RedisStore is a Redis-backed Store. Entries are written with a TTL slightly
// past the refresh token lifetime so abandoned entries age out, but validity is
// still decided by the token's own exp claim, never by the store.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore returns a Store backed by the given Redis client. ttl bounds
// how long an entry may linger; zero means no expiry.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func key(email string) string { return keyPrefix + email }

// Get returns the stored token for email.
func (s *RedisStore) Get(ctx context.Context, email string) (string, bool, error) {
	val, err := s.client.Get(ctx, key(email)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Upsert stores token for email, replacing any previous value.
func (s *RedisStore) Upsert(ctx context.Context, email, token string) error {
	return s.client.Set(ctx, key(email), token, s.ttl).Err()
}

// Delete removes the entry for email.
func (s *RedisStore) Delete(ctx context.Context, email string) error {
	return s.client.Del(ctx, key(email)).Err()
}

// Exists reports whether an entry exists for email.
func (s *RedisStore) Exists(ctx context.Context, email string) (bool, error) {
	n, err := s.client.Exists(ctx, key(email)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
