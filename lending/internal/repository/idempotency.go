package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const idempotencyKeyPrefix = "lending:idem:"

type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{client: client, ttl: ttl}
}

// Acquire returns false when the key was already seen within the TTL.
func (s *IdempotencyStore) Acquire(ctx context.Context, key string) (bool, error) {
	ok, err := s.client.SetNX(ctx, idempotencyKeyPrefix+key, 1, s.ttl).Result()
	if err != nil {
		return false, errors.Wrap(err, "redis SetNX")
	}
	return ok, nil
}

// Release frees a key whose request failed so the client may retry it.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return errors.Wrap(s.client.Del(ctx, idempotencyKeyPrefix+key).Err(), "redis Del")
}
