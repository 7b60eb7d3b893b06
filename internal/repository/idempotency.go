package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisIdempotencyStore claims checkout idempotency keys in redis. SetNX makes
// the claim atomic across concurrent retries of the same request.
type RedisIdempotencyStore struct {
	rdb *redis.Client
}

func NewRedisIdempotencyStore(rdb *redis.Client) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{rdb: rdb}
}

var _ IdempotencyStore = (*RedisIdempotencyStore)(nil)

func (s *RedisIdempotencyStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	redisKey := fmt.Sprintf("idempotency-key:%s", key)
	ok, err := s.rdb.SetNX(ctx, redisKey, "claimed", ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}
