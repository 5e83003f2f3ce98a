package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStorage keeps carts, checkout sessions and cached catalog data as
// JSON strings.
type RedisStorage struct {
	Client *redis.Client
	TTL    time.Duration
	ctx    context.Context
}

func NewRedisStorage(client *redis.Client, ttl time.Duration) *RedisStorage {
	return &RedisStorage{Client: client, TTL: ttl, ctx: context.Background()}
}

func (s *RedisStorage) Get(key string, dest any) (bool, error) {
	raw, err := s.Client.Get(s.ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *RedisStorage) Set(key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Client.Set(s.ctx, key, payload, s.TTL).Err()
}

func (s *RedisStorage) Remove(key string) error {
	return s.Client.Del(s.ctx, key).Err()
}
