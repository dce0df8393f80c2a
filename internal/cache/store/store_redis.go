package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"contentgw/internal/cache"
	"contentgw/pkg/platform/sentinel"
)

const defaultRedisPrefix = "contentgw:cache:"

// RedisStore shares cache entries across gateway replicas.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client, prefix: defaultRedisPrefix}
}

func (s *RedisStore) key(key cache.Key) string {
	return s.prefix + string(key)
}

func (s *RedisStore) Load(ctx context.Context, key cache.Key) (*cache.Entry, error) {
	raw, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("cache entry %s: %w", key, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return decodeEntry(key, raw)
}

func (s *RedisStore) Save(ctx context.Context, entry *cache.Entry) error {
	raw, err := encodeEntry(entry)
	if err != nil {
		return fmt.Errorf("encode cache record %s: %w", entry.Key, err)
	}
	if err := s.client.Set(ctx, s.key(entry.Key), raw, housekeepingTTL(entry.TTL)).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", entry.Key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key cache.Key) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}
