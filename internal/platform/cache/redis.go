package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	id "authlinks/pkg/domain"
)

const redisKeyPrefix = "authlinks:"

// RedisStore is a Redis-backed Store. Every key expires after ttl.
type RedisStore struct {
	client    redis.UniversalClient
	namespace string
	ttl       time.Duration
}

// NewRedis constructs a RedisStore for namespace.
func NewRedis(client redis.UniversalClient, namespace string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, namespace: namespace, ttl: ttl}
}

func (s *RedisStore) key(tenant id.TenantID, key string) string {
	return redisKeyPrefix + s.namespace + ":" + string(tenant) + ":" + key
}

func (s *RedisStore) Get(ctx context.Context, tenant id.TenantID, key string, dest any) (bool, error) {
	raw, err := s.client.Get(ctx, s.key(tenant, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get: %w", err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decode cached value: %w", err)
	}
	return true, nil
}

func (s *RedisStore) Set(ctx context.Context, tenant id.TenantID, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cached value: %w", err)
	}
	if err := s.client.Set(ctx, s.key(tenant, key), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, tenant id.TenantID, key string) error {
	if err := s.client.Del(ctx, s.key(tenant, key)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
