// internal/credstore/redis.go
package credstore

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	accessKey  = "access"
	refreshKey = "refresh"
)

// RedisStore keeps the credentials in Redis under cred:<namespace>:<slot>.
// The namespace separates devices or profiles sharing one Redis.
type RedisStore struct {
	client    *redis.Client
	namespace string
}

func NewRedisStore(client *redis.Client, namespace string) *RedisStore {
	if namespace == "" {
		namespace = "default"
	}
	return &RedisStore{client: client, namespace: namespace}
}

func (s *RedisStore) Save(ctx context.Context, access, refresh string) error {
	if err := s.set(ctx, accessKey, access); err != nil {
		return fmt.Errorf("failed to store access token: %w", err)
	}
	if err := s.set(ctx, refreshKey, refresh); err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

func (s *RedisStore) Access(ctx context.Context) (string, error) {
	return s.get(ctx, accessKey)
}

func (s *RedisStore) Refresh(ctx context.Context) (string, error) {
	return s.get(ctx, refreshKey)
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key(accessKey), s.key(refreshKey)).Err(); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}

func (s *RedisStore) set(ctx context.Context, slot, value string) error {
	if value == "" {
		return s.client.Del(ctx, s.key(slot)).Err()
	}
	// No TTL: token lifetime is the backend's call, not the store's.
	return s.client.Set(ctx, s.key(slot), value, 0).Err()
}

func (s *RedisStore) get(ctx context.Context, slot string) (string, error) {
	v, err := s.client.Get(ctx, s.key(slot)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read credential: %w", err)
	}
	return v, nil
}

func (s *RedisStore) key(slot string) string {
	return fmt.Sprintf("cred:%s:%s", s.namespace, slot)
}
