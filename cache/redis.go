package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore 基于 Redis 的共享缓存
// retention 为键在 Redis 中的保留时长，需大于 TTL 才能在数据源失败时回退到过期数据；0 表示不过期
type RedisStore struct {
	client    *redis.Client
	retention time.Duration
}

// NewRedisStore 创建 Redis 缓存
func NewRedisStore(client *redis.Client, retention time.Duration) *RedisStore {
	return &RedisStore{client: client, retention: retention}
}

func (s *RedisStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	b, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	var e Entry
	if err := json.Unmarshal(b, &e); err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, e Entry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, b, s.retention).Err()
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// Close 关闭连接
func (s *RedisStore) Close() error {
	return s.client.Close()
}
