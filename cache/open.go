package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options 缓存后端配置
type Options struct {
	Backend        string // memory | file | badger | redis，空值为 memory
	Dir            string // file/badger 目录
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisRetention time.Duration
}

// Open 按配置打开缓存后端，返回的 close 函数总是非 nil
func Open(ctx context.Context, opt Options) (Store, func() error, error) {
	noop := func() error { return nil }

	switch opt.Backend {
	case "", "memory":
		return NewMemory(), noop, nil

	case "file":
		s, err := NewFileStore(opt.Dir)
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil

	case "badger":
		s, err := OpenBadger(opt.Dir)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     opt.RedisAddr,
			Password: opt.RedisPassword,
			DB:       opt.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, noop, fmt.Errorf("redis ping %s: %w", opt.RedisAddr, err)
		}
		s := NewRedisStore(client, opt.RedisRetention)
		return s, s.Close, nil

	default:
		return nil, noop, fmt.Errorf("unknown cache backend: %s", opt.Backend)
	}
}
