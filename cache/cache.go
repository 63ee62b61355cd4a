package cache

import (
	"context"
	"time"

	"go.uber.org/zap"

	"econdash/internal/telemetry"
	"econdash/model"
)

// DefaultTTL 缓存有效期
const DefaultTTL = 24 * time.Hour

const keyPrefix = "chartData_"

// Entry 缓存条目
type Entry struct {
	Data      []model.Observation `json:"data"`
	Timestamp time.Time           `json:"timestamp"`
}

// Store 缓存后端
// Get 在键不存在时返回 ok=false 且 err=nil
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, e Entry) error
	Delete(ctx context.Context, key string) error
}

// TTLCache 带过期时间的观测序列缓存
// 缓存只是建议性的：后端错误记录日志后按未命中处理
// GetCachedData 读到过期条目时删除它；Peek 不删除，过期条目保留到下次成功拉取覆盖，
// 供数据源失败时作为 stale 数据返回
type TTLCache struct {
	store  Store
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// NewTTLCache 创建缓存
func NewTTLCache(store Store, ttl time.Duration, logger *zap.Logger) *TTLCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TTLCache{
		store:  store,
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
}

// SetClock 替换时钟（测试用）
func (c *TTLCache) SetClock(now func() time.Time) {
	c.now = now
}

// TTL 返回有效期
func (c *TTLCache) TTL() time.Duration {
	return c.ttl
}

// GetCachedData 读取未过期数据；过期条目在读取时删除并返回 nil
func (c *TTLCache) GetCachedData(ctx context.Context, key string) []model.Observation {
	e, ok := c.Peek(ctx, key)
	if !ok {
		telemetry.CacheLookups.WithLabelValues("miss").Inc()
		return nil
	}
	if !c.Fresh(e) {
		telemetry.CacheLookups.WithLabelValues("stale").Inc()
		if err := c.store.Delete(ctx, keyPrefix+key); err != nil {
			c.logger.Warn("cache delete failed", zap.String("key", key), zap.Error(err))
		}
		return nil
	}
	telemetry.CacheLookups.WithLabelValues("hit").Inc()
	return model.Clone(e.Data)
}

// SetCachedData 写入数据并记录当前时间
func (c *TTLCache) SetCachedData(ctx context.Context, key string, data []model.Observation) {
	e := Entry{Data: model.Clone(data), Timestamp: c.now()}
	if err := c.store.Set(ctx, keyPrefix+key, e); err != nil {
		c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Peek 读取条目但不检查有效期，用于数据源失败时回退到过期数据
func (c *TTLCache) Peek(ctx context.Context, key string) (Entry, bool) {
	e, ok, err := c.store.Get(ctx, keyPrefix+key)
	if err != nil {
		c.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return Entry{}, false
	}
	return e, ok
}

// Fresh 条目是否仍在有效期内
func (c *TTLCache) Fresh(e Entry) bool {
	return c.now().Sub(e.Timestamp) < c.ttl
}
