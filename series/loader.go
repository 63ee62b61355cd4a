package series

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"econdash/cache"
	"econdash/fetcher"
	"econdash/internal/telemetry"
	"econdash/model"
)

// placeholderMonths 数据源与缓存都不可用时生成的占位月数
const placeholderMonths = 12

// fetchTimeout 合并拉取的上限，与发起方的取消无关
const fetchTimeout = 30 * time.Second

// Source 原始数据源
type Source interface {
	Fetch(ctx context.Context, ind fetcher.Indicator) ([]model.RawObservation, error)
}

// Result 一次加载的结果
type Result struct {
	Indicator   fetcher.Indicator   `json:"indicator"`
	Data        []model.Observation `json:"data"`
	UpdatedAt   time.Time           `json:"updated_at"`
	Stale       bool                `json:"stale"`       // 数据源失败，使用过期缓存
	Placeholder bool                `json:"placeholder"` // 数据源与缓存均不可用，使用占位数据
}

// Loader 指标配置 -> 拉取 -> 缓存 -> 区间截取
type Loader struct {
	source Source
	cache  *cache.TTLCache
	logger *zap.Logger
	group  singleflight.Group
	flight sync.WaitGroup
	now    func() time.Time
}

// NewLoader 创建加载器
func NewLoader(src Source, c *cache.TTLCache, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		source: src,
		cache:  c,
		logger: logger,
		now:    time.Now,
	}
}

// Load 加载指标全部历史数据
// 数据源失败不会返回错误：依次回退到过期缓存、占位数据；仅未知指标与调用方取消返回错误
func (l *Loader) Load(ctx context.Context, key string) (Result, error) {
	ind, err := fetcher.Lookup(key)
	if err != nil {
		return Result{}, err
	}

	entry, cached := l.cache.Peek(ctx, ind.Key)
	if cached && l.cache.Fresh(entry) {
		telemetry.CacheLookups.WithLabelValues("hit").Inc()
		return Result{Indicator: ind, Data: entry.Data, UpdatedAt: entry.Timestamp}, nil
	}
	telemetry.CacheLookups.WithLabelValues("miss").Inc()

	data, err := l.fetch(ctx, ind)
	if err == nil {
		return Result{Indicator: ind, Data: data, UpdatedAt: l.now()}, nil
	}
	// 调用方已取消时不降级
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Result{}, ctxErr
	}

	if cached {
		l.logger.Warn("source fetch failed, serving stale cache",
			zap.String("indicator", ind.Key),
			zap.Time("cached_at", entry.Timestamp),
			zap.Error(err))
		telemetry.SeriesFallbacks.WithLabelValues(ind.Key, "stale").Inc()
		return Result{Indicator: ind, Data: entry.Data, UpdatedAt: entry.Timestamp, Stale: true}, nil
	}

	l.logger.Warn("source fetch failed, serving placeholder data",
		zap.String("indicator", ind.Key),
		zap.Error(err))
	telemetry.SeriesFallbacks.WithLabelValues(ind.Key, "placeholder").Inc()
	now := l.now()
	return Result{Indicator: ind, Data: Placeholder(now, placeholderMonths), UpdatedAt: now, Placeholder: true}, nil
}

// Refresh 忽略缓存新鲜度直接拉取并写入缓存，失败时缓存保持不变
func (l *Loader) Refresh(ctx context.Context, key string) (int, error) {
	ind, err := fetcher.Lookup(key)
	if err != nil {
		return 0, err
	}
	data, err := l.fetch(ctx, ind)
	if err != nil {
		return 0, err
	}
	return len(data), nil
}

// fetch 拉取并写缓存，同一指标的并发请求合并为一次
// 合并的拉取不随任一调用方取消；调用方取消时只是自己提前返回
func (l *Loader) fetch(ctx context.Context, ind fetcher.Indicator) ([]model.Observation, error) {
	l.flight.Add(1)
	ch := l.group.DoChan(ind.Key, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()
		raw, err := l.source.Fetch(fctx, ind)
		telemetry.RecordFetch(ind.Key, err)
		if err != nil {
			return nil, err
		}
		data := Normalize(raw)
		l.cache.SetCachedData(fctx, ind.Key, data)
		return data, nil
	})

	select {
	case <-ctx.Done():
		go func() {
			<-ch
			l.flight.Done()
		}()
		return nil, ctx.Err()
	case res := <-ch:
		l.flight.Done()
		if res.Err != nil {
			return nil, res.Err
		}
		return model.Clone(res.Val.([]model.Observation)), nil
	}
}

// Wait 等待进行中的拉取结束，关闭缓存前调用
func (l *Loader) Wait() {
	l.flight.Wait()
}

// LoadRange 加载后按区间截取
func (l *Loader) LoadRange(ctx context.Context, key string, start, end time.Time) (Result, error) {
	res, err := l.Load(ctx, key)
	if err != nil {
		return Result{}, err
	}
	res.Data = Slice(res.Data, start, end)
	return res, nil
}
