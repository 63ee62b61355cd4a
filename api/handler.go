package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"econdash/backtest"
	"econdash/dates"
	"econdash/fetcher"
	"econdash/series"
)

// SeriesLoader 序列加载，*series.Loader 实现
type SeriesLoader interface {
	Load(ctx context.Context, key string) (series.Result, error)
	LoadRange(ctx context.Context, key string, start, end time.Time) (series.Result, error)
}

// Handler API处理器
type Handler struct {
	loader     SeriesLoader
	backtests  *backtest.Service
	forecaster string
}

// NewHandler 创建处理器
func NewHandler(l SeriesLoader, b *backtest.Service, forecaster string) *Handler {
	return &Handler{loader: l, backtests: b, forecaster: forecaster}
}

// GetIndicators 获取指标列表
func (h *Handler) GetIndicators(c *gin.Context) {
	inds := fetcher.Indicators()
	c.JSON(http.StatusOK, gin.H{
		"code":  0,
		"count": len(inds),
		"data":  inds,
	})
}

// GetSeries 获取指标序列
// range=3M/1Y/3Y/5Y/10Y 取最近区间；否则按 start/end 截取，均为空时返回全部
func (h *Handler) GetSeries(c *gin.Context) {
	key := c.Param("indicator")
	ctx := c.Request.Context()

	var (
		res series.Result
		err error
	)
	if rng := strings.TrimSpace(c.Query("range")); rng != "" {
		res, err = h.loader.Load(ctx, key)
		if err == nil {
			data, ok := series.TailRange(res.Data, rng)
			if !ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": "无效的区间: " + rng})
				return
			}
			res.Data = data
		}
	} else {
		start, end, perr := parseWindow(c.Query("start"), c.Query("end"))
		if perr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": perr.Error()})
			return
		}
		res, err = h.loader.LoadRange(ctx, key, start, end)
	}
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error(), "indicator": key})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": gin.H{
			"indicator":    res.Indicator,
			"observations": res.Data,
			"count":        len(res.Data),
			"updated_at":   res.UpdatedAt,
			"stale":        res.Stale,
			"placeholder":  res.Placeholder,
		},
	})
}

// PostBacktest 运行回测，同步返回结果
func (h *Handler) PostBacktest(c *gin.Context) {
	var req backtest.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数错误: " + err.Error()})
		return
	}

	run, err := h.backtests.RunIndicator(c.Request.Context(), req, nil)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": run,
	})
}

// GetBacktest 获取单次回测结果
func (h *Handler) GetBacktest(c *gin.Context) {
	id := c.Param("id")
	run, ok := h.backtests.Store().Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "未找到该回测",
			"id":    id,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": run,
	})
}

// ListBacktests 最近的回测，新的在前
func (h *Handler) ListBacktests(c *gin.Context) {
	runs := h.backtests.Store().List()
	c.JSON(http.StatusOK, gin.H{
		"code":  0,
		"count": len(runs),
		"data":  runs,
	})
}

// GetStatus 获取服务状态
func (h *Handler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": gin.H{
			"forecaster": h.forecaster,
			"indicators": len(fetcher.Keys()),
			"runs":       len(h.backtests.Store().List()),
		},
	})
}

// parseWindow 解析 start/end，空值表示不限
func parseWindow(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	if s := strings.TrimSpace(startStr); s != "" {
		t, ok := dates.Parse(s)
		if !ok {
			return time.Time{}, time.Time{}, errors.New("无效的开始日期: " + s)
		}
		start = t
	}
	if s := strings.TrimSpace(endStr); s != "" {
		t, ok := dates.Parse(s)
		if !ok {
			return time.Time{}, time.Time{}, errors.New("无效的结束日期: " + s)
		}
		end = t
	}
	if !start.IsZero() && !end.IsZero() && start.After(end) {
		return time.Time{}, time.Time{}, backtest.ErrInvalidRange
	}
	return start, end, nil
}

// statusFor 错误到 HTTP 状态码的映射
func statusFor(err error) int {
	switch {
	case errors.Is(err, backtest.ErrInvalidRange),
		errors.Is(err, backtest.ErrInvalidDate),
		errors.Is(err, backtest.ErrInvalidSampleSize):
		return http.StatusBadRequest
	case errors.Is(err, fetcher.ErrUnknownIndicator):
		return http.StatusNotFound
	case errors.Is(err, backtest.ErrNoData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, backtest.ErrSourceUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
