package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"econdash/backtest"
)

// Server HTTP服务器
type Server struct {
	engine *gin.Engine
	server *http.Server
	logger *zap.Logger
}

// Options 服务器依赖
type Options struct {
	Port       int
	Loader     SeriesLoader
	Backtests  *backtest.Service
	Registry   *prometheus.Registry
	Logger     *zap.Logger
	Forecaster string // 当前预测来源，用于状态接口
}

// NewServer 创建服务器
func NewServer(opt Options) *Server {
	logger := opt.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())
	engine.Use(loggerMiddleware(logger))

	s := &Server{
		engine: engine,
		logger: logger,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", opt.Port),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	s.setupRoutes(opt)
	return s
}

// Handler 返回路由，测试时直接使用
func (s *Server) Handler() http.Handler { return s.engine }

// setupRoutes 设置路由
func (s *Server) setupRoutes(opt Options) {
	handler := NewHandler(opt.Loader, opt.Backtests, opt.Forecaster)

	api := s.engine.Group("/api")
	{
		// 指标与序列
		api.GET("/indicators", handler.GetIndicators)
		api.GET("/series/:indicator", handler.GetSeries)

		// 回测
		api.POST("/backtest", handler.PostBacktest)
		api.GET("/backtest/:id", handler.GetBacktest)
		api.GET("/backtests", handler.ListBacktests)

		// 服务状态
		api.GET("/status", handler.GetStatus)
	}

	// 健康检查
	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Prometheus 指标
	if opt.Registry != nil {
		s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opt.Registry, promhttp.HandlerOpts{})))
	}
}

// Start 启动服务器
func (s *Server) Start() error {
	s.logger.Info("api listening",
		zap.String("addr", "http://localhost"+s.server.Addr),
		zap.Strings("routes", []string{
			"GET /api/indicators",
			"GET /api/series/:indicator?range=1Y|start=&end=",
			"POST /api/backtest",
			"GET /api/backtest/:id",
			"GET /api/backtests",
			"GET /api/status",
			"GET /metrics",
		}))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown 优雅关闭服务器
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// loggerMiddleware 日志中间件
func loggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

// corsMiddleware CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
