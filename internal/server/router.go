// internal/server/router.go - 路由配置和服务器初始化
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"leverage/internal/config"
	"leverage/internal/handler"
	"leverage/internal/metrics"
	"leverage/internal/service"
	"leverage/pkg/logger"
	"leverage/pkg/response"
)

// Server 服务器接口
type Server interface {
	Start() error
	Shutdown(ctx context.Context) error
	Handler() http.Handler
}

// Handlers groups the HTTP handlers mounted under /api.
type Handlers struct {
	Project *handler.ProjectHandler
	Catalog *handler.CatalogHandler
	Demo    *handler.DemoHandler
}

// NewServer 创建新的HTTP服务器，路由在创建时即完成注册
func NewServer(
	cfg config.ConfigServer,
	handlers Handlers,
	users service.UserService,
	metrics *metrics.Metrics,
	logger logger.Logger,
) Server {
	s := &server{
		config:   cfg,
		handlers: handlers,
		users:    users,
		metrics:  metrics,
		logger:   logger,
	}
	s.engine = gin.New()
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

type server struct {
	engine     *gin.Engine
	config     config.ConfigServer
	handlers   Handlers
	users      service.UserService
	metrics    *metrics.Metrics
	logger     logger.Logger
	httpServer *http.Server
}

// Start 启动服务器，阻塞直到关闭
func (s *server) Start() error {
	s.httpServer = &http.Server{
		Addr:           s.config.ListenAddr,
		Handler:        s.engine,
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	s.logger.Info("starting HTTP server on %s", s.config.ListenAddr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 优雅关闭服务器
func (s *server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		s.logger.Info("shutting down HTTP server")
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// Handler 返回路由引擎（用于测试）
func (s *server) Handler() http.Handler {
	return s.engine
}

// setupMiddleware 设置中间件
func (s *server) setupMiddleware() {
	s.engine.Use(RecoveryMiddleware(s.logger))
	s.engine.Use(LoggingMiddleware(s.logger))
	s.engine.Use(MetricsMiddleware(s.metrics))
	s.engine.Use(CORSMiddleware())
	s.engine.Use(SecurityMiddleware())

	// 健康检查
	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"time":    time.Now().Format(time.RFC3339),
		})
	})
	s.engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))
}

// setupRoutes 设置路由
func (s *server) setupRoutes() {
	api := s.engine.Group("/api",
		RateLimitMiddleware(s.config.RateLimit, s.config.RateBurst, s.logger),
		SessionMiddleware(s.users, s.logger),
	)
	SetupProjectRoutes(api, s.handlers.Project)
	SetupCatalogRoutes(api, s.handlers.Catalog)
	SetupDemoRoutes(api, s.handlers.Demo)

	// 404处理
	s.engine.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, response.CodeNotFound, "endpoint not found")
	})

	// 405处理
	s.engine.HandleMethodNotAllowed = true
	s.engine.NoMethod(func(c *gin.Context) {
		response.Fail(c, http.StatusMethodNotAllowed, response.CodeInvalidInput, "method not allowed")
	})
}
