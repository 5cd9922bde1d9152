// internal/server/middleware.go - 中间件定义
package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"leverage/internal/errs"
	"leverage/internal/handler"
	"leverage/internal/metrics"
	"leverage/internal/service"
	"leverage/pkg/logger"
	"leverage/pkg/response"
)

// RecoveryMiddleware panic恢复中间件
func RecoveryMiddleware(logger logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("panic recovered: %s %s: %v", c.Request.Method, c.Request.URL.Path, recovered)
		response.Fail(c, http.StatusInternalServerError, response.CodeInternal, "internal server error")
		c.Abort()
	})
}

// LoggingMiddleware 请求日志中间件
func LoggingMiddleware(logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		// 处理请求
		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()
		errorMessage := c.Errors.ByType(gin.ErrorTypePrivate).String()

		if raw != "" {
			path = path + "?" + raw
		}

		logger.Info("[GIN] %s %s %d %s %s %s",
			c.Request.Method,
			path,
			statusCode,
			latency,
			c.ClientIP(),
			errorMessage,
		)
	}
}

// MetricsMiddleware 请求指标中间件，按路由模板聚合
func MetricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

// CORSMiddleware CORS中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, Authorization, "+handler.SessionHeader)
		c.Header("Access-Control-Expose-Headers", handler.SessionHeader)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// SecurityMiddleware 安全中间件
func SecurityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		c.Next()
	}
}

// RateLimitMiddleware 限流中间件，所有请求共享一个令牌桶；limit<=0 时不限流
func RateLimitMiddleware(limit float64, burst int, logger logger.Logger) gin.HandlerFunc {
	if limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	limiter := rate.NewLimiter(rate.Limit(limit), burst)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			logger.Warn("rate limit exceeded: %s %s", c.Request.Method, c.Request.URL.Path)
			response.Fail(c, http.StatusTooManyRequests, response.CodeRateLimited, "too many requests")
			c.Abort()
			return
		}
		c.Next()
	}
}

// SessionMiddleware resolves X-Session-Id to a user. Unknown sessions are
// treated as anonymous.
func SessionMiddleware(users service.UserService, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(handler.SessionHeader)
		if id == "" {
			c.Next()
			return
		}
		user, err := users.Session(c.Request.Context(), id)
		switch {
		case err == nil:
			c.Set(handler.SessionUserKey, user)
		case errors.Is(err, errs.ErrNotFound):
			logger.Debug("unknown session %s", id)
		default:
			_ = c.Error(fmt.Errorf("resolve session: %w", err))
			logger.Error("failed to resolve session %s: %v", id, err)
		}
		c.Next()
	}
}
