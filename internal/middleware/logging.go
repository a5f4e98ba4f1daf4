package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	commonMiddleware "github.com/dumeirei/hotel-booking-core/internal/common/middleware"
)

// DefaultSlowThreshold 超过该耗时的成功请求按 Warn 记录
const DefaultSlowThreshold = 2 * time.Second

// LoggingConfig 访问日志配置
type LoggingConfig struct {
	Logger        *zap.Logger
	SkipPaths     []string
	SlowThreshold time.Duration
}

// DefaultLoggingConfig 默认跳过探活与指标接口
func DefaultLoggingConfig(logger *zap.Logger) *LoggingConfig {
	return &LoggingConfig{
		Logger:        logger,
		SkipPaths:     []string{"/health", "/ping", "/ready", "/metrics"},
		SlowThreshold: DefaultSlowThreshold,
	}
}

// Logging 访问日志中间件
func Logging(config *LoggingConfig) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skip[p] = struct{}{}
	}
	slow := config.SlowThreshold
	if slow <= 0 {
		slow = DefaultSlowThreshold
	}
	log := config.Logger.Named("access")

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		status := c.Writer.Status()
		level := accessLevel(status, latency, slow)
		if ce := log.Check(level, "HTTP Request"); ce != nil {
			ce.Write(accessFields(c, status, latency)...)
		}
	}
}

// accessLevel 5xx 记 Error，4xx 或慢请求记 Warn
func accessLevel(status int, latency, slow time.Duration) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status >= http.StatusBadRequest, latency >= slow:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}

func accessFields(c *gin.Context, status int, latency time.Duration) []zap.Field {
	fields := []zap.Field{
		zap.String("request_id", GetRequestID(c)),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("route", c.FullPath()),
		zap.Int("status", status),
		zap.Duration("latency", latency),
		zap.String("ip", c.ClientIP()),
	}
	if q := c.Request.URL.RawQuery; q != "" {
		fields = append(fields, zap.String("query", q))
	}
	if traceID := commonMiddleware.GetTraceID(c); traceID != "" {
		fields = append(fields, zap.String("trace_id", traceID))
	}
	if len(c.Errors) > 0 {
		fields = append(fields, zap.String("errors", c.Errors.String()))
	}
	return fields
}

// AccessLog 默认配置的访问日志
func AccessLog(logger *zap.Logger) gin.HandlerFunc {
	return Logging(DefaultLoggingConfig(logger))
}
