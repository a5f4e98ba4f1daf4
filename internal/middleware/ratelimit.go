package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dumeirei/hotel-booking-core/internal/common/cache"
	"github.com/dumeirei/hotel-booking-core/internal/common/response"
)

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	RedisClient *redis.Client
	Logger      *zap.Logger
	Scope       string // 计数键的作用域，区分不同路由组
	Limit       int
	Window      time.Duration
	KeyFunc     func(*gin.Context) string // 默认按客户端 IP
}

// RateLimit 基于 Redis 固定窗口的限流中间件
// Redis 不可用时放行并记录告警
func RateLimit(config *RateLimitConfig) gin.HandlerFunc {
	keyFunc := config.KeyFunc
	if keyFunc == nil {
		keyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}
	limit := strconv.Itoa(config.Limit)

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := cache.BuildKey(cache.KeyPrefixRateLimit, config.Scope, keyFunc(c))

		count, err := config.RedisClient.Incr(ctx, key).Result()
		if err == nil && count == 1 {
			err = config.RedisClient.Expire(ctx, key, config.Window).Err()
		}
		if err != nil {
			if config.Logger != nil {
				config.Logger.Warn("限流计数失败，已放行", zap.String("key", key), zap.Error(err))
			}
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", limit)
		if count > int64(config.Limit) {
			ttl, _ := config.RedisClient.TTL(ctx, key).Result()
			if ttl < time.Second {
				ttl = time.Second
			}
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", strconv.Itoa(int(ttl.Seconds())))
			response.TooManyRequests(c, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.FormatInt(int64(config.Limit)-count, 10))
		c.Next()
	}
}

// PerMinute 每个客户端 IP 每分钟最多 limit 次
func PerMinute(client *redis.Client, logger *zap.Logger, scope string, limit int) gin.HandlerFunc {
	return RateLimit(&RateLimitConfig{
		RedisClient: client,
		Logger:      logger,
		Scope:       scope,
		Limit:       limit,
		Window:      time.Minute,
	})
}
