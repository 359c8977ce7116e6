package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/stockinsight/pkg/config"
	"github.com/wyfcoding/stockinsight/pkg/logger"
	"github.com/wyfcoding/stockinsight/pkg/ratelimit"
)

// RateLimitKey 每个路由模板与客户端 IP 各自一份配额，/report 不会挤占 /fetch
func RateLimitKey(c *gin.Context) string {
	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	return "ratelimit:" + route + ":" + c.ClientIP()
}

// RateLimitMiddleware 限流器故障时放行
func RateLimitMiddleware(limiter ratelimit.RateLimiter, cfg config.RateLimitConfig) gin.HandlerFunc {
	limit := ratelimit.PerSecond(cfg.QPS, cfg.Burst)
	limitHeader := strconv.Itoa(limit.Burst)

	return func(c *gin.Context) {
		if !cfg.Enabled || limiter == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		res, err := limiter.Allow(ctx, RateLimitKey(c), limit)
		if err != nil {
			logger.Warn(ctx, "Rate limiter unavailable", "error", err)
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set("X-RateLimit-Limit", limitHeader)
		h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		h.Set("X-RateLimit-Reset", strconv.Itoa(int(res.ResetAfter.Round(time.Second)/time.Second)))

		if res.Allowed {
			c.Next()
			return
		}

		// 向上取整到秒，避免客户端在配额恢复前重试
		retry := int((res.RetryAfter + time.Second - 1) / time.Second)
		h.Set("Retry-After", strconv.Itoa(retry))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":       "Too Many Requests",
			"retry_after": res.RetryAfter.String(),
		})
	}
}
