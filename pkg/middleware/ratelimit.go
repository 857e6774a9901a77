package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/librarylending/pkg/logger"
	"github.com/wyfcoding/librarylending/pkg/ratelimit"
)

// RateLimit 按 key 函数限流，limiter 为 nil 时直接放行。
// 限流检查自身出错时放行请求，可用性优先于严格限流。
func RateLimit(limiter ratelimit.RateLimiter, limit ratelimit.Limit, keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		res, err := limiter.Allow(c.Request.Context(), keyFn(c), limit)
		if err != nil {
			logger.Warn(c.Request.Context(), "rate limit check failed", "error", err)
			c.Next()
			return
		}

		if !res.Allowed {
			c.Header("Retry-After", fmt.Sprintf("%.0f", res.RetryAfter.Seconds()))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}

		c.Next()
	}
}

// ByClientIP 以客户端 IP 作为限流 key
func ByClientIP(prefix string) func(*gin.Context) string {
	return func(c *gin.Context) string {
		return prefix + ":" + c.ClientIP()
	}
}
