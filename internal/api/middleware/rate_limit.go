package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/maximanoob01/hostel-gate-checkk/pkg/redis"
	"github.com/maximanoob01/hostel-gate-checkk/pkg/response"
)

// RateLimit 基于 Redis 滑动窗口的速率限制中间件
// limit: 窗口内允许的最大请求数
// window: 滑动窗口时长
// rdb 为 nil 或 limit <= 0 时降级放行
func RateLimit(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || limit <= 0 {
			c.Next()
			return
		}

		key := fmt.Sprintf("gate:rate_limit:%s:%s", c.ClientIP(), c.FullPath())
		allowed, err := rdb.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			// Redis 出错时降级放行
			c.Next()
			return
		}

		if !allowed {
			if strings.HasPrefix(c.Request.URL.Path, "/api/") {
				response.Error(c, http.StatusTooManyRequests, response.CodeRateLimited)
			} else {
				c.String(http.StatusTooManyRequests, "Too many attempts. Please try again later.")
			}
			c.Abort()
			return
		}

		c.Next()
	}
}
