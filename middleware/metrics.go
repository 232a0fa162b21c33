package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/civicpulse/civicpulse/utils"
)

// RequestCounter records successful API requests in Redis as per-day
// counters, which the stats endpoint surfaces as daily activity. Counting is
// best-effort and never delays the response.
func RequestCounter() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method != "GET" {
			return
		}
		status := c.Writer.Status()
		if status < 200 || status >= 400 {
			return
		}

		path := c.Request.URL.Path
		if path == "/health" || strings.Contains(path, "/stats") || strings.HasPrefix(path, "/static/") {
			return
		}

		rc := utils.GetRedis()
		if rc == nil {
			return
		}
		key := "metrics:requests:" + time.Now().Format("2006-01-02")
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := rc.Incr(ctx, key).Err(); err == nil {
				// Keep a rolling month of counters.
				rc.Expire(ctx, key, 31*24*time.Hour)
			}
		}()
	}
}

// RequestsToday returns today's recorded request count.
func RequestsToday() int64 {
	rc := utils.GetRedis()
	if rc == nil {
		return 0
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	n, err := rc.Get(ctx, "metrics:requests:"+time.Now().Format("2006-01-02")).Int64()
	if err != nil {
		return 0
	}
	return n
}
