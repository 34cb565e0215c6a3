package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/docsum/transcript-summary/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const rateLimitWindow = time.Minute

// WindowCounter counts hits per key within a fixed window.
type WindowCounter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimit returns a middleware that allows at most perMinute requests per client
// IP in each fixed one-minute window. Counter failures let the request through.
func RateLimit(counter WindowCounter, perMinute int, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if counter == nil || perMinute <= 0 {
			c.Next()
			return
		}

		ip := c.ClientIP()
		if ip == "" {
			c.Next()
			return
		}

		key := rateLimitKey(ip, time.Now())
		count, err := counter.IncrWindow(c.Request.Context(), key, rateLimitWindow)
		if err != nil {
			log.Warn("rate limit counter unavailable", zap.String("ip", ip), zap.Error(err))
			c.Next()
			return
		}

		if count > int64(perMinute) {
			log.Warn("rate limit exceeded",
				zap.String("ip", ip),
				zap.String("path", c.Request.URL.Path),
				zap.Int64("count", count),
			)
			c.Header("Retry-After", "60")
			response.TooManyRequests(c, "Too many summarization requests, please wait a minute")
			return
		}

		c.Next()
	}
}

func rateLimitKey(ip string, now time.Time) string {
	return fmt.Sprintf("transcript:rate_limit:%s:%d", ip, now.Unix()/int64(rateLimitWindow/time.Second))
}
