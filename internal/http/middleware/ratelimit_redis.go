package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"pulse_ledger/internal/logger"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window limiter on Redis INCR/EXPIRE, shared by all
// instances. Without Redis it falls back to per-process token buckets.
type RateLimiter struct {
	client *redis.Client
}

// NewRateLimiter accepts a nil client.
func NewRateLimiter(client *redis.Client) *RateLimiter {
	return &RateLimiter{client: client}
}

// KeyFunc extracts the identity a limit applies to; "" skips limiting.
type KeyFunc func(c *gin.Context) string

func ByIP(c *gin.Context) string { return c.ClientIP() }

// ByAccount requires Auth to run first.
func ByAccount(c *gin.Context) string {
	s, ok := SessionFrom(c)
	if !ok {
		return ""
	}
	return string(s.Network) + ":" + string(s.Account)
}

// Limit allows maxRequests per window for each key under the name scope.
func (l *RateLimiter) Limit(name string, maxRequests int, window time.Duration, key KeyFunc) gin.HandlerFunc {
	local := newLocalLimiter(maxRequests, window)
	windowSec := strconv.FormatInt(int64(window.Seconds()), 10)

	return func(c *gin.Context) {
		ident := key(c)
		if ident == "" {
			c.Next()
			return
		}
		endpoint := name + ":" + c.FullPath()

		allowed := true
		if l.client == nil {
			allowed = local.allow(ident, time.Now())
		} else {
			count, err := l.incr(c.Request.Context(), "rl:"+name+":"+windowSec+":"+ident, window)
			if err != nil {
				// fail-open on Redis errors
				logger.FromContext(c.Request.Context()).Warn("rate limiter redis error", "error", err)
				c.Header("X-RateLimit-Error", "redis-error")
			} else {
				allowed = count <= int64(maxRequests)
				c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
				c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(maxRequests)-count), 10))
			}
		}

		if !allowed {
			RLBlocked.WithLabelValues(endpoint).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": int(window.Seconds()),
			})
			return
		}
		RLRequests.WithLabelValues(endpoint).Inc()
		c.Next()
	}
}

func (l *RateLimiter) incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	val, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if val == 1 {
		l.client.Expire(ctx, key, window)
	}
	return val, nil
}
