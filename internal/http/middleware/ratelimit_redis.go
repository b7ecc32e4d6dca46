package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"economy_server/internal/logger"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

// RedisRateLimit implements a fixed-window limiter using INCR/EXPIRE.
// Key format: <prefix>:<window_seconds>:<caller>. A nil client or a Redis
// error lets the request through.
func RedisRateLimit(client *redis.Client, prefix string, maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || maxRequests <= 0 {
			c.Next()
			return
		}

		key := prefix + ":" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + playerKey(c)
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		val, err := client.Incr(ctx, key).Result()
		if err != nil {
			logger.Warn("rate limiter: redis error", "error", err)
			c.Header("X-RateLimit-Error", "redis-error")
			c.Next()
			return
		}
		if val == 1 {
			client.Expire(ctx, key, window)
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(maxRequests)-val), 10))

		if val > int64(maxRequests) {
			RLBlocked.WithLabelValues(prefix + ":" + c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": int(window.Seconds()),
			})
			return
		}

		RLRequests.WithLabelValues(prefix + ":" + c.FullPath()).Inc()
		c.Next()
	}
}

// RateLimit picks the Redis limiter when a client is configured and the
// in-memory one otherwise.
func RateLimit(client *redis.Client, fallback *Limiter, prefix string, maxRequests int, window time.Duration) gin.HandlerFunc {
	if client != nil {
		return RedisRateLimit(client, prefix, maxRequests, window)
	}
	return SimpleRateLimit(fallback, maxRequests, window)
}
