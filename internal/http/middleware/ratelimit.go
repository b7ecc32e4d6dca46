package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type clientInfo struct {
	start time.Time
	count int
}

// Limiter is an in-memory fixed-window counter, used when Redis is not configured.
type Limiter struct {
	mu      sync.Mutex
	clients map[string]*clientInfo
	now     func() time.Time
}

func NewLimiter() *Limiter {
	return &Limiter{clients: make(map[string]*clientInfo), now: time.Now}
}

// Allow counts one hit for key and reports whether it is within max per window.
func (l *Limiter) Allow(key string, max int, window time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	ci, ok := l.clients[key]
	if !ok || now.Sub(ci.start) > window {
		l.clients[key] = &clientInfo{start: now, count: 1}
		return max > 0
	}
	ci.count++
	return ci.count <= max
}

// SimpleRateLimit blocks callers that send more than maxRequests per window.
// Callers are keyed by player when JWT ran first, otherwise by IP.
func SimpleRateLimit(l *Limiter, maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxRequests <= 0 {
			c.Next()
			return
		}
		if !l.Allow(playerKey(c), maxRequests, window) {
			RLBlocked.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		RLRequests.WithLabelValues(c.FullPath()).Inc()
		c.Next()
	}
}
