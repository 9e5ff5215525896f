package handler

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const limiterTTL = 5 * time.Minute

type rateLimiter struct {
	limiter *rate.Limiter
	expires time.Time
}

// RateLimiter 按用户（未登录时按 IP）限制写入频率
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rateLimiter
	limit    rate.Limit
	burst    int
	now      func() time.Time
}

// NewRateLimiter 每分钟允许 perMinute 次，突发为一半
func NewRateLimiter(perMinute int) *RateLimiter {
	perMinute = max(perMinute, 1)
	return &RateLimiter{
		limiters: make(map[string]*rateLimiter),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    max(perMinute/2, 1),
		now:      time.Now,
	}
}

// Middleware 返回 gin 中间件，超限时返回 429
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.allow(limiterKey(c)) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "请求过于频繁，请稍后再试"})
			return
		}
		c.Next()
	}
}

func (l *RateLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for k, entry := range l.limiters {
		if now.After(entry.expires) {
			delete(l.limiters, k)
		}
	}

	entry, ok := l.limiters[key]
	if !ok {
		entry = &rateLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = entry
	}
	entry.expires = now.Add(limiterTTL)
	return entry.limiter.AllowN(now, 1)
}

func limiterKey(c *gin.Context) string {
	if userID := currentUserID(c); userID > 0 {
		return fmt.Sprintf("user:%d", userID)
	}
	return "ip:" + c.ClientIP()
}
