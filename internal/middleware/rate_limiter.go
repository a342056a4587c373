package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter is a fixed-window in-memory limiter keyed by user or IP
type RateLimiter struct {
	limits map[string]*window
	mu     sync.Mutex

	maxRequests int
	window      time.Duration
	now         func() time.Time
}

type window struct {
	requests  int
	resetTime time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(maxRequests int, w time.Duration) *RateLimiter {
	return &RateLimiter{
		limits:      make(map[string]*window),
		maxRequests: maxRequests,
		window:      w,
		now:         time.Now,
	}
}

// Allow counts one request for key and reports whether it fits the window
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	limit, exists := rl.limits[key]
	if !exists || now.After(limit.resetTime) {
		rl.limits[key] = &window{requests: 1, resetTime: now.Add(rl.window)}
		return true
	}
	if limit.requests >= rl.maxRequests {
		return false
	}
	limit.requests++
	return true
}

// Sweep removes expired windows and returns how many were dropped
func (rl *RateLimiter) Sweep() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	dropped := 0
	for key, limit := range rl.limits {
		if now.After(limit.resetTime) {
			delete(rl.limits, key)
			dropped++
		}
	}
	return dropped
}

// Middleware limits authenticated callers by user id and others by IP
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if id := UserID(c); id != 0 {
			key = "user:" + strconv.FormatUint(uint64(id), 10)
		}
		if !rl.Allow(key) {
			c.Header("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			return
		}
		c.Next()
	}
}
