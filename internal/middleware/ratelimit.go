package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter throttles requests per client IP. Used on the login route so
// credential guessing trips "too many attempts" instead of hitting bcrypt.
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	seen     map[string]time.Time
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
}

// NewRateLimiter allows limit requests per window with a burst of the same size
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		seen:     make(map[string]time.Time),
		limit:    rate.Every(window / time.Duration(limit)),
		burst:    limit,
	}
	return rl
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		rl.mu.Lock()
		lim, ok := rl.limiters[ip]
		if !ok {
			lim = rate.NewLimiter(rl.limit, rl.burst)
			rl.limiters[ip] = lim
		}
		rl.seen[ip] = time.Now()
		rl.mu.Unlock()

		if !lim.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many attempts, please try again later"})
			return
		}

		c.Next()
	}
}

// StartCleanup drops limiters for IPs idle longer than maxIdle
func (rl *RateLimiter) StartCleanup(interval, maxIdle time.Duration) {
	go func() {
		for {
			time.Sleep(interval)
			rl.mu.Lock()
			now := time.Now()
			for ip, last := range rl.seen {
				if now.Sub(last) > maxIdle {
					delete(rl.limiters, ip)
					delete(rl.seen, ip)
				}
			}
			rl.mu.Unlock()
		}
	}()
}
