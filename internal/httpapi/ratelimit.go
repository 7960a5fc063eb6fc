package httpapi

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"comment-lens/shared/apperrors"
)

// entry tracks request count and window end for a single key.
type entry struct {
	count     int
	windowEnd time.Time
}

// rateLimiter is an in-memory fixed-window limiter keyed by client IP. It
// only guards the run-starting endpoint, so the map stays small; a
// background sweep drops expired windows anyway.
type rateLimiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	max     int
	window  time.Duration
}

func newRateLimiter(max int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		entries: make(map[string]*entry),
		max:     max,
		window:  window,
	}
	go rl.cleanup()
	return rl
}

// allow consumes one request for key and reports whether it fits in the
// current window.
func (rl *rateLimiter) allow(key string) (ok bool, remaining int, resetAt time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	e, exists := rl.entries[key]
	if !exists || now.After(e.windowEnd) {
		e = &entry{count: 1, windowEnd: now.Add(rl.window)}
		rl.entries[key] = e
		return true, rl.max - 1, e.windowEnd
	}

	e.count++
	remaining = rl.max - e.count
	if remaining < 0 {
		return false, 0, e.windowEnd
	}
	return true, remaining, e.windowEnd
}

func (rl *rateLimiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, remaining, resetAt := rl.allow("ip:" + c.ClientIP())

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", rl.max))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", resetAt.Unix()))

		if !ok {
			retryAfter := int(time.Until(resetAt).Seconds()) + 1
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorBody(
				apperrors.KindRateLimited,
				fmt.Sprintf("too many requests, try again in %d seconds", retryAfter),
			))
			return
		}
		c.Next()
	}
}

func (rl *rateLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for key, e := range rl.entries {
			if now.After(e.windowEnd) {
				delete(rl.entries, key)
			}
		}
		rl.mu.Unlock()
	}
}
