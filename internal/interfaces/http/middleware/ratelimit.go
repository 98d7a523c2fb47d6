package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/hireflow/backend/internal/interfaces/http/dto"
)

// RateLimiter keeps one token bucket per client key. Idle buckets expire
// after two windows.
type RateLimiter struct {
	limit   int
	every   rate.Limit
	buckets *gocache.Cache
}

// NewRateLimiter allows limit requests per window for every key, with bursts up to limit
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		every:   rate.Every(window / time.Duration(limit)),
		buckets: gocache.New(2*window, 2*window),
	}
}

func (rl *RateLimiter) bucket(key string) *rate.Limiter {
	if b, ok := rl.buckets.Get(key); ok {
		rl.buckets.SetDefault(key, b)
		return b.(*rate.Limiter)
	}
	b := rate.NewLimiter(rl.every, rl.limit)
	// a concurrent first request may win the Add; use whichever landed
	if err := rl.buckets.Add(key, b, gocache.DefaultExpiration); err != nil {
		if existing, ok := rl.buckets.Get(key); ok {
			return existing.(*rate.Limiter)
		}
	}
	return b
}

// Allow checks if a request from the given key should be allowed
func (rl *RateLimiter) Allow(key string) bool {
	return rl.bucket(key).Allow()
}

// Remaining returns the number of whole tokens left for the key
func (rl *RateLimiter) Remaining(key string) int {
	return max(int(rl.bucket(key).Tokens()), 0)
}

// RateLimit limits requests per client IP
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return RateLimitByKey(limiter, func(c *gin.Context) string { return c.ClientIP() })
}

// RateLimitByKey limits requests per key returned by keyFunc
func RateLimitByKey(limiter *RateLimiter, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFunc(c)
		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.limit))

		if !limiter.Allow(key) {
			c.Header("X-RateLimit-Remaining", "0")
			abortWithError(c, http.StatusTooManyRequests, dto.ErrCodeRateLimited,
				"Too many requests. Please try again later.")
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(limiter.Remaining(key)))
		c.Next()
	}
}
