package middleware

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimiterMiddleware caps each client IP at limit requests per window
// using a redis counter. Redis failures fail open: sync clients retry
// aggressively after reconnecting and must not be locked out by an
// unhealthy cache.
func RateLimiterMiddleware(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ratelimit:" + c.ClientIP()

		count, err := rdb.Incr(c.Request.Context(), key).Result()
		if err != nil {
			log.Printf("[WARN] Rate limiter skipped, redis unavailable: %v", err)
			c.Next()
			return
		}

		// The first hit in a window owns the expiry. If setting it fails
		// the key would never expire, so drop it rather than leak it.
		if count == 1 {
			if err := rdb.Expire(c.Request.Context(), key, window).Err(); err != nil {
				log.Printf("[WARN] Rate limiter expire failed, dropping key: %v", err)
				rdb.Del(c.Request.Context(), key)
				c.Next()
				return
			}
		}

		ttl, err := rdb.TTL(c.Request.Context(), key).Result()
		if err != nil || ttl < 0 {
			ttl = window
		}

		remaining := int64(limit) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(ttl).Unix(), 10))

		if count > int64(limit) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":      "Too many requests",
				"retry_in_s": int(ttl.Seconds()),
			})
			return
		}

		c.Next()
	}
}
