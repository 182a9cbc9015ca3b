package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis_rate/v10"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/lumenshare/cardledger/internal/adapter"
	"github.com/lumenshare/cardledger/internal/logger"
)

const rateLimitKeyPrefix = "cardledger:limiter:"

// WriteRateLimit returns a gin middleware throttling write endpoints per
// caller. The distributed limiter in Redis is authoritative; when Redis
// is unreachable the middleware falls back to per-process local limiters
// at the same rate rather than failing open or closed.
func WriteRateLimit(rc adapter.RedisClient, perMinute int) gin.HandlerFunc {
	if perMinute <= 0 {
		perMinute = 60
	}

	var limiter adapter.RedisRateLimiter
	if rc != nil {
		limiter = rc.NewRateLimiter()
	}

	var mu sync.Mutex
	local := make(map[string]*rate.Limiter)

	localFor := func(key string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		l, ok := local[key]
		if !ok {
			l = rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), perMinute)
			local[key] = l
		}
		return l
	}

	return func(c *gin.Context) {
		key := callerKey(c)

		if limiter != nil {
			res, err := limiter.Allow(c.Request.Context(), rateLimitKeyPrefix+key, redis_rate.PerMinute(perMinute))
			if err == nil {
				if res.Allowed == 0 {
					tooManyRequests(c, res.RetryAfter.Seconds())
					return
				}
				c.Next()
				return
			}
			logger.Warn("Redis rate limiter error, falling back to local",
				zap.String("key", key),
				zap.Error(err),
			)
		}

		if !localFor(key).Allow() {
			tooManyRequests(c, 1)
			return
		}

		c.Next()
	}
}

// callerKey identifies the caller for throttling: the authenticated
// subject when present, the client IP otherwise
func callerKey(c *gin.Context) string {
	if subject := c.GetString(string(AUTH_SUBJECT_KEY)); subject != "" {
		return subject
	}
	return c.ClientIP()
}

func tooManyRequests(c *gin.Context, retryAfterSeconds float64) {
	c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retryAfterSeconds))))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"error": gin.H{
			"code":        "rate_limited",
			"message":     "Too many requests",
			"retry_after": retryAfterSeconds,
		},
	})
}
