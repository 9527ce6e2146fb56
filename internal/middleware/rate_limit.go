package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mingle/mingle-backend/internal/common"
	"github.com/mingle/mingle-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// slidingWindowScript counts requests in the window and admits the
// request atomically, so concurrent requests cannot slip past the limit
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)
local count = redis.call('ZCARD', key)
if count >= limit then
    return 0
end
redis.call('ZADD', key, now, now .. '-' .. math.random(1000000))
redis.call('PEXPIRE', key, window)
return 1
`)

// RateLimit limits each authenticated user (or client IP before auth) to
// `limit` requests per window. Fails open when redis is unavailable.
func RateLimit(client *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil {
			c.Next()
			return
		}

		identity := c.ClientIP()
		if userID, ok := GetUserID(c); ok {
			identity = fmt.Sprintf("user:%d", userID)
		}
		key := fmt.Sprintf("ratelimit:%s", identity)

		allowed, err := slidingWindowScript.Run(
			c.Request.Context(), client,
			[]string{key},
			time.Now().UnixMilli(), window.Milliseconds(), limit,
		).Int()
		if err != nil {
			logger.GetLogger().Warn().Err(err).Msg("rate limiter unavailable, allowing request")
			c.Next()
			return
		}

		if allowed == 0 {
			common.ErrorResponse(c, http.StatusTooManyRequests, "too many requests", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
