package middleware

import (
	"fmt"
	"net/http"
	"time"

	"presale_webapp/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

var rateLimiter *redis.Client

// InitRedisRateLimiter подключает redis для лимитера. Пустой url
// выключает лимитер целиком (дев режим)
func InitRedisRateLimiter(redisURL string) {
	if redisURL == "" {
		logger.Warn("rate limiter выключен: REDIS_URL не задан")
		return
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		logger.Error("не удалось разобрать REDIS_URL, rate limiter выключен", "error", err)
		return
	}

	rateLimiter = redis.NewClient(opts)
	logger.Info("rate limiter enabled", "addr", opts.Addr)
}

// Client возвращает общий redis клиент (nil если не настроен)
func Client() *redis.Client {
	return rateLimiter
}

// RateLimit ограничивает количество запросов с одного IP в окне.
// Фиксированное окно на INCR+EXPIRE - этого достаточно против спама форм
func RateLimit(limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rateLimiter == nil {
			c.Next()
			return
		}

		key := fmt.Sprintf("ratelimit:%s:%s", c.FullPath(), c.ClientIP())
		ctx := c.Request.Context()

		count, err := rateLimiter.Incr(ctx, key).Result()
		if err != nil {
			// redis упал - пропускаем, лимитер не должен ронять запросы
			c.Next()
			return
		}
		if count == 1 {
			_ = rateLimiter.Expire(ctx, key, window).Err()
		}

		if count > int64(limit) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}

		c.Next()
	}
}
