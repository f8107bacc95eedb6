package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"checkmaster/database"

	"github.com/gin-gonic/gin"
	redis "github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimitConfig конфигурация rate limiting
type RateLimitConfig struct {
	Requests     int                       // Количество запросов
	Window       time.Duration             // Временное окно
	Prefix       string                    // Префикс ключей в Redis
	KeyGenerator func(*gin.Context) string // Генератор ключей
	Client       *redis.Client             // nil - счетчики в памяти процесса
	Logger       *zap.Logger
}

// DefaultKeyGenerator генерирует ключ на основе IP адреса
func DefaultKeyGenerator(c *gin.Context) string {
	return c.ClientIP()
}

// limiter решает, пропустить ли очередной запрос с ключом
type limiter interface {
	allow(c *gin.Context, key string) (ok bool, remaining int64, err error)
}

// redisLimiter фиксированное окно, общее для всех экземпляров сервиса
type redisLimiter struct {
	client   *redis.Client
	requests int
	window   time.Duration
}

func (l *redisLimiter) allow(c *gin.Context, key string) (bool, int64, error) {
	current, err := database.RateLimitHit(c.Request.Context(), l.client, key, l.window)
	if err != nil {
		return false, 0, err
	}
	remaining := int64(l.requests) - current
	if remaining < 0 {
		remaining = 0
	}
	return current <= int64(l.requests), remaining, nil
}

// memoryLimiter token bucket на ключ, используется без Redis
type memoryLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[string]*rate.Limiter
	now      func() time.Time
}

func newMemoryLimiter(requests int, window time.Duration) *memoryLimiter {
	if requests < 1 {
		requests = 1
	}
	return &memoryLimiter{
		limit:    rate.Every(window / time.Duration(requests)),
		burst:    requests,
		limiters: make(map[string]*rate.Limiter),
		now:      time.Now,
	}
}

func (l *memoryLimiter) allow(_ *gin.Context, key string) (bool, int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = lim
	}
	allowed := lim.AllowN(now, 1)
	remaining := int64(lim.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}

	// Полностью восстановленные корзины ничего не помнят, их можно забыть
	if len(l.limiters) > 1024 {
		for k, other := range l.limiters {
			if k != key && other.TokensAt(now) >= float64(l.burst) {
				delete(l.limiters, k)
			}
		}
	}
	return allowed, remaining, nil
}

// RateLimit создает middleware для ограничения частоты запросов
func RateLimit(config RateLimitConfig) gin.HandlerFunc {
	if config.KeyGenerator == nil {
		config.KeyGenerator = DefaultKeyGenerator
	}
	if config.Window <= 0 {
		config.Window = time.Minute
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var l limiter
	if config.Client != nil {
		l = &redisLimiter{client: config.Client, requests: config.Requests, window: config.Window}
	} else {
		l = newMemoryLimiter(config.Requests, config.Window)
	}

	return func(c *gin.Context) {
		key := config.Prefix + "rate_limit:" + config.KeyGenerator(c)

		allowed, remaining, err := l.allow(c, key)
		if err != nil {
			// В случае ошибки Redis пропускаем запрос
			logger.Warn("Rate limit недоступен", zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Requests))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(config.Window).Unix(), 10))

		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"status": "error",
				"error": fmt.Sprintf("Слишком много запросов. Лимит: %d запросов за %v",
					config.Requests, config.Window),
				"retry_after": config.Window.Seconds(),
			})
			return
		}

		c.Next()
	}
}

// ScanRateLimit ограничение для запросов распознавания изображений
func ScanRateLimit(requests int, window time.Duration, client *redis.Client, prefix string, logger *zap.Logger) gin.HandlerFunc {
	return RateLimit(RateLimitConfig{
		Requests:     requests,
		Window:       window,
		Prefix:       prefix + "scan:",
		KeyGenerator: DefaultKeyGenerator,
		Client:       client,
		Logger:       logger,
	})
}
