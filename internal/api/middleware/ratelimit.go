package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/eventhub/eventhub/internal/api/handler/v1/response"
	"github.com/eventhub/eventhub/internal/config"
)

// RateLimiter counts POST attempts per route and client IP in fixed windows
// stored in Redis. Redis failures let the request through.
type RateLimiter struct {
	client *redis.Client

	mu   sync.RWMutex
	conf config.RateLimitConfig
}

func NewRateLimiter(client *redis.Client, conf *config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		client: client,
		conf:   *conf,
	}
}

// SetConfig swaps the limits in place; used when the config file changes.
func (l *RateLimiter) SetConfig(conf *config.RateLimitConfig) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.conf = *conf
}

func (l *RateLimiter) config() config.RateLimitConfig {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.conf
}

func (l *RateLimiter) Limit(route string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		conf := l.config()
		if ctx.Request.Method != http.MethodPost || !conf.Enabled || l.client == nil {
			ctx.Next()
			return
		}

		key := fmt.Sprintf("ratelimit:%s:%s", route, ctx.ClientIP())
		allowed, err := l.allow(ctx.Request.Context(), key, conf)
		if err != nil {
			zap.L().Warn("rate limiter unavailable", zap.String("key", key), zap.Error(err))
			ctx.Next()
			return
		}

		if !allowed {
			ctx.Header("Retry-After", strconv.Itoa(int(conf.Window.Seconds())))
			response.RenderErr(ctx, response.ErrTooManyRequests(fmt.Errorf("rate limit exceeded for %s", key)))
			return
		}

		ctx.Next()
	}
}

// allow creates the window key with its expiry and counts the attempt in one
// MULTI, so a counter can never be left without a TTL.
func (l *RateLimiter) allow(ctx context.Context, key string, conf config.RateLimitConfig) (bool, error) {
	var count *redis.IntCmd

	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, key, 0, conf.Window)
		count = pipe.Incr(ctx, key)

		return nil
	})
	if err != nil {
		return false, fmt.Errorf("l.client.TxPipelined -> %w", err)
	}

	return count.Val() <= int64(conf.MaxAttempts), nil
}
