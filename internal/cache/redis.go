package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/eventhub/eventhub/internal/config"
)

// NewRedisClient connects to Redis using conf.URL when set, otherwise
// conf.Addr. It pings the server so a bad address fails at startup.
func NewRedisClient(ctx context.Context, conf *config.RedisConfig) (*redis.Client, error) {
	var opts *redis.Options
	if conf.URL != "" {
		parsed, err := redis.ParseURL(conf.URL)
		if err != nil {
			return nil, fmt.Errorf("redis.ParseURL -> %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     conf.Addr,
			Password: conf.Password,
			DB:       conf.DB,
		}
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("client.Ping -> %w", err)
	}

	return client, nil
}
