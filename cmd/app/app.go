package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/eventhub/eventhub/internal/api"
	"github.com/eventhub/eventhub/internal/cache"
	"github.com/eventhub/eventhub/internal/config"
	"github.com/eventhub/eventhub/internal/db"
	"github.com/eventhub/eventhub/internal/logger"
	"github.com/eventhub/eventhub/internal/notify"
)

const configPath = "./cmd/app/config.yml"

func Start() error {
	var running atomic.Pointer[api.Server]

	conf, err := config.LoadAndWatch(configPath, func(c *config.AppConfig, err error) {
		if err != nil {
			zap.L().Warn("ignoring invalid config change", zap.Error(err))
			return
		}

		// Only the rate limits are applied live; everything else needs a restart.
		if s := running.Load(); s != nil {
			s.RateLimiter.SetConfig(c.RateLimit)
		}
		zap.L().Info("config file changed, rate limits reloaded")
	})
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}
	defer func() { _ = zap.L().Sync() }()

	database, err := db.Open(conf, os.Getenv("DATABASE_URL"))
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}
	defer func() { _ = db.Close(database) }()

	if url := os.Getenv("REDIS_URL"); url != "" {
		conf.Redis.URL = url
	}
	rdb, err := cache.NewRedisClient(context.Background(), conf.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize redis -> %w", err)
	}
	defer func() { _ = rdb.Close() }()

	publisher, err := notify.New(conf.Broker)
	if err != nil {
		return fmt.Errorf("failed to initialize broker -> %w", err)
	}
	defer func() { _ = publisher.Close() }()

	s, err := api.NewServer(conf, database, rdb, publisher)
	if err != nil {
		return fmt.Errorf("failed to initialize server -> %w", err)
	}
	running.Store(s)

	return serve(s, conf.API)
}

// serve runs the HTTP server until SIGINT or SIGTERM, then drains in-flight
// requests for at most conf.ShutdownTimeout.
func serve(s *api.Server, conf *config.APIConfig) error {
	srv := &http.Server{
		Addr:              ":" + conf.Port,
		Handler:           s.Router,
		MaxHeaderBytes:    1 << 20,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info(fmt.Sprintf("starting server at %v", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start the server -> %w", err)
	case <-ctx.Done():
	}

	zap.L().Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), conf.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down the server -> %w", err)
	}

	return nil
}
