package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"repo-analytics-dashboard/internal/cache"
	"repo-analytics-dashboard/internal/config"
	"repo-analytics-dashboard/internal/database"
	"repo-analytics-dashboard/internal/github"
	internalHttp "repo-analytics-dashboard/internal/http"
	"repo-analytics-dashboard/internal/logger"
	"repo-analytics-dashboard/internal/queue"
	"repo-analytics-dashboard/internal/redis"

	"github.com/joho/godotenv"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load .env file if it exists
	envErr := godotenv.Load()

	cfg := config.Load()
	log := logger.Setup(cfg.Env)

	if envErr != nil {
		log.Debug("no .env file loaded, using environment variables")
	}

	log.Info("starting api", slog.String("env", cfg.Env))

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		return err
	}
	log.Info("database connected")

	redisClient, err := redis.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		return err
	}
	defer redisClient.Close()
	log.Info("redis connected")

	h := internalHttp.NewHandler(internalHttp.Options{
		DB:          db,
		Publisher:   queue.NewPublisher(redisClient, cfg.Redis.QueueName),
		Cache:       cache.NewRedisCache(redisClient, cfg.Cache.Prefix, cfg.Cache.TTL),
		CachePrefix: cfg.Cache.Prefix,
		GitHub:      github.NewClient(ctx, cfg.GitHub, log),
		HTTP:        cfg.HTTP,
		Exclusions:  config.FileExclusions,
		Checks: map[string]internalHttp.HealthCheck{
			"database": db.Ping,
			"redis":    redisClient.HealthCheck,
		},
		Log: log,
	})

	httpServer := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           h,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
	}

	errChan := make(chan error, 1)
	go startServer(log, httpServer, errChan)

	select {
	case err := <-errChan:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		log.Info("stopping server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}

	log.Info("server exited")
	return nil
}

func startServer(log *slog.Logger, httpServer *http.Server, errChan chan<- error) {
	defer close(errChan)

	log.Info("server started", slog.String("addr", httpServer.Addr))

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		errChan <- err
	}
}
