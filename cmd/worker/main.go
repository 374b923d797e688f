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
	"time"

	"repo-analytics-dashboard/internal/cache"
	"repo-analytics-dashboard/internal/config"
	"repo-analytics-dashboard/internal/database"
	"repo-analytics-dashboard/internal/git"
	"repo-analytics-dashboard/internal/github"
	"repo-analytics-dashboard/internal/logger"
	"repo-analytics-dashboard/internal/queue"
	"repo-analytics-dashboard/internal/redis"
	"repo-analytics-dashboard/internal/worker"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
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

	// Connect to database
	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("database connected")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		return err
	}
	defer redisClient.Close()
	log.Info("redis connected")

	handler := worker.NewJobHandler(
		db,
		cache.NewRedisCache(redisClient, cfg.Cache.Prefix, cfg.Cache.TTL),
		worker.NewGitSource(git.NewCloner(nil)),
		github.NewClient(ctx, cfg.GitHub, log),
		cfg.Worker.StoragePath,
		log,
	)

	consumer := queue.NewConsumer(
		redisClient,
		cfg.Redis.QueueName,
		handler,
		cfg.Worker.Concurrency,
		log,
	)

	metricsServer := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Worker.MetricsPort),
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", logger.Err(err))
		}
	}()

	log.Info("starting worker", slog.Int("concurrency", cfg.Worker.Concurrency), slog.String("metrics_addr", metricsServer.Addr))
	if err := consumer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start consumer: %w", err)
	}

	<-ctx.Done()

	log.Info("shutting down worker...")
	consumer.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("failed to stop metrics server", logger.Err(err))
	}

	log.Info("worker exited")
	return nil
}
