package redis

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"strings"

	"repo-analytics-dashboard/internal/config"

	"github.com/redis/go-redis/v9"
)

// Client wraps the Redis client with application-specific methods
type Client struct {
	*redis.Client
}

// NewClient creates a new Redis client based on the configuration
func NewClient(ctx context.Context, cfg config.RedisConfig, log *slog.Logger) (*Client, error) {
	opts := &redis.Options{
		Addr:       cfg.Address,
		Password:   cfg.Password,
		DB:         cfg.DB,
		Username:   cfg.Username,
		MaxRetries: 3,
	}

	// Redis Cloud requires TLS with SNI
	if cfg.UseTLS {
		host := strings.Split(cfg.Address, ":")[0]
		opts.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
			ServerName: host,
		}
		log.Info("redis TLS enabled", slog.String("addr", cfg.Address), slog.String("server_name", host))
	} else {
		log.Debug("redis TLS disabled", slog.String("addr", cfg.Address))
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{Client: client}, nil
}

// Wrap adapts an existing go-redis client
func Wrap(client *redis.Client) *Client {
	return &Client{Client: client}
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.Client.Close()
}

// HealthCheck performs a health check on the Redis connection
func (c *Client) HealthCheck(ctx context.Context) error {
	return c.Ping(ctx).Err()
}
