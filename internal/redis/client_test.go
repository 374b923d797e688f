package redis

import (
	"context"
	"testing"
	"time"

	"repo-analytics-dashboard/internal/config"
	"repo-analytics-dashboard/internal/logger"
)

func testConfig() config.RedisConfig {
	return config.RedisConfig{
		Address:  "localhost:6379",
		Password: "",
		DB:       0,
		UseTLS:   false,
	}
}

func TestNewClient(t *testing.T) {
	// Requires a running Redis instance
	ctx := context.Background()
	client, err := NewClient(ctx, testConfig(), logger.Discard())
	if err != nil {
		t.Skipf("Skipping test: Redis not available: %v", err)
		return
	}
	defer client.Close()

	err = client.Set(ctx, "repo_analytics_test_key", "test_value", 10*time.Second).Err()
	if err != nil {
		t.Fatalf("Failed to SET: %v", err)
	}

	val, err := client.Get(ctx, "repo_analytics_test_key").Result()
	if err != nil {
		t.Fatalf("Failed to GET: %v", err)
	}

	if val != "test_value" {
		t.Errorf("Expected 'test_value', got '%s'", val)
	}

	if err := client.Del(ctx, "repo_analytics_test_key").Err(); err != nil {
		t.Fatalf("Failed to DEL: %v", err)
	}
}

func TestHealthCheck(t *testing.T) {
	ctx := context.Background()
	client, err := NewClient(ctx, testConfig(), logger.Discard())
	if err != nil {
		t.Skipf("Skipping test: Redis not available: %v", err)
		return
	}
	defer client.Close()

	if err := client.HealthCheck(ctx); err != nil {
		t.Errorf("Health check failed: %v", err)
	}
}

func TestNewClientUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	cfg := testConfig()
	cfg.Address = "127.0.0.1:1"

	if _, err := NewClient(ctx, cfg, logger.Discard()); err == nil {
		t.Error("expected error connecting to closed port")
	}
}
