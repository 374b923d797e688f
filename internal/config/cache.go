package config

import (
	"time"
)

type CacheConfig struct {
	TTL    time.Duration
	Prefix string
}

func loadCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:    getEnvDuration("CACHE_TTL", 10*time.Minute),
		Prefix: getEnv("CACHE_PREFIX", "analytics"),
	}
}
