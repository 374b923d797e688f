package config

import "time"

// HTTPConfig holds API server timeouts and list paging bounds
type HTTPConfig struct {
	PageSize          int
	MaxPageSize       int
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

func loadHTTPConfig() HTTPConfig {
	return HTTPConfig{
		PageSize:          getEnvInt("HTTP_PAGE_SIZE", 10),
		MaxPageSize:       getEnvInt("HTTP_MAX_PAGE_SIZE", 100),
		ReadHeaderTimeout: getEnvDuration("HTTP_READ_HEADER_TIMEOUT", 10*time.Second),
		ShutdownTimeout:   getEnvDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}
