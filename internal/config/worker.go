package config

type WorkerConfig struct {
	Concurrency int
	StoragePath string
	MetricsPort string
}

func loadWorkerConfig() WorkerConfig {
	return WorkerConfig{
		Concurrency: getEnvInt("WORKER_CONCURRENCY", 5),
		StoragePath: getEnv("GIT_STORAGE_PATH", "/var/lib/repo-analytics/repos"),
		MetricsPort: getEnv("WORKER_METRICS_PORT", "9091"),
	}
}
