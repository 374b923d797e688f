package config

import (
	"time"
)

type GitHubConfig struct {
	Token         string
	RetryAttempts int
	RetryDelay    time.Duration
	RetryMaxDelay time.Duration
}

func loadGitHubConfig() GitHubConfig {
	return GitHubConfig{
		Token:         getEnv("GITHUB_TOKEN", ""),
		RetryAttempts: getEnvInt("GITHUB_RETRY_ATTEMPTS", 5),
		RetryDelay:    getEnvDuration("GITHUB_RETRY_DELAY", time.Second),
		RetryMaxDelay: getEnvDuration("GITHUB_RETRY_MAX_DELAY", time.Minute),
	}
}
