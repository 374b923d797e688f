// Package github fetches repository activity from the GitHub REST API and
// converts it into the raw records the stats package consumes.
package github

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"repo-analytics-dashboard/internal/config"

	"github.com/codeGROOVE-dev/retry"
	gh "github.com/google/go-github/v61/github"
	"golang.org/x/oauth2"
)

const (
	userAgent = "repo-analytics-dashboard"
	perPage   = 100

	// DefaultMaxPullRequests bounds how many pull requests are inspected for reviews and comments
	DefaultMaxPullRequests = 200
)

// Client wraps go-github with pagination and retries
type Client struct {
	gh       *gh.Client
	log      *slog.Logger
	attempts uint
	delay    time.Duration
	maxDelay time.Duration
}

// NewClient creates an authenticated client when a token is configured; otherwise unauthenticated
func NewClient(ctx context.Context, cfg config.GitHubConfig, log *slog.Logger) *Client {
	var httpClient *http.Client
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		httpClient = oauth2.NewClient(ctx, ts)
	}

	client := gh.NewClient(httpClient)
	client.UserAgent = userAgent

	return Wrap(client, cfg, log)
}

// Wrap builds a Client around an existing go-github client
func Wrap(client *gh.Client, cfg config.GitHubConfig, log *slog.Logger) *Client {
	attempts := cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &Client{
		gh:       client,
		log:      log.With(slog.String("component", "github")),
		attempts: uint(attempts),
		delay:    cfg.RetryDelay,
		maxDelay: cfg.RetryMaxDelay,
	}
}

// do runs fn with exponential backoff. Client errors other than rate limits are not retried.
func (c *Client) do(ctx context.Context, operation string, fn func() error) error {
	return retry.Do(
		fn,
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.MaxDelay(c.maxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.OnRetry(func(n uint, err error) {
			c.log.Warn("retrying GitHub request",
				slog.String("operation", operation),
				slog.Uint64("attempt", uint64(n+1)),
				slog.Uint64("max_attempts", uint64(c.attempts)),
				slog.String("error", err.Error()),
			)
		}),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryable),
	)
}

func isRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var rateErr *gh.RateLimitError
	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return true
	}

	var respErr *gh.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		status := respErr.Response.StatusCode
		return status >= 500 || status == http.StatusTooManyRequests
	}

	return true
}

// paginate fetches every page of a list endpoint, retrying each page independently
func paginate[T any](ctx context.Context, c *Client, operation string, fetch func(page int) ([]T, *gh.Response, error)) ([]T, error) {
	var all []T
	page := 0

	for {
		var items []T
		var resp *gh.Response

		err := c.do(ctx, operation, func() error {
			var err error
			items, resp, err = fetch(page)
			return err
		})
		if err != nil {
			return nil, err
		}

		all = append(all, items...)
		if resp == nil || resp.NextPage == 0 {
			break
		}
		page = resp.NextPage
	}

	return all, nil
}
