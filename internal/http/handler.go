package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"repo-analytics-dashboard/internal/cache"
	"repo-analytics-dashboard/internal/config"
	"repo-analytics-dashboard/internal/database"
	"repo-analytics-dashboard/internal/logger"
	"repo-analytics-dashboard/internal/queue"
	"repo-analytics-dashboard/internal/stats"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Store is the persistence used by the handlers
type Store interface {
	CreateRepository(ctx context.Context, repo *database.Repository) error
	GetRepository(ctx context.Context, id int64) (*database.Repository, error)
	ListRepositories(ctx context.Context, limit, offset int) ([]*database.Repository, error)
	UpdateRepositoryStatus(ctx context.Context, id int64, status database.RepositoryStatus) error

	UpsertCommits(ctx context.Context, repositoryID int64, commits []stats.CanonicalCommit) error
	GetCommitsByRepository(ctx context.Context, repositoryID int64) ([]stats.CanonicalCommit, error)

	UpsertCoverageSnapshot(ctx context.Context, snapshot *stats.CoverageSnapshot) error
	GetCoverageSnapshot(ctx context.Context, repositoryID int64, branch string) (*stats.CoverageSnapshot, error)
	ListCoverageBranches(ctx context.Context, repositoryID int64) ([]string, error)

	ReplaceRepositoryFiles(ctx context.Context, repositoryID int64, files []stats.FileEntry) error
	GetRepositoryFiles(ctx context.Context, repositoryID int64) ([]stats.FileEntry, error)
}

// GitHubSource answers the live lookups that are not persisted
type GitHubSource interface {
	ListBranches(ctx context.Context, owner, repo string) ([]string, error)
	ListIssues(ctx context.Context, owner, repo string) ([]stats.Issue, error)
	PullRequestRecords(ctx context.Context, owner, repo string, limit int) ([]stats.PullRequestRecord, error)
}

// HealthCheck reports whether a dependency is reachable
type HealthCheck func(ctx context.Context) error

// Options carries the handler's collaborators
type Options struct {
	DB          Store
	Publisher   queue.IPublisher
	Cache       cache.Store
	CachePrefix string
	GitHub      GitHubSource
	HTTP        config.HTTPConfig
	Exclusions  config.ExclusionConfig
	Checks      map[string]HealthCheck
	Log         *slog.Logger
}

const healthTimeout = 3 * time.Second

type Handler struct {
	router      chi.Router
	db          Store
	publisher   queue.IPublisher
	cache       cache.Store
	cachePrefix string
	github      GitHubSource
	httpCfg     config.HTTPConfig
	exclusions  config.ExclusionConfig
	checks      map[string]HealthCheck
	log         *slog.Logger
	now         func() time.Time
}

func NewHandler(opts Options) *Handler {
	h := &Handler{
		router:      chi.NewRouter(),
		db:          opts.DB,
		publisher:   opts.Publisher,
		cache:       opts.Cache,
		cachePrefix: opts.CachePrefix,
		github:      opts.GitHub,
		httpCfg:     opts.HTTP,
		exclusions:  opts.Exclusions,
		checks:      opts.Checks,
		log:         opts.Log,
		now:         time.Now,
	}
	if h.cache == nil {
		h.cache = cache.Noop{}
	}
	h.registerRoutes()
	return h
}

func (h *Handler) registerRoutes() {
	r := h.router
	r.Use(h.requestID, h.logRequest, metricsMiddleware, CORS)

	// Health check
	r.Get("/ping", h.Ping)
	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/queue/length", h.GetQueueLength)

		r.Route("/repositories", func(r chi.Router) {
			r.Post("/", h.CreateRepository)
			r.Get("/", h.ListRepositories)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetRepository)
				r.Post("/index", h.IndexRepository)
				r.Post("/sync", h.SyncRepository)

				// Ingestion webhooks
				r.Post("/commits", h.IngestCommits)
				r.Post("/coverage", h.IngestCoverage)
				r.Post("/files", h.IngestFiles)

				// Analytics
				r.Get("/stats/frequency", h.GetCommitFrequency)
				r.Get("/stats/size", h.GetCommitSize)
				r.Get("/stats/bus-factor", h.GetBusFactor)
				r.Get("/stats/activity", h.GetActivity)
				r.Get("/coverage", h.GetCoverage)
				r.Get("/coverage/branches", h.ListCoverageBranches)
				r.Get("/files/tree", h.GetFileTree)
				r.Get("/branches", h.GetBranchLinks)
				r.Get("/pull-requests/summary", h.GetPullRequestSummary)
			})
		})
	})
}

func (h *Handler) Ping(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]string{
		"message": "pong",
	})
}

// Health runs every dependency check and answers 503 if any fails
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.log.Warn("health check failed", slog.String("check", name), logger.Err(err))
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	JSON(w, status, map[string]any{
		"healthy": status == http.StatusOK,
		"checks":  results,
	})
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}
