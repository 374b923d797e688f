package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	"repo-analytics-dashboard/internal/cache"
	"repo-analytics-dashboard/internal/database"
	"repo-analytics-dashboard/internal/github"
	"repo-analytics-dashboard/internal/logger"
	"repo-analytics-dashboard/internal/metrics"
	"repo-analytics-dashboard/internal/queue"
	"repo-analytics-dashboard/internal/stats"
	"repo-analytics-dashboard/internal/validation"
)

// Store is the persistence the handler needs
type Store interface {
	GetRepository(ctx context.Context, id int64) (*database.Repository, error)
	UpdateRepositoryStatus(ctx context.Context, id int64, status database.RepositoryStatus) error
	UpdateRepository(ctx context.Context, repo *database.Repository) error
	ReplaceCommits(ctx context.Context, repositoryID int64, commits []stats.CanonicalCommit) error
	UpsertCommits(ctx context.Context, repositoryID int64, commits []stats.CanonicalCommit) error
	ReplaceRepositoryFiles(ctx context.Context, repositoryID int64, files []stats.FileEntry) error
}

// JobHandler implements the queue.JobHandler interface
type JobHandler struct {
	db          Store
	cache       cache.Store
	local       LocalSource
	remote      RemoteSource
	storagePath string
	log         *slog.Logger
	now         func() time.Time
}

// NewJobHandler creates a new job handler
func NewJobHandler(db Store, c cache.Store, local LocalSource, remote RemoteSource, storagePath string, log *slog.Logger) *JobHandler {
	return &JobHandler{
		db:          db,
		cache:       c,
		local:       local,
		remote:      remote,
		storagePath: storagePath,
		log:         log.With(slog.String("component", "job_handler")),
		now:         time.Now,
	}
}

// HandleJob processes a job from the queue
func (h *JobHandler) HandleJob(ctx context.Context, job *queue.Job) error {
	switch job.Type {
	case queue.JobTypeIndex:
		return h.run(ctx, job, h.index)
	case queue.JobTypeSync:
		return h.run(ctx, job, h.sync)
	default:
		return fmt.Errorf("%w: unknown job type: %s", queue.ErrPermanent, job.Type)
	}
}

type fetchFunc func(ctx context.Context, repo *database.Repository) (*Snapshot, error)

// run drives a repository through indexing -> completed|failed around fetch
func (h *JobHandler) run(ctx context.Context, job *queue.Job, fetch fetchFunc) error {
	repoID := job.RepositoryID
	log := h.log.With(slog.String("job_id", job.ID), slog.Int64("repository_id", repoID))

	if err := h.db.UpdateRepositoryStatus(ctx, repoID, database.StatusIndexing); err != nil {
		if validation.IsNotFound(err) {
			return fmt.Errorf("%w: %w", queue.ErrPermanent, err)
		}
		return fmt.Errorf("failed to update repository status: %w", err)
	}

	repo, err := h.db.GetRepository(ctx, repoID)
	if err != nil {
		h.markFailed(ctx, log, repoID)
		return fmt.Errorf("failed to get repository: %w", err)
	}

	log.Info("ingesting repository", slog.String("repository", repo.FullName()), slog.String("type", string(job.Type)))

	snapshot, err := fetch(ctx, repo)
	if err != nil {
		h.markFailed(ctx, log, repoID)
		return fmt.Errorf("failed to fetch repository: %w", err)
	}

	source := string(job.Type)
	commits, err := stats.NormalizeCommits(snapshot.Commits)
	if err != nil {
		skipped := malformedCount(err)
		metrics.MalformedCommits.WithLabelValues(source).Add(float64(skipped))
		log.Warn("skipped malformed commits",
			slog.Int("skipped", skipped),
			slog.Int("kept", len(commits)),
		)
	}

	persist := h.db.UpsertCommits
	if job.Type == queue.JobTypeIndex {
		// A full walk replaces history so rewritten branches do not leave stale commits
		persist = h.db.ReplaceCommits
	}

	if err := persist(ctx, repoID, commits); err != nil {
		h.markFailed(ctx, log, repoID)
		return fmt.Errorf("failed to persist commits: %w", err)
	}

	if err := h.db.ReplaceRepositoryFiles(ctx, repoID, snapshot.Files); err != nil {
		h.markFailed(ctx, log, repoID)
		return fmt.Errorf("failed to persist files: %w", err)
	}

	now := h.now().UTC()
	repo.LastIndexedAt = &now
	repo.Status = database.StatusCompleted
	if snapshot.Branch != "" {
		repo.DefaultBranch = snapshot.Branch
	}

	if err := h.db.UpdateRepository(ctx, repo); err != nil {
		h.markFailed(ctx, log, repoID)
		return fmt.Errorf("failed to update repository: %w", err)
	}

	metrics.CommitsIngested.WithLabelValues(source).Add(float64(len(commits)))

	if err := h.cache.InvalidateRepository(ctx, repoID); err != nil {
		log.Warn("failed to invalidate cache", logger.Err(err))
	}

	log.Info("ingested repository",
		slog.Int("commits", len(commits)),
		slog.Int("files", len(snapshot.Files)),
	)
	return nil
}

func (h *JobHandler) index(ctx context.Context, repo *database.Repository) (*Snapshot, error) {
	localPath := filepath.Join(h.storagePath, strconv.FormatInt(repo.ID, 10))

	snapshot, err := h.local.Fetch(ctx, repo.URL, localPath)
	if err != nil {
		return nil, err
	}

	repo.LocalPath = &localPath
	return snapshot, nil
}

func (h *JobHandler) sync(ctx context.Context, repo *database.Repository) (*Snapshot, error) {
	commits, err := h.remote.ListCommits(ctx, repo.Owner, repo.Name, github.CommitListOptions{
		Branch:    repo.DefaultBranch,
		WithStats: true,
	})
	if err != nil {
		return nil, err
	}

	files, err := h.remote.ListFiles(ctx, repo.Owner, repo.Name, repo.DefaultBranch)
	if err != nil {
		return nil, err
	}

	return &Snapshot{Commits: commits, Files: files}, nil
}

func (h *JobHandler) markFailed(ctx context.Context, log *slog.Logger, repoID int64) {
	if err := h.db.UpdateRepositoryStatus(ctx, repoID, database.StatusFailed); err != nil {
		log.Error("failed to mark repository as failed", logger.Err(err))
	}
}

// malformedCount counts the records rejected by stats.NormalizeCommits
func malformedCount(err error) int {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		return len(joined.Unwrap())
	}
	if err != nil {
		return 1
	}
	return 0
}
