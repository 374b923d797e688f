package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"repo-analytics-dashboard/internal/database"
	"repo-analytics-dashboard/internal/logger"
	"repo-analytics-dashboard/internal/validation"
)

// CreateRepositoryRequest represents the request body for creating a repository
type CreateRepositoryRequest struct {
	URL           string `json:"url" validate:"required,max=2048"`
	DefaultBranch string `json:"default_branch" validate:"omitempty,branch,max=255"`
}

// CreateRepository handles POST /api/v1/repositories
func (h *Handler) CreateRepository(w http.ResponseWriter, r *http.Request) {
	var req CreateRepositoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, fmt.Errorf("invalid request body"), http.StatusBadRequest)
		return
	}

	if err := validation.ValidateStruct(req); err != nil {
		Error(w, err, http.StatusBadRequest)
		return
	}

	var owner, name string
	v := validation.New()
	v.GitURL("url", req.URL).Custom("url", func() error {
		var err error
		owner, name, err = parseRepositorySlug(req.URL)
		return err
	})
	if err := v.Validate(); err != nil {
		Error(w, err, http.StatusBadRequest)
		return
	}

	repo := &database.Repository{
		URL:           req.URL,
		Owner:         owner,
		Name:          name,
		DefaultBranch: req.DefaultBranch,
		Status:        database.StatusPending,
	}

	// Database errors (like unique violations) are mapped by Error()
	if err := h.db.CreateRepository(r.Context(), repo); err != nil {
		Error(w, validation.ParseDatabaseError(err), http.StatusInternalServerError)
		return
	}

	JSON(w, http.StatusCreated, repo)
}

// GetRepository handles GET /api/v1/repositories/{id}
func (h *Handler) GetRepository(w http.ResponseWriter, r *http.Request) {
	repo, ok := h.loadRepository(w, r)
	if !ok {
		return
	}

	JSON(w, http.StatusOK, repo)
}

// ListRepositories handles GET /api/v1/repositories
func (h *Handler) ListRepositories(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := h.pagination(r)
	if err != nil {
		Error(w, err, http.StatusBadRequest)
		return
	}

	repos, err := h.db.ListRepositories(r.Context(), limit, offset)
	if err != nil {
		Error(w, validation.ParseDatabaseError(err), http.StatusInternalServerError)
		return
	}

	JSON(w, http.StatusOK, repos)
}

// IndexRepository handles POST /api/v1/repositories/{id}/index
func (h *Handler) IndexRepository(w http.ResponseWriter, r *http.Request) {
	repo, ok := h.loadRepository(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	job, err := h.publisher.PublishIndexJob(ctx, repo.ID)
	if err != nil {
		Error(w, fmt.Errorf("failed to queue index job: %w", err), http.StatusInternalServerError)
		return
	}

	if err := h.db.UpdateRepositoryStatus(ctx, repo.ID, database.StatusPending); err != nil {
		Error(w, fmt.Errorf("failed to update repository status: %w", err), http.StatusInternalServerError)
		return
	}

	JSON(w, http.StatusAccepted, map[string]any{
		"message":       "index job queued successfully",
		"job_id":        job.ID,
		"repository_id": repo.ID,
	})
}

// SyncRepository handles POST /api/v1/repositories/{id}/sync
func (h *Handler) SyncRepository(w http.ResponseWriter, r *http.Request) {
	repo, ok := h.loadRepository(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	job, err := h.publisher.PublishSyncJob(ctx, repo.ID)
	if err != nil {
		Error(w, fmt.Errorf("failed to queue sync job: %w", err), http.StatusInternalServerError)
		return
	}

	if err := h.db.UpdateRepositoryStatus(ctx, repo.ID, database.StatusPending); err != nil {
		Error(w, fmt.Errorf("failed to update repository status: %w", err), http.StatusInternalServerError)
		return
	}

	JSON(w, http.StatusAccepted, map[string]any{
		"message":       "sync job queued successfully",
		"job_id":        job.ID,
		"repository_id": repo.ID,
	})
}

// GetQueueLength handles GET /api/v1/queue/length
func (h *Handler) GetQueueLength(w http.ResponseWriter, r *http.Request) {
	length, err := h.publisher.GetQueueLength(r.Context())
	if err != nil {
		Error(w, fmt.Errorf("failed to get queue length: %w", err), http.StatusInternalServerError)
		return
	}

	JSON(w, http.StatusOK, map[string]any{
		"queue_length": length,
	})
}

// loadRepository resolves {id} and writes the error response when it cannot
func (h *Handler) loadRepository(w http.ResponseWriter, r *http.Request) (*database.Repository, bool) {
	id, err := repositoryID(r)
	if err != nil {
		Error(w, err, http.StatusBadRequest)
		return nil, false
	}

	repo, err := h.db.GetRepository(r.Context(), id)
	if err != nil {
		if !validation.IsNotFound(err) {
			h.log.Error("failed to load repository", logger.Err(err))
		}
		Error(w, validation.ParseDatabaseError(err), http.StatusInternalServerError)
		return nil, false
	}

	return repo, true
}

var errNotRepositoryURL = errors.New("url must point to an owner/name repository")

// parseRepositorySlug extracts owner and name from HTTP(S) and SSH remotes
func parseRepositorySlug(raw string) (string, string, error) {
	var p string

	switch {
	case strings.HasPrefix(raw, "git@"):
		_, rest, ok := strings.Cut(raw, ":")
		if !ok {
			return "", "", errNotRepositoryURL
		}
		p = rest
	default:
		u, err := url.Parse(raw)
		if err != nil {
			return "", "", errNotRepositoryURL
		}
		p = u.Path
	}

	p = strings.TrimSuffix(strings.Trim(p, "/"), ".git")
	parts := strings.Split(p, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errNotRepositoryURL
	}
	return parts[0], parts[1], nil
}
