package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"repo-analytics-dashboard/internal/logger"
	"repo-analytics-dashboard/internal/metrics"
	"repo-analytics-dashboard/internal/stats"
	"repo-analytics-dashboard/internal/validation"
)

// maxWebhookBody caps webhook payloads at 32MB
const maxWebhookBody = 32 << 20

// Malformed commit handling for IngestCommits
const (
	OnMalformedSkip  = "skip"
	OnMalformedAbort = "abort"
)

// CommitsPayload is the webhook body for commit ingestion. A bare JSON array
// of commits is accepted as well.
type CommitsPayload struct {
	Commits []stats.RawCommit `json:"commits"`
}

// CoveragePayload is the webhook body for coverage ingestion
type CoveragePayload struct {
	CommitID string          `json:"commitId" validate:"required,max=64"`
	Branch   string          `json:"branch" validate:"required,branch,max=255"`
	Report   json.RawMessage `json:"report" validate:"required"`
}

// IngestCommits handles POST /api/v1/repositories/{id}/commits
func (h *Handler) IngestCommits(w http.ResponseWriter, r *http.Request) {
	repo, ok := h.loadRepository(w, r)
	if !ok {
		return
	}

	onMalformed := r.URL.Query().Get("onMalformed")
	if onMalformed == "" {
		onMalformed = OnMalformedSkip
	}
	v := validation.New()
	v.OneOf("onMalformed", onMalformed, []string{OnMalformedSkip, OnMalformedAbort})
	if err := v.Validate(); err != nil {
		Error(w, err, http.StatusBadRequest)
		return
	}

	body, err := readBody(r)
	if err != nil {
		Error(w, err, http.StatusBadRequest)
		return
	}

	raw, err := decodeCommits(body)
	if err != nil {
		metrics.RejectedPayloads.WithLabelValues("commits").Inc()
		Error(w, err, http.StatusBadRequest)
		return
	}

	commits, err := stats.NormalizeCommits(raw)
	skipped := len(raw) - len(commits)
	if err != nil {
		metrics.MalformedCommits.WithLabelValues(metrics.SourceWebhook).Add(float64(skipped))
		if onMalformed == OnMalformedAbort {
			metrics.RejectedPayloads.WithLabelValues("commits").Inc()
			JSON(w, http.StatusUnprocessableEntity, ErrorResponse{
				Error:   "payload contains malformed commits",
				Code:    CodeMalformedCommit,
				Details: malformedSHAs(err),
			})
			return
		}
	}

	ctx := r.Context()
	if err := h.db.UpsertCommits(ctx, repo.ID, commits); err != nil {
		Error(w, fmt.Errorf("failed to store commits: %w", err), http.StatusInternalServerError)
		return
	}
	metrics.CommitsIngested.WithLabelValues(metrics.SourceWebhook).Add(float64(len(commits)))

	h.invalidate(r, repo.ID)

	JSON(w, http.StatusOK, map[string]any{
		"repository_id": repo.ID,
		"ingested":      len(commits),
		"skipped":       skipped,
	})
}

// IngestCoverage handles POST /api/v1/repositories/{id}/coverage
func (h *Handler) IngestCoverage(w http.ResponseWriter, r *http.Request) {
	repo, ok := h.loadRepository(w, r)
	if !ok {
		return
	}

	var payload CoveragePayload
	if err := json.NewDecoder(io.LimitReader(r.Body, maxWebhookBody)).Decode(&payload); err != nil {
		Error(w, fmt.Errorf("invalid request body"), http.StatusBadRequest)
		return
	}

	if err := validation.ValidateStruct(payload); err != nil {
		Error(w, err, http.StatusBadRequest)
		return
	}

	report, err := stats.ParseCoverageReport(payload.Report)
	if err != nil {
		metrics.RejectedPayloads.WithLabelValues("coverage").Inc()
		Error(w, err, http.StatusUnprocessableEntity)
		return
	}

	snapshot, err := stats.ProcessCoverage(repo.ID, payload.CommitID, payload.Branch, report)
	if err != nil {
		metrics.RejectedPayloads.WithLabelValues("coverage").Inc()
		Error(w, err, http.StatusUnprocessableEntity)
		return
	}

	if err := h.db.UpsertCoverageSnapshot(r.Context(), snapshot); err != nil {
		Error(w, fmt.Errorf("failed to store coverage: %w", err), http.StatusInternalServerError)
		return
	}
	metrics.CoverageSnapshots.Inc()

	h.invalidate(r, repo.ID)

	JSON(w, http.StatusCreated, snapshot)
}

// IngestFiles handles POST /api/v1/repositories/{id}/files
func (h *Handler) IngestFiles(w http.ResponseWriter, r *http.Request) {
	repo, ok := h.loadRepository(w, r)
	if !ok {
		return
	}

	body, err := readBody(r)
	if err != nil {
		Error(w, err, http.StatusBadRequest)
		return
	}

	files, err := stats.ParseFileList(body)
	if err != nil {
		metrics.RejectedPayloads.WithLabelValues("files").Inc()
		Error(w, err, http.StatusUnprocessableEntity)
		return
	}

	if err := h.db.ReplaceRepositoryFiles(r.Context(), repo.ID, files); err != nil {
		Error(w, fmt.Errorf("failed to store files: %w", err), http.StatusInternalServerError)
		return
	}

	h.invalidate(r, repo.ID)

	JSON(w, http.StatusOK, map[string]any{
		"repository_id": repo.ID,
		"files":         len(files),
	})
}

func (h *Handler) invalidate(r *http.Request, repositoryID int64) {
	if err := h.cache.InvalidateRepository(r.Context(), repositoryID); err != nil {
		h.log.Warn("failed to invalidate cache", logger.Err(err))
	}
}

func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	return body, nil
}

func decodeCommits(body []byte) ([]stats.RawCommit, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var raw []stats.RawCommit
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, fmt.Errorf("invalid commit list: %w", err)
		}
		return raw, nil
	}

	var payload CommitsPayload
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return nil, fmt.Errorf("invalid commit payload: %w", err)
	}
	return payload.Commits, nil
}

func malformedSHAs(err error) []string {
	shas := []string{}
	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) {
		return shas
	}
	for _, e := range joined.Unwrap() {
		var mc *stats.MalformedCommitError
		if errors.As(e, &mc) {
			shas = append(shas, mc.SHA)
		}
	}
	return shas
}
