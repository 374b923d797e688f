package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"repo-analytics-dashboard/internal/github"
	"repo-analytics-dashboard/internal/stats"
	"repo-analytics-dashboard/internal/validation"
)

const defaultActivityDays = 365

// FrequencyResponse adds chart-ready rows to the frequency report
type FrequencyResponse struct {
	stats.FrequencyReport
	Chart []stats.ChartRow `json:"chart"`
}

// PullRequestSummaryResponse is the body of GET .../pull-requests/summary
type PullRequestSummaryResponse struct {
	Members       []stats.PRMemberSummary `json:"members"`
	TotalPRs      int                     `json:"totalPRs"`
	PRsWithReview int                     `json:"prsWithReview"`
	TotalComments int                     `json:"totalComments"`
}

// GetCommitFrequency handles GET /api/v1/repositories/{id}/stats/frequency
func (h *Handler) GetCommitFrequency(w http.ResponseWriter, r *http.Request) {
	h.withCommits(w, r, []string{"stats", "frequency"}, func(commits []stats.CanonicalCommit) any {
		report := stats.CommitFrequency(commits)
		return FrequencyResponse{FrequencyReport: report, Chart: report.ChartRows()}
	})
}

// GetCommitSize handles GET /api/v1/repositories/{id}/stats/size
func (h *Handler) GetCommitSize(w http.ResponseWriter, r *http.Request) {
	h.withCommits(w, r, []string{"stats", "size"}, func(commits []stats.CanonicalCommit) any {
		return stats.CommitSizeStats(commits)
	})
}

// GetBusFactor handles GET /api/v1/repositories/{id}/stats/bus-factor
func (h *Handler) GetBusFactor(w http.ResponseWriter, r *http.Request) {
	threshold := stats.DefaultBusFactorThreshold
	if s := r.URL.Query().Get("threshold"); s != "" {
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			parsed = -1
		}
		if err := validation.New().Fraction("threshold", parsed).Validate(); err != nil {
			Error(w, err, http.StatusBadRequest)
			return
		}
		threshold = parsed
	}

	key := []string{"stats", "bus-factor", strconv.FormatFloat(threshold, 'f', -1, 64)}
	h.withCommits(w, r, key, func(commits []stats.CanonicalCommit) any {
		return stats.BusFactor(commits, threshold)
	})
}

// GetActivity handles GET /api/v1/repositories/{id}/stats/activity
func (h *Handler) GetActivity(w http.ResponseWriter, r *http.Request) {
	days := defaultActivityDays
	if s := r.URL.Query().Get("days"); s != "" {
		parsed, err := strconv.Atoi(s)
		if err != nil {
			parsed = -1
		}
		v := validation.New()
		v.InRange("days", parsed, 1, 3660)
		if err := v.Validate(); err != nil {
			Error(w, err, http.StatusBadRequest)
			return
		}
		days = parsed
	}

	to := h.now().UTC()
	from := to.AddDate(0, 0, -(days - 1))

	key := []string{"stats", "activity", to.Format(time.DateOnly), strconv.Itoa(days)}
	h.withCommits(w, r, key, func(commits []stats.CanonicalCommit) any {
		return stats.ActivityCalendar(stats.CommitFrequency(commits).Days, from, to)
	})
}

// GetCoverage handles GET /api/v1/repositories/{id}/coverage
func (h *Handler) GetCoverage(w http.ResponseWriter, r *http.Request) {
	repo, ok := h.loadRepository(w, r)
	if !ok {
		return
	}

	branch := r.URL.Query().Get("branch")
	if err := validation.New().Branch("branch", branch).Validate(); err != nil {
		Error(w, err, http.StatusBadRequest)
		return
	}
	if branch == "" {
		branch = repo.DefaultBranch
	}

	h.respondCached(w, r, repo.ID, []string{"coverage", branch}, func() (any, bool) {
		snapshot, err := h.db.GetCoverageSnapshot(r.Context(), repo.ID, branch)
		if err != nil {
			Error(w, validation.ParseDatabaseError(err), http.StatusInternalServerError)
			return nil, false
		}
		return snapshot, true
	})
}

// ListCoverageBranches handles GET /api/v1/repositories/{id}/coverage/branches
func (h *Handler) ListCoverageBranches(w http.ResponseWriter, r *http.Request) {
	repo, ok := h.loadRepository(w, r)
	if !ok {
		return
	}

	branches, err := h.db.ListCoverageBranches(r.Context(), repo.ID)
	if err != nil {
		Error(w, err, http.StatusInternalServerError)
		return
	}

	JSON(w, http.StatusOK, map[string]any{"branches": branches})
}

// GetFileTree handles GET /api/v1/repositories/{id}/files/tree
func (h *Handler) GetFileTree(w http.ResponseWriter, r *http.Request) {
	repo, ok := h.loadRepository(w, r)
	if !ok {
		return
	}

	exclude, _ := strconv.ParseBool(r.URL.Query().Get("exclude"))

	h.respondCached(w, r, repo.ID, []string{"files", "tree", strconv.FormatBool(exclude)}, func() (any, bool) {
		files, err := h.db.GetRepositoryFiles(r.Context(), repo.ID)
		if err != nil {
			Error(w, err, http.StatusInternalServerError)
			return nil, false
		}

		if exclude {
			kept := files[:0]
			for _, f := range files {
				if !h.exclusions.IsExcluded(f.Path) {
					kept = append(kept, f)
				}
			}
			files = kept
		}

		return stats.BuildFileTree(files), true
	})
}

// GetBranchLinks handles GET /api/v1/repositories/{id}/branches
func (h *Handler) GetBranchLinks(w http.ResponseWriter, r *http.Request) {
	repo, ok := h.loadRepository(w, r)
	if !ok || !h.requireGitHub(w) {
		return
	}

	h.respondCached(w, r, repo.ID, []string{"branches"}, func() (any, bool) {
		ctx := r.Context()

		branches, err := h.github.ListBranches(ctx, repo.Owner, repo.Name)
		if err != nil {
			Error(w, err, http.StatusBadGateway)
			return nil, false
		}

		issues, err := h.github.ListIssues(ctx, repo.Owner, repo.Name)
		if err != nil {
			Error(w, err, http.StatusBadGateway)
			return nil, false
		}

		return stats.LinkBranches(branches, issues), true
	})
}

// GetPullRequestSummary handles GET /api/v1/repositories/{id}/pull-requests/summary
func (h *Handler) GetPullRequestSummary(w http.ResponseWriter, r *http.Request) {
	repo, ok := h.loadRepository(w, r)
	if !ok || !h.requireGitHub(w) {
		return
	}

	limit := github.DefaultMaxPullRequests
	if s := r.URL.Query().Get("limit"); s != "" {
		if parsed, err := strconv.Atoi(s); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	h.respondCached(w, r, repo.ID, []string{"pull-requests", strconv.Itoa(limit)}, func() (any, bool) {
		records, err := h.github.PullRequestRecords(r.Context(), repo.Owner, repo.Name, limit)
		if err != nil {
			Error(w, err, http.StatusBadGateway)
			return nil, false
		}

		activity := stats.TallyPullRequests(records)
		return PullRequestSummaryResponse{
			Members:       stats.SummarizePullRequests(activity),
			TotalPRs:      activity.TotalPRs,
			PRsWithReview: activity.PRsWithReview,
			TotalComments: activity.TotalComments,
		}, true
	})
}

// withCommits loads the repository's commits and serves aggregate(commits), cached
func (h *Handler) withCommits(w http.ResponseWriter, r *http.Request, key []string, aggregate func([]stats.CanonicalCommit) any) {
	repo, ok := h.loadRepository(w, r)
	if !ok {
		return
	}

	h.respondCached(w, r, repo.ID, key, func() (any, bool) {
		commits, err := h.db.GetCommitsByRepository(r.Context(), repo.ID)
		if err != nil {
			Error(w, err, http.StatusInternalServerError)
			return nil, false
		}
		return aggregate(commits), true
	})
}

func (h *Handler) requireGitHub(w http.ResponseWriter) bool {
	if h.github == nil {
		Error(w, fmt.Errorf("GitHub integration is not configured"), http.StatusServiceUnavailable)
		return false
	}
	return true
}
