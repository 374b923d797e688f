package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"repo-analytics-dashboard/internal/cache"
	"repo-analytics-dashboard/internal/logger"
	"repo-analytics-dashboard/internal/metrics"
)

// respondCached serves the encoded response stored under key, computing and
// storing it on a miss. compute writes its own error responses and returns
// ok=false when it did.
func (h *Handler) respondCached(w http.ResponseWriter, r *http.Request, repositoryID int64, parts []string, compute func() (any, bool)) {
	ctx := r.Context()
	key := cache.RepositoryKey(h.cachePrefix, repositoryID, parts...)

	var hit json.RawMessage
	err := h.cache.GetJSON(ctx, key, &hit)
	switch {
	case err == nil:
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		JSON(w, http.StatusOK, hit)
		return
	case errors.Is(err, cache.ErrMiss):
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	default:
		metrics.CacheLookups.WithLabelValues("error").Inc()
		h.log.Warn("failed to read cache", logger.Err(err))
	}

	value, ok := compute()
	if !ok {
		return
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		Error(w, err, http.StatusInternalServerError)
		return
	}

	if err := h.cache.SetJSON(ctx, key, json.RawMessage(encoded)); err != nil {
		h.log.Warn("failed to write cache", logger.Err(err))
	}

	JSON(w, http.StatusOK, json.RawMessage(encoded))
}
