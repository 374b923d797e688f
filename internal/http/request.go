package http

import (
	"fmt"
	"net/http"
	"strconv"

	"repo-analytics-dashboard/internal/validation"

	"github.com/go-chi/chi/v5"
)

// pagination reads ?limit and ?offset, falling back to the configured page
// size and offset 0 when absent
func (h *Handler) pagination(r *http.Request) (int, int, error) {
	limit, offset := h.httpCfg.PageSize, 0

	v := validation.New()
	v.Custom("limit", queryInt(r, "limit", &limit)).
		Custom("offset", queryInt(r, "offset", &offset))
	if err := v.Validate(); err != nil {
		return 0, 0, err
	}

	v.InRange("limit", limit, 1, h.httpCfg.MaxPageSize).
		GreaterThanOrEqual("offset", offset, 0)
	if err := v.Validate(); err != nil {
		return 0, 0, err
	}
	return limit, offset, nil
}

// queryInt returns a check that parses the named query parameter into dst,
// leaving dst alone when the parameter is absent
func queryInt(r *http.Request, name string, dst *int) func() error {
	return func() error {
		s := r.URL.Query().Get(name)
		if s == "" {
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("%s must be an integer", name)
		}
		*dst = n
		return nil
	}
}

// repositoryID parses and validates the {id} path parameter
func repositoryID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid repository ID")
	}

	v := validation.New()
	v.GreaterThan("id", int(id), 0)
	if err := v.Validate(); err != nil {
		return 0, err
	}
	return id, nil
}
