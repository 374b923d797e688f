package http

import (
	"errors"
	"net/http"

	"repo-analytics-dashboard/internal/stats"
	"repo-analytics-dashboard/internal/validation"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
	Code    string `json:"code,omitempty"`
}

// Error codes for payloads the analytics engine rejects
const (
	CodeMalformedCommit       = "MALFORMED_COMMIT"
	CodeInvalidCoverageFormat = "INVALID_COVERAGE_FORMAT"
	CodeInvalidFileList       = "INVALID_FILE_LIST"
)

// Error writes an error response to the client
func Error(w http.ResponseWriter, err error, statusCode int) {
	var validationErr *validation.ValidationErrors
	if errors.As(err, &validationErr) {
		JSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "Validation failed",
			Details: validationErr.Errors,
			Code:    "VALIDATION_ERROR",
		})
		return
	}

	var dbErr *validation.DatabaseError
	if errors.As(err, &dbErr) {
		JSON(w, mapDatabaseErrorToHTTPStatus(dbErr), ErrorResponse{
			Error:   dbErr.Message,
			Code:    dbErr.Type,
			Details: map[string]string{"field": dbErr.Field},
		})
		return
	}

	if code, ok := engineErrorCode(err); ok {
		JSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error: err.Error(),
			Code:  code,
		})
		return
	}

	JSON(w, statusCode, ErrorResponse{
		Error: err.Error(),
	})
}

func engineErrorCode(err error) (string, bool) {
	switch {
	case errors.Is(err, stats.ErrMalformedCommit):
		return CodeMalformedCommit, true
	case errors.Is(err, stats.ErrInvalidCoverageFormat):
		return CodeInvalidCoverageFormat, true
	case errors.Is(err, stats.ErrInvalidFileList):
		return CodeInvalidFileList, true
	}
	return "", false
}

// mapDatabaseErrorToHTTPStatus maps database error types to HTTP status codes
func mapDatabaseErrorToHTTPStatus(dbErr *validation.DatabaseError) int {
	switch dbErr.Type {
	case validation.ErrorTypeUniqueViolation:
		return http.StatusConflict
	case validation.ErrorTypeForeignKeyViolation:
		return http.StatusBadRequest
	case validation.ErrorTypeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
