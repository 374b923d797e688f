package validation

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// DatabaseError is a storage failure the HTTP layer can report to clients
type DatabaseError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (de *DatabaseError) Error() string {
	return de.Message
}

const (
	ErrorTypeUniqueViolation     = "unique_violation"
	ErrorTypeForeignKeyViolation = "foreign_key_violation"
	ErrorTypeNotFound            = "not_found"
	ErrorTypeInternal            = "internal"
)

// PostgreSQL SQLSTATE codes
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgCheckViolation      = "23514"
)

type constraintInfo struct {
	field   string
	message string
}

// Constraints declared in schema.sql
var knownConstraints = map[string]constraintInfo{
	"repositories_url_key":                        {"url", "A repository with this URL already exists"},
	"commits_repository_id_sha_key":               {"sha", "This commit is already recorded"},
	"coverage_snapshots_repository_id_branch_key": {"branch", "A coverage snapshot for this branch already exists"},
	"coverage_files_pkey":                         {"file_path", "Coverage for this file is already recorded"},
	"repository_files_pkey":                       {"path", "This file is already listed"},
	"commits_repository_id_fkey":                  {"repository_id", "Repository does not exist"},
	"coverage_snapshots_repository_id_fkey":       {"repository_id", "Repository does not exist"},
	"repository_files_repository_id_fkey":         {"repository_id", "Repository does not exist"},
	"coverage_files_snapshot_id_fkey":             {"snapshot_id", "Coverage snapshot does not exist"},
}

// NotFound builds a not-found DatabaseError for the named resource
func NotFound(resource string) *DatabaseError {
	return &DatabaseError{
		Type:    ErrorTypeNotFound,
		Message: resource + " not found",
	}
}

// ParseDatabaseError turns constraint violations into *DatabaseError and
// returns every other error unchanged.
func ParseDatabaseError(err error) error {
	var pgErr *pgconn.PgError
	if err == nil || !errors.As(err, &pgErr) {
		return err
	}

	info, ok := knownConstraints[pgErr.ConstraintName]
	if !ok {
		info.field = fieldFromConstraint(pgErr.ConstraintName)
	}

	switch pgErr.Code {
	case pgUniqueViolation:
		return &DatabaseError{
			Type:    ErrorTypeUniqueViolation,
			Message: orDefault(info.message, "This value already exists"),
			Field:   info.field,
		}
	case pgForeignKeyViolation:
		return &DatabaseError{
			Type:    ErrorTypeForeignKeyViolation,
			Message: orDefault(info.message, "Referenced record does not exist"),
			Field:   info.field,
		}
	case pgNotNullViolation:
		field := orDefault(pgErr.ColumnName, info.field)
		return &DatabaseError{
			Type:    ErrorTypeInternal,
			Message: "Required field is missing: " + field,
			Field:   field,
		}
	case pgCheckViolation:
		return &DatabaseError{
			Type:    ErrorTypeInternal,
			Message: "Invalid value for field",
			Field:   info.field,
		}
	}
	return err
}

// fieldFromConstraint guesses the column of a <table>_<column>_<suffix> name
func fieldFromConstraint(name string) string {
	parts := strings.Split(name, "_")
	if len(parts) < 2 {
		return name
	}
	return parts[len(parts)-2]
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// IsNotFound reports whether err is, or wraps, a not-found DatabaseError
func IsNotFound(err error) bool {
	var dbErr *DatabaseError
	return errors.As(err, &dbErr) && dbErr.Type == ErrorTypeNotFound
}
