package database

import "time"

// RepositoryStatus represents the status of a repository ingestion
type RepositoryStatus string

const (
	StatusPending   RepositoryStatus = "pending"
	StatusIndexing  RepositoryStatus = "indexing"
	StatusCompleted RepositoryStatus = "completed"
	StatusFailed    RepositoryStatus = "failed"
)

// Repository represents a tracked GitHub repository
type Repository struct {
	ID            int64            `json:"id"`
	URL           string           `json:"url"`
	Owner         string           `json:"owner"`
	Name          string           `json:"name"`
	LocalPath     *string          `json:"local_path,omitempty"`
	DefaultBranch string           `json:"default_branch"`
	Status        RepositoryStatus `json:"status"`
	LastIndexedAt *time.Time       `json:"last_indexed_at,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// FullName returns the owner/name slug used by the GitHub API
func (r *Repository) FullName() string {
	return r.Owner + "/" + r.Name
}
