package database

import (
	"context"
	"errors"
	"fmt"

	"repo-analytics-dashboard/internal/validation"

	"github.com/jackc/pgx/v5"
)

const repositoryColumns = `id, url, owner, name, local_path, default_branch, status, last_indexed_at, created_at, updated_at`

// CreateRepository creates a new repository record
func (db *DB) CreateRepository(ctx context.Context, repo *Repository) error {
	query := `
		INSERT INTO repositories (url, owner, name, status, default_branch)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	if repo.DefaultBranch == "" {
		repo.DefaultBranch = "main"
	}
	if repo.Status == "" {
		repo.Status = StatusPending
	}

	err := db.pool.QueryRow(ctx, query, repo.URL, repo.Owner, repo.Name, repo.Status, repo.DefaultBranch).
		Scan(&repo.ID, &repo.CreatedAt, &repo.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}

	return nil
}

// GetRepository retrieves a repository by ID
func (db *DB) GetRepository(ctx context.Context, id int64) (*Repository, error) {
	query := `SELECT ` + repositoryColumns + ` FROM repositories WHERE id = $1`

	repo, err := scanRepository(db.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, validation.NotFound("repository")
		}
		return nil, fmt.Errorf("failed to get repository: %w", err)
	}

	return repo, nil
}

// ListRepositories retrieves all repositories with pagination
func (db *DB) ListRepositories(ctx context.Context, limit, offset int) ([]*Repository, error) {
	query := `
		SELECT ` + repositoryColumns + `
		FROM repositories
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := db.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories: %w", err)
	}
	defer rows.Close()

	repositories := []*Repository{}
	for rows.Next() {
		repo, err := scanRepository(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan repository: %w", err)
		}
		repositories = append(repositories, repo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return repositories, nil
}

// UpdateRepositoryStatus updates the status of a repository
func (db *DB) UpdateRepositoryStatus(ctx context.Context, id int64, status RepositoryStatus) error {
	query := `
		UPDATE repositories
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := db.pool.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update repository status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return validation.NotFound("repository")
	}

	return nil
}

// UpdateRepository updates repository fields
func (db *DB) UpdateRepository(ctx context.Context, repo *Repository) error {
	query := `
		UPDATE repositories
		SET local_path = $1, status = $2, last_indexed_at = $3, default_branch = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING updated_at
	`

	err := db.pool.QueryRow(ctx, query, repo.LocalPath, repo.Status, repo.LastIndexedAt, repo.DefaultBranch, repo.ID).
		Scan(&repo.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return validation.NotFound("repository")
		}
		return fmt.Errorf("failed to update repository: %w", err)
	}

	return nil
}

func scanRepository(row pgx.Row) (*Repository, error) {
	repo := &Repository{}
	err := row.Scan(
		&repo.ID,
		&repo.URL,
		&repo.Owner,
		&repo.Name,
		&repo.LocalPath,
		&repo.DefaultBranch,
		&repo.Status,
		&repo.LastIndexedAt,
		&repo.CreatedAt,
		&repo.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return repo, nil
}
