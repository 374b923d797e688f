package database

import (
	"context"
	"fmt"

	"repo-analytics-dashboard/internal/stats"

	"github.com/jackc/pgx/v5"
)

// ReplaceRepositoryFiles swaps the stored file list of a repository for files
func (db *DB) ReplaceRepositoryFiles(ctx context.Context, repositoryID int64, files []stats.FileEntry) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM repository_files WHERE repository_id = $1`, repositoryID); err != nil {
		return fmt.Errorf("failed to clear files: %w", err)
	}

	if len(files) > 0 {
		query := `
			INSERT INTO repository_files (repository_id, path, file_id, extension)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (repository_id, path)
			DO UPDATE SET
				file_id = LEAST(repository_files.file_id, EXCLUDED.file_id),
				extension = EXCLUDED.extension
		`

		batch := &pgx.Batch{}
		for _, f := range files {
			batch.Queue(query, repositoryID, f.Path, f.ID, f.Extension)
		}

		br := tx.SendBatch(ctx, batch)
		for range files {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("failed to execute batch: %w", err)
			}
		}
		if err := br.Close(); err != nil {
			return fmt.Errorf("failed to close batch: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetRepositoryFiles returns the stored file list of a repository
func (db *DB) GetRepositoryFiles(ctx context.Context, repositoryID int64) ([]stats.FileEntry, error) {
	query := `
		SELECT file_id, path, extension
		FROM repository_files
		WHERE repository_id = $1
		ORDER BY path ASC
	`

	rows, err := db.pool.Query(ctx, query, repositoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get files: %w", err)
	}
	defer rows.Close()

	files := []stats.FileEntry{}
	for rows.Next() {
		var f stats.FileEntry
		if err := rows.Scan(&f.ID, &f.Path, &f.Extension); err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		files = append(files, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return files, nil
}
