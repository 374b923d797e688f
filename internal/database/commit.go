package database

import (
	"context"
	"fmt"

	"repo-analytics-dashboard/internal/stats"

	"github.com/jackc/pgx/v5"
)

// CommitBatchSize bounds the number of commits sent in one batch
const CommitBatchSize = 500

// UpsertCommits inserts or updates normalized commits of a repository.
// Every chunk runs in one transaction; a failed chunk leaves nothing behind.
func (db *DB) UpsertCommits(ctx context.Context, repositoryID int64, commits []stats.CanonicalCommit) error {
	if len(commits) == 0 {
		return nil
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := upsertCommits(ctx, tx, repositoryID, commits); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ReplaceCommits swaps the stored history of a repository for commits.
// The delete and the inserts share a transaction so a failed insert keeps the old history.
func (db *DB) ReplaceCommits(ctx context.Context, repositoryID int64, commits []stats.CanonicalCommit) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM commits WHERE repository_id = $1`, repositoryID); err != nil {
		return fmt.Errorf("failed to delete commits: %w", err)
	}

	if err := upsertCommits(ctx, tx, repositoryID, commits); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// commitChunks splits commits into slices of at most size elements
func commitChunks(commits []stats.CanonicalCommit, size int) [][]stats.CanonicalCommit {
	var chunks [][]stats.CanonicalCommit
	for start := 0; start < len(commits); start += size {
		end := min(start+size, len(commits))
		chunks = append(chunks, commits[start:end])
	}
	return chunks
}

func upsertCommits(ctx context.Context, tx pgx.Tx, repositoryID int64, commits []stats.CanonicalCommit) error {
	for _, chunk := range commitChunks(commits, CommitBatchSize) {
		if err := upsertCommitBatch(ctx, tx, repositoryID, chunk); err != nil {
			return err
		}
	}
	return nil
}

func upsertCommitBatch(ctx context.Context, tx pgx.Tx, repositoryID int64, commits []stats.CanonicalCommit) error {
	query := `
		INSERT INTO commits (repository_id, sha, author_name, author_email, message, committed_at, additions, deletions, changed_files, url, branch)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (repository_id, sha)
		DO UPDATE SET
			author_name = EXCLUDED.author_name,
			author_email = EXCLUDED.author_email,
			message = EXCLUDED.message,
			committed_at = EXCLUDED.committed_at,
			additions = EXCLUDED.additions,
			deletions = EXCLUDED.deletions,
			changed_files = EXCLUDED.changed_files,
			url = EXCLUDED.url,
			branch = CASE WHEN EXCLUDED.branch = '' THEN commits.branch ELSE EXCLUDED.branch END
	`

	batch := &pgx.Batch{}
	for _, c := range commits {
		batch.Queue(query, repositoryID, c.SHA, c.AuthorName, c.AuthorEmail, c.Message, c.CommittedAt,
			c.Additions, c.Deletions, c.ChangedFiles, c.URL, c.Branch)
	}

	br := tx.SendBatch(ctx, batch)

	for range commits {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to execute batch: %w", err)
		}
	}

	// Must close batch reader before the next chunk uses the connection
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close batch: %w", err)
	}
	return nil
}

// GetCommitsByRepository returns every commit of a repository, oldest first
func (db *DB) GetCommitsByRepository(ctx context.Context, repositoryID int64) ([]stats.CanonicalCommit, error) {
	query := `
		SELECT sha, author_name, author_email, committed_at, message, additions, deletions, changed_files, url, branch
		FROM commits
		WHERE repository_id = $1
		ORDER BY committed_at ASC, sha ASC
	`

	rows, err := db.pool.Query(ctx, query, repositoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get commits: %w", err)
	}
	defer rows.Close()

	commits := []stats.CanonicalCommit{}
	for rows.Next() {
		var c stats.CanonicalCommit
		err := rows.Scan(
			&c.SHA,
			&c.AuthorName,
			&c.AuthorEmail,
			&c.CommittedAt,
			&c.Message,
			&c.Additions,
			&c.Deletions,
			&c.ChangedFiles,
			&c.URL,
			&c.Branch,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan commit: %w", err)
		}
		c.CommittedAt = c.CommittedAt.UTC()
		commits = append(commits, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return commits, nil
}
