package database

import (
	"context"
	"errors"
	"fmt"

	"repo-analytics-dashboard/internal/stats"
	"repo-analytics-dashboard/internal/validation"

	"github.com/jackc/pgx/v5"
)

// UpsertCoverageSnapshot stores the snapshot in its (repository, branch) slot.
// A previous snapshot for the same slot, including its per-file rows, is replaced.
func (db *DB) UpsertCoverageSnapshot(ctx context.Context, snapshot *stats.CoverageSnapshot) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	upsert := `
		INSERT INTO coverage_snapshots (repository_id, branch, commit_id, statements, branches, functions, lines, overall, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (repository_id, branch)
		DO UPDATE SET
			commit_id = EXCLUDED.commit_id,
			statements = EXCLUDED.statements,
			branches = EXCLUDED.branches,
			functions = EXCLUDED.functions,
			lines = EXCLUDED.lines,
			overall = EXCLUDED.overall,
			updated_at = NOW()
		RETURNING id
	`

	m := snapshot.Metrics
	var snapshotID int64
	err = tx.QueryRow(ctx, upsert, snapshot.RepositoryID, snapshot.Branch, snapshot.CommitID,
		m.Statements, m.Branches, m.Functions, m.Lines, m.Overall).Scan(&snapshotID)
	if err != nil {
		return fmt.Errorf("failed to upsert coverage snapshot: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM coverage_files WHERE snapshot_id = $1`, snapshotID); err != nil {
		return fmt.Errorf("failed to clear coverage files: %w", err)
	}

	insertFile := `
		INSERT INTO coverage_files (snapshot_id, file_path, statements, branches, functions, lines)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, f := range snapshot.PerFile {
		if _, err := tx.Exec(ctx, insertFile, snapshotID, f.FilePath, f.Statements, f.Branches, f.Functions, f.Lines); err != nil {
			return fmt.Errorf("failed to insert coverage file %s: %w", f.FilePath, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetCoverageSnapshot returns the stored snapshot of a repository branch
func (db *DB) GetCoverageSnapshot(ctx context.Context, repositoryID int64, branch string) (*stats.CoverageSnapshot, error) {
	query := `
		SELECT id, commit_id, statements, branches, functions, lines, overall
		FROM coverage_snapshots
		WHERE repository_id = $1 AND branch = $2
	`

	snapshot := &stats.CoverageSnapshot{
		RepositoryID: repositoryID,
		Branch:       branch,
		PerFile:      []stats.FileCoverage{},
	}
	m := &snapshot.Metrics

	var snapshotID int64
	err := db.pool.QueryRow(ctx, query, repositoryID, branch).
		Scan(&snapshotID, &snapshot.CommitID, &m.Statements, &m.Branches, &m.Functions, &m.Lines, &m.Overall)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, validation.NotFound("coverage snapshot")
		}
		return nil, fmt.Errorf("failed to get coverage snapshot: %w", err)
	}

	rows, err := db.pool.Query(ctx, `
		SELECT file_path, statements, branches, functions, lines
		FROM coverage_files
		WHERE snapshot_id = $1
		ORDER BY file_path ASC
	`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("failed to get coverage files: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var f stats.FileCoverage
		if err := rows.Scan(&f.FilePath, &f.Statements, &f.Branches, &f.Functions, &f.Lines); err != nil {
			return nil, fmt.Errorf("failed to scan coverage file: %w", err)
		}
		snapshot.PerFile = append(snapshot.PerFile, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return snapshot, nil
}

// ListCoverageBranches returns the branches that have a coverage snapshot
func (db *DB) ListCoverageBranches(ctx context.Context, repositoryID int64) ([]string, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT branch FROM coverage_snapshots WHERE repository_id = $1 ORDER BY branch ASC
	`, repositoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list coverage branches: %w", err)
	}
	defer rows.Close()

	branches := []string{}
	for rows.Next() {
		var b string
		if err := rows.Scan(&b); err != nil {
			return nil, fmt.Errorf("failed to scan coverage branch: %w", err)
		}
		branches = append(branches, b)
	}

	return branches, rows.Err()
}
