package database

import (
	"context"
	"errors"
	"testing"

	"repo-analytics-dashboard/internal/stats"
	"repo-analytics-dashboard/internal/validation"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot() *stats.CoverageSnapshot {
	return &stats.CoverageSnapshot{
		RepositoryID: 7,
		CommitID:     "abc123",
		Branch:       "main",
		Metrics: stats.CoverageMetrics{
			Statements: 70, Branches: 50, Functions: 90, Lines: 80, Overall: 72.5,
		},
		PerFile: []stats.FileCoverage{
			{FilePath: "src/a.ts", Statements: 100, Branches: 100, Functions: 100, Lines: 100},
			{FilePath: "src/b.ts", Statements: 40, Branches: 0, Functions: 50, Lines: 60},
		},
	}
}

func TestUpsertCoverageSnapshotReplacesFiles(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	db := NewTestDB(mock)
	snapshot := testSnapshot()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO coverage_snapshots").
		WithArgs(int64(7), "main", "abc123", 70.0, 50.0, 90.0, 80.0, 72.5).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(3)))
	mock.ExpectExec("DELETE FROM coverage_files").
		WithArgs(int64(3)).
		WillReturnResult(pgxmock.NewResult("DELETE", 5))
	mock.ExpectExec("INSERT INTO coverage_files").
		WithArgs(int64(3), "src/a.ts", 100.0, 100.0, 100.0, 100.0).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO coverage_files").
		WithArgs(int64(3), "src/b.ts", 40.0, 0.0, 50.0, 60.0).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, db.UpsertCoverageSnapshot(context.Background(), snapshot))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertCoverageSnapshotRollsBackOnFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	db := NewTestDB(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO coverage_snapshots").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err = db.UpsertCoverageSnapshot(context.Background(), testSnapshot())
	assert.ErrorContains(t, err, "failed to upsert coverage snapshot")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCoverageSnapshot(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	db := NewTestDB(mock)

	mock.ExpectQuery("SELECT id, commit_id, statements").
		WithArgs(int64(7), "main").
		WillReturnRows(pgxmock.NewRows([]string{"id", "commit_id", "statements", "branches", "functions", "lines", "overall"}).
			AddRow(int64(3), "abc123", 70.0, 50.0, 90.0, 80.0, 72.5))
	mock.ExpectQuery("SELECT file_path").
		WithArgs(int64(3)).
		WillReturnRows(pgxmock.NewRows([]string{"file_path", "statements", "branches", "functions", "lines"}).
			AddRow("src/a.ts", 100.0, 100.0, 100.0, 100.0))

	snapshot, err := db.GetCoverageSnapshot(context.Background(), 7, "main")
	require.NoError(t, err)

	assert.Equal(t, "abc123", snapshot.CommitID)
	assert.Equal(t, 72.5, snapshot.Metrics.Overall)
	require.Len(t, snapshot.PerFile, 1)
	assert.Equal(t, "src/a.ts", snapshot.PerFile[0].FilePath)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCoverageSnapshotNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT id, commit_id").
		WithArgs(int64(7), "dev").
		WillReturnError(pgx.ErrNoRows)

	_, err = NewTestDB(mock).GetCoverageSnapshot(context.Background(), 7, "dev")
	assert.True(t, validation.IsNotFound(err))
}
