package database

import (
	"context"
	"testing"
	"time"

	"repo-analytics-dashboard/internal/validation"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
)

var repositoryRowColumns = []string{"id", "url", "owner", "name", "local_path", "default_branch", "status", "last_indexed_at", "created_at", "updated_at"}

func TestCreateRepository(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	db := NewTestDB(mock)
	ctx := context.Background()

	repo := &Repository{
		URL:   "https://github.com/test/repo",
		Owner: "test",
		Name:  "repo",
	}

	mock.ExpectQuery("INSERT INTO repositories").
		WithArgs(repo.URL, "test", "repo", StatusPending, "main").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(int64(10), time.Now(), time.Now()))

	if err := db.CreateRepository(ctx, repo); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if repo.ID != 10 {
		t.Errorf("expected repo ID 10, got %d", repo.ID)
	}

	if repo.DefaultBranch != "main" {
		t.Errorf("expected default branch main, got %s", repo.DefaultBranch)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestGetRepository(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	db := NewTestDB(mock)
	ctx := context.Background()

	expectedID := int64(10)
	var localPath *string
	var indexedAt *time.Time
	mock.ExpectQuery("SELECT id, url, owner, name, local_path, default_branch, status").
		WithArgs(expectedID).
		WillReturnRows(pgxmock.NewRows(repositoryRowColumns).
			AddRow(expectedID, "https://github.com/test/repo", "test", "repo", localPath, "main", StatusPending, indexedAt, time.Now(), time.Now()))

	repo, err := db.GetRepository(ctx, expectedID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if repo.ID != expectedID {
		t.Errorf("expected ID %d, got %d", expectedID, repo.ID)
	}

	if repo.FullName() != "test/repo" {
		t.Errorf("expected full name test/repo, got %s", repo.FullName())
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestGetRepositoryNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	db := NewTestDB(mock)

	mock.ExpectQuery("SELECT id, url, owner").
		WithArgs(int64(99)).
		WillReturnError(pgx.ErrNoRows)

	_, err = db.GetRepository(context.Background(), 99)
	if !validation.IsNotFound(err) {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestUpdateRepositoryStatusNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	db := NewTestDB(mock)

	mock.ExpectExec("UPDATE repositories").
		WithArgs(StatusIndexing, int64(5)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = db.UpdateRepositoryStatus(context.Background(), 5, StatusIndexing)
	if !validation.IsNotFound(err) {
		t.Errorf("expected not found error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestEnsureSchema(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS repositories").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	if err := NewTestDB(mock).EnsureSchema(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
