package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"repo-analytics-dashboard/internal/stats"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func createTempRepo(t testing.TB, commitCount int) string {
	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatal(err)
	}

	w, err := repo.Worktree()
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < commitCount; i++ {
		name := fmt.Sprintf("src/file%d.go", i%3)
		full := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}

		content := ""
		for l := 0; l <= i; l++ {
			content += fmt.Sprintf("line %d\n", l)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}

		if _, err := w.Add(name); err != nil {
			t.Fatal(err)
		}

		author := &object.Signature{
			Name:  "John Doe",
			Email: "john@example.com",
			When:  baseTime.Add(time.Duration(i) * time.Hour),
		}
		if i%2 == 1 {
			author.Name, author.Email = "Jane Roe", "jane@example.com"
		}

		if _, err := w.Commit(fmt.Sprintf("commit %d", i), &git.CommitOptions{Author: author}); err != nil {
			t.Fatal(err)
		}
	}

	return dir
}

func TestReadHistory(t *testing.T) {
	dir := createTempRepo(t, 4)

	repo, err := OpenRepository(dir)
	require.NoError(t, err)

	raw, err := repo.ReadHistory(context.Background(), "https://github.com/acme/widgets.git")
	require.NoError(t, err)
	require.Len(t, raw, 4)

	// newest first
	assert.Equal(t, "commit 3", strings.TrimSpace(raw[0].Commit.Message))
	assert.Equal(t, "commit 0", strings.TrimSpace(raw[3].Commit.Message))
	assert.Equal(t, "https://github.com/acme/widgets/commit/"+raw[0].SHA, raw[0].HTMLURL)

	commits, err := stats.NormalizeCommits(raw)
	require.NoError(t, err)

	first := commits[3]
	assert.Equal(t, "John Doe", first.AuthorName)
	assert.Equal(t, "john@example.com", first.AuthorEmail)
	assert.True(t, baseTime.Equal(first.CommittedAt))
	assert.Equal(t, 1, first.Additions)
	assert.Equal(t, 0, first.Deletions)
	assert.Equal(t, 1, first.ChangedFiles)

	assert.Equal(t, "Jane Roe", commits[2].AuthorName)
}

func TestReadHistoryCancelled(t *testing.T) {
	dir := createTempRepo(t, 2)

	repo, err := OpenRepository(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = repo.ReadHistory(ctx, "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestListFiles(t *testing.T) {
	dir := createTempRepo(t, 3)

	repo, err := OpenRepository(dir)
	require.NoError(t, err)

	files, err := repo.ListFiles(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 3)

	tree := stats.BuildFileTree(files)
	src := tree.Children["src"]
	require.NotNil(t, src)
	assert.True(t, src.IsDirectory)
	assert.Len(t, src.Children, 3)
	assert.Equal(t, "go", src.Children["file0.go"].Extension)
}

func TestOpenRepositoryMissing(t *testing.T) {
	_, err := OpenRepository(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestCommitBaseURL(t *testing.T) {
	assert.Equal(t, "https://github.com/a/b", commitBaseURL("https://github.com/a/b.git"))
	assert.Equal(t, "https://github.com/a/b", commitBaseURL("https://github.com/a/b/"))
	assert.Equal(t, "", commitBaseURL("git@github.com:a/b.git"))
	assert.Equal(t, "", commitBaseURL("/tmp/repo"))
}

func BenchmarkReadHistory(b *testing.B) {
	repoPath := createTempRepo(b, 200)

	repo, err := OpenRepository(repoPath)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := repo.ReadHistory(context.Background(), ""); err != nil {
			b.Fatalf("ReadHistory failed: %v", err)
		}
	}
}
