package worker

import (
	"context"

	"repo-analytics-dashboard/internal/git"
	"repo-analytics-dashboard/internal/github"
	"repo-analytics-dashboard/internal/stats"
)

// Snapshot is everything a fetch produced for one repository
type Snapshot struct {
	Commits []stats.RawCommit
	Files   []stats.FileEntry
	Branch  string
}

// LocalSource reads history from a local clone
type LocalSource interface {
	Fetch(ctx context.Context, url, localPath string) (*Snapshot, error)
}

// RemoteSource reads history from the GitHub API
type RemoteSource interface {
	ListCommits(ctx context.Context, owner, repo string, opts github.CommitListOptions) ([]stats.RawCommit, error)
	ListFiles(ctx context.Context, owner, repo, ref string) ([]stats.FileEntry, error)
}

// GitSource clones or fetches with go-git and walks HEAD
type GitSource struct {
	cloner *git.Cloner
}

func NewGitSource(cloner *git.Cloner) *GitSource {
	return &GitSource{cloner: cloner}
}

func (s *GitSource) Fetch(ctx context.Context, url, localPath string) (*Snapshot, error) {
	if _, err := s.cloner.CloneOrFetch(ctx, url, localPath); err != nil {
		return nil, err
	}

	repo, err := git.OpenRepository(localPath)
	if err != nil {
		return nil, err
	}

	commits, err := repo.ReadHistory(ctx, url)
	if err != nil {
		return nil, err
	}

	files, err := repo.ListFiles(ctx)
	if err != nil {
		return nil, err
	}

	return &Snapshot{Commits: commits, Files: files, Branch: repo.Branch()}, nil
}
