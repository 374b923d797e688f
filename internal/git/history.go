package git

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"repo-analytics-dashboard/internal/stats"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

type Repository struct {
	path string
	repo *git.Repository
	ref  *plumbing.Reference
}

func OpenRepository(repoPath string) (*Repository, error) {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	ref, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD reference: %w", err)
	}

	return &Repository{path: repoPath, repo: repo, ref: ref}, nil
}

// Branch returns the short name HEAD points at
func (r *Repository) Branch() string {
	return r.ref.Name().Short()
}

// ReadHistory walks every commit reachable from HEAD, newest first, and
// returns them as raw commit records with diff stats. webURL, when set,
// is used to build each commit's html_url.
func (r *Repository) ReadHistory(ctx context.Context, webURL string) ([]stats.RawCommit, error) {
	iter, err := r.repo.Log(&git.LogOptions{
		From:  r.ref.Hash(),
		Order: git.LogOrderCommitterTime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get commit log: %w", err)
	}
	defer iter.Close()

	var hashes []plumbing.Hash
	err = iter.ForEach(func(c *object.Commit) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		hashes = append(hashes, c.Hash)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate commits: %w", err)
	}

	commits := make([]stats.RawCommit, len(hashes))
	errs := make([]error, len(hashes))
	webURL = commitBaseURL(webURL)

	indexes := make(chan int)
	var wg sync.WaitGroup

	for range HistoryWorkers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			// go-git's object storage is not safe for concurrent use
			local, err := git.PlainOpen(r.path)
			if err != nil {
				for i := range indexes {
					errs[i] = err
				}
				return
			}

			for i := range indexes {
				commit, err := local.CommitObject(hashes[i])
				if err != nil {
					errs[i] = err
					continue
				}
				commits[i], errs[i] = toRawCommit(commit, webURL)
			}
		}()
	}

	for i := range hashes {
		if ctx.Err() != nil {
			break
		}
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("failed to read commit %s: %w", hashes[i], err)
		}
	}

	return commits, nil
}

func toRawCommit(c *object.Commit, webURL string) (stats.RawCommit, error) {
	fileStats, err := c.Stats()
	if err != nil {
		return stats.RawCommit{}, fmt.Errorf("failed to compute stats: %w", err)
	}

	var additions, deletions int
	files := make([]stats.RawFile, 0, len(fileStats))
	for _, s := range fileStats {
		additions += s.Addition
		deletions += s.Deletion
		files = append(files, stats.RawFile{
			Filename:  s.Name,
			Additions: s.Addition,
			Deletions: s.Deletion,
		})
	}

	sha := c.Hash.String()
	raw := stats.RawCommit{
		SHA: sha,
		Commit: &stats.RawCommitDetail{
			Author: &stats.RawAuthor{
				Name:  c.Author.Name,
				Email: c.Author.Email,
				Date:  c.Author.When.UTC().Format(time.RFC3339),
			},
			Committer: &stats.RawAuthor{
				Name:  c.Committer.Name,
				Email: c.Committer.Email,
				Date:  c.Committer.When.UTC().Format(time.RFC3339),
			},
			Message: c.Message,
		},
		Stats: &stats.RawCommitStats{
			Additions: &additions,
			Deletions: &deletions,
		},
		Files: files,
	}
	if webURL != "" {
		raw.HTMLURL = webURL + "/commit/" + sha
	}
	return raw, nil
}

// commitBaseURL maps a clone URL to its browsable form. Only http(s)
// remotes have one.
func commitBaseURL(cloneURL string) string {
	if !strings.HasPrefix(cloneURL, "http://") && !strings.HasPrefix(cloneURL, "https://") {
		return ""
	}
	return strings.TrimSuffix(strings.TrimSuffix(cloneURL, "/"), ".git")
}
