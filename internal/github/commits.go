package github

import (
	"context"
	"fmt"
	"time"

	"repo-analytics-dashboard/internal/stats"

	gh "github.com/google/go-github/v61/github"
)

// CommitListOptions narrows a commit listing
type CommitListOptions struct {
	Branch string
	Since  time.Time

	// WithStats fetches each commit individually to get additions, deletions and files
	WithStats bool
}

// ListCommits returns the commits of a repository in API order (newest first)
func (c *Client) ListCommits(ctx context.Context, owner, repo string, opts CommitListOptions) ([]stats.RawCommit, error) {
	listOpts := &gh.CommitsListOptions{
		SHA:         opts.Branch,
		Since:       opts.Since,
		ListOptions: gh.ListOptions{PerPage: perPage},
	}

	commits, err := paginate(ctx, c, "list_commits", func(page int) ([]*gh.RepositoryCommit, *gh.Response, error) {
		listOpts.Page = page
		return c.gh.Repositories.ListCommits(ctx, owner, repo, listOpts)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list commits for %s/%s: %w", owner, repo, err)
	}

	raw := make([]stats.RawCommit, 0, len(commits))
	for _, commit := range commits {
		if opts.WithStats {
			detail, err := c.getCommit(ctx, owner, repo, commit.GetSHA())
			if err != nil {
				return nil, err
			}
			commit = detail
		}

		r := toRawCommit(commit)
		r.Branch = opts.Branch
		raw = append(raw, r)
	}

	return raw, nil
}

func (c *Client) getCommit(ctx context.Context, owner, repo, sha string) (*gh.RepositoryCommit, error) {
	var commit *gh.RepositoryCommit
	err := c.do(ctx, "get_commit", func() error {
		var err error
		commit, _, err = c.gh.Repositories.GetCommit(ctx, owner, repo, sha, nil)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get commit %s: %w", sha, err)
	}
	return commit, nil
}

func toRawCommit(rc *gh.RepositoryCommit) stats.RawCommit {
	raw := stats.RawCommit{
		SHA:     rc.GetSHA(),
		HTMLURL: rc.GetHTMLURL(),
	}

	if commit := rc.GetCommit(); commit != nil {
		raw.Commit = &stats.RawCommitDetail{
			Author:    toRawAuthor(commit.GetAuthor()),
			Committer: toRawAuthor(commit.GetCommitter()),
			Message:   commit.GetMessage(),
		}
	}

	if user := rc.GetAuthor(); user != nil {
		raw.Author = &stats.RawAuthor{Login: user.GetLogin()}
	}

	if s := rc.GetStats(); s != nil {
		raw.Stats = &stats.RawCommitStats{
			Additions: s.Additions,
			Deletions: s.Deletions,
			Total:     s.Total,
		}
	}

	for _, f := range rc.Files {
		raw.Files = append(raw.Files, stats.RawFile{
			Filename:  f.GetFilename(),
			Additions: f.GetAdditions(),
			Deletions: f.GetDeletions(),
		})
	}

	return raw
}

func toRawAuthor(a *gh.CommitAuthor) *stats.RawAuthor {
	if a == nil {
		return nil
	}

	author := &stats.RawAuthor{
		Name:  a.GetName(),
		Email: a.GetEmail(),
	}
	if a.Date != nil {
		author.Date = a.Date.UTC().Format(time.RFC3339)
	}
	return author
}
