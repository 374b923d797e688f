package github

import (
	"context"
	"fmt"
	"path"
	"strings"

	"repo-analytics-dashboard/internal/stats"

	gh "github.com/google/go-github/v61/github"
)

// ListBranches returns every branch name
func (c *Client) ListBranches(ctx context.Context, owner, repo string) ([]string, error) {
	opts := &gh.BranchListOptions{ListOptions: gh.ListOptions{PerPage: perPage}}

	branches, err := paginate(ctx, c, "list_branches", func(page int) ([]*gh.Branch, *gh.Response, error) {
		opts.Page = page
		return c.gh.Repositories.ListBranches(ctx, owner, repo, opts)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list branches for %s/%s: %w", owner, repo, err)
	}

	names := make([]string, 0, len(branches))
	for _, b := range branches {
		names = append(names, b.GetName())
	}
	return names, nil
}

// ListIssues returns open and closed issues. Pull requests, which the
// issues endpoint also returns, are skipped.
func (c *Client) ListIssues(ctx context.Context, owner, repo string) ([]stats.Issue, error) {
	opts := &gh.IssueListByRepoOptions{
		State:       "all",
		ListOptions: gh.ListOptions{PerPage: perPage},
	}

	issues, err := paginate(ctx, c, "list_issues", func(page int) ([]*gh.Issue, *gh.Response, error) {
		opts.Page = page
		return c.gh.Issues.ListByRepo(ctx, owner, repo, opts)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list issues for %s/%s: %w", owner, repo, err)
	}

	out := make([]stats.Issue, 0, len(issues))
	for _, issue := range issues {
		if issue.IsPullRequest() {
			continue
		}
		out = append(out, stats.Issue{
			Number: issue.GetNumber(),
			Title:  issue.GetTitle(),
			URL:    issue.GetHTMLURL(),
		})
	}
	return out, nil
}

// ListFiles returns every blob in the tree of ref, recursively
func (c *Client) ListFiles(ctx context.Context, owner, repo, ref string) ([]stats.FileEntry, error) {
	var tree *gh.Tree
	err := c.do(ctx, "get_tree", func() error {
		var err error
		tree, _, err = c.gh.Git.GetTree(ctx, owner, repo, ref, true)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get tree %s for %s/%s: %w", ref, owner, repo, err)
	}

	if tree.GetTruncated() {
		c.log.Warn("tree listing truncated by GitHub", "repository", owner+"/"+repo, "ref", ref)
	}

	files := make([]stats.FileEntry, 0, len(tree.Entries))
	for _, e := range tree.Entries {
		if e.GetType() != "blob" {
			continue
		}
		files = append(files, stats.FileEntry{
			ID:        e.GetSHA(),
			Path:      e.GetPath(),
			Extension: strings.TrimPrefix(path.Ext(e.GetPath()), "."),
		})
	}
	return files, nil
}
