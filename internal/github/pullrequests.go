package github

import (
	"context"
	"fmt"

	"repo-analytics-dashboard/internal/stats"

	gh "github.com/google/go-github/v61/github"
)

// PullRequestRecords returns up to limit of the most recently created pull
// requests with the logins of their reviewers and commenters.
func (c *Client) PullRequestRecords(ctx context.Context, owner, repo string, limit int) ([]stats.PullRequestRecord, error) {
	if limit <= 0 {
		limit = DefaultMaxPullRequests
	}

	opts := &gh.PullRequestListOptions{
		State:       "all",
		Sort:        "created",
		Direction:   "desc",
		ListOptions: gh.ListOptions{PerPage: perPage},
	}

	var prs []*gh.PullRequest
	for {
		var page []*gh.PullRequest
		var resp *gh.Response
		err := c.do(ctx, "list_pull_requests", func() error {
			var err error
			page, resp, err = c.gh.PullRequests.List(ctx, owner, repo, opts)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list pull requests for %s/%s: %w", owner, repo, err)
		}

		prs = append(prs, page...)
		if len(prs) >= limit || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	if len(prs) > limit {
		prs = prs[:limit]
	}

	records := make([]stats.PullRequestRecord, 0, len(prs))
	for _, pr := range prs {
		record, err := c.pullRequestRecord(ctx, owner, repo, pr)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (c *Client) pullRequestRecord(ctx context.Context, owner, repo string, pr *gh.PullRequest) (stats.PullRequestRecord, error) {
	number := pr.GetNumber()
	record := stats.PullRequestRecord{
		Number: number,
		Author: pr.GetUser().GetLogin(),
	}

	reviewOpts := &gh.ListOptions{PerPage: perPage}
	reviews, err := paginate(ctx, c, "list_reviews", func(page int) ([]*gh.PullRequestReview, *gh.Response, error) {
		reviewOpts.Page = page
		return c.gh.PullRequests.ListReviews(ctx, owner, repo, number, reviewOpts)
	})
	if err != nil {
		return record, fmt.Errorf("failed to list reviews for #%d: %w", number, err)
	}
	for _, r := range reviews {
		if login := r.GetUser().GetLogin(); login != "" {
			record.Reviewers = append(record.Reviewers, login)
		}
	}

	commentOpts := &gh.IssueListCommentsOptions{ListOptions: gh.ListOptions{PerPage: perPage}}
	comments, err := paginate(ctx, c, "list_comments", func(page int) ([]*gh.IssueComment, *gh.Response, error) {
		commentOpts.Page = page
		return c.gh.Issues.ListComments(ctx, owner, repo, number, commentOpts)
	})
	if err != nil {
		return record, fmt.Errorf("failed to list comments for #%d: %w", number, err)
	}
	for _, cm := range comments {
		if login := cm.GetUser().GetLogin(); login != "" {
			record.Commenters = append(record.Commenters, login)
		}
	}

	return record, nil
}
