package stats

import (
	"sort"
)

// PRActivity is pull-request activity bucketed by team member
type PRActivity struct {
	PRsByMember      map[string]int `json:"prsByMember"`
	ReviewsByMember  map[string]int `json:"reviewsByMember"`
	CommentsByMember map[string]int `json:"commentsByMember"`
	TotalPRs         int            `json:"totalPRs"`
	PRsWithReview    int            `json:"prsWithReview"`
	TotalComments    int            `json:"totalComments"`
}

// PRMemberSummary is one row of the pull-request activity table
type PRMemberSummary struct {
	Name              string `json:"name"`
	PullRequests      int    `json:"pullRequests"`
	Reviews           int    `json:"reviews"`
	Comments          int    `json:"comments"`
	ReviewPercentage  int    `json:"reviewPercentage"`
	CommentPercentage int    `json:"commentPercentage"`
}

// PullRequestRecord is a single pull request with the people who reviewed
// and commented on it. Reviewers and Commenters hold one entry per review or
// comment, so a member may appear several times.
type PullRequestRecord struct {
	Number     int      `json:"number"`
	Author     string   `json:"author"`
	Reviewers  []string `json:"reviewers"`
	Commenters []string `json:"commenters"`
}

// TallyPullRequests buckets raw pull-request records by member
func TallyPullRequests(records []PullRequestRecord) PRActivity {
	a := PRActivity{
		PRsByMember:      make(map[string]int),
		ReviewsByMember:  make(map[string]int),
		CommentsByMember: make(map[string]int),
		TotalPRs:         len(records),
	}

	for _, pr := range records {
		if pr.Author != "" {
			a.PRsByMember[pr.Author]++
		}
		if len(pr.Reviewers) > 0 {
			a.PRsWithReview++
		}
		for _, r := range pr.Reviewers {
			a.ReviewsByMember[r]++
		}
		for _, c := range pr.Commenters {
			a.CommentsByMember[c]++
		}
		a.TotalComments += len(pr.Commenters)
	}

	return a
}

// SummarizePullRequests produces one row per member who authored a pull
// request. Members who only reviewed or commented are not listed. Rows are
// ordered by pull request count, then name.
func SummarizePullRequests(a PRActivity) []PRMemberSummary {
	rows := make([]PRMemberSummary, 0, len(a.PRsByMember))

	for name, prs := range a.PRsByMember {
		reviews := a.ReviewsByMember[name]
		comments := a.CommentsByMember[name]

		rows = append(rows, PRMemberSummary{
			Name:              name,
			PullRequests:      prs,
			Reviews:           reviews,
			Comments:          comments,
			ReviewPercentage:  percentage(reviews, a.PRsWithReview),
			CommentPercentage: percentage(comments, a.TotalComments),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].PullRequests != rows[j].PullRequests {
			return rows[i].PullRequests > rows[j].PullRequests
		}
		return rows[i].Name < rows[j].Name
	})

	return rows
}
