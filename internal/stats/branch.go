package stats

import (
	"math"
	"regexp"
	"strconv"
)

// UnlinkedURL is the link target of a branch without a resolved issue
const UnlinkedURL = "#"

// Issue is a tracker issue branches may reference
type Issue struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	URL    string `json:"url"`
}

// BranchLink is the result of matching a branch name against issues
type BranchLink struct {
	BranchName  string  `json:"branchName"`
	IssueNumber *string `json:"issueNumber"`
	IsLinked    bool    `json:"isLinked"`
	IssueTitle  *string `json:"issueTitle"`
	URL         string  `json:"url"`
}

// BranchLinkReport summarizes issue linkage over a set of branches
type BranchLinkReport struct {
	Branches       []BranchLink `json:"branches"`
	Total          int          `json:"total"`
	LinkedCount    int          `json:"linkedCount"`
	UnlinkedCount  int          `json:"unlinkedCount"`
	LinkPercentage int          `json:"linkPercentage"`
}

type issueRule struct {
	pattern *regexp.Regexp
	group   int
}

// Rules are tried in order; the first match wins.
var issueRules = []issueRule{
	{pattern: regexp.MustCompile(`^(\d+)[-/]`), group: 1},
	{pattern: regexp.MustCompile(`(?i)(issue|feature|bugfix|hotfix)[-/](\d+)[-/]`), group: 2},
}

var defaultBranches = map[string]bool{
	"main":   true,
	"master": true,
}

// ExtractIssueNumber returns the issue number a branch name refers to
func ExtractIssueNumber(branch string) (string, bool) {
	for _, rule := range issueRules {
		m := rule.pattern.FindStringSubmatch(branch)
		if m != nil {
			return m[rule.group], true
		}
	}
	return "", false
}

// LinkBranches resolves each branch to an issue by numeric issue number.
// Default branches are not reported.
func LinkBranches(branches []string, issues []Issue) BranchLinkReport {
	byNumber := make(map[int]Issue, len(issues))
	for _, issue := range issues {
		if _, ok := byNumber[issue.Number]; !ok {
			byNumber[issue.Number] = issue
		}
	}

	report := BranchLinkReport{Branches: []BranchLink{}}

	for _, name := range branches {
		if defaultBranches[name] {
			continue
		}

		link := BranchLink{BranchName: name, URL: UnlinkedURL}

		if number, ok := ExtractIssueNumber(name); ok {
			n := number
			link.IssueNumber = &n

			if parsed, err := strconv.Atoi(number); err == nil {
				if issue, found := byNumber[parsed]; found {
					title := issue.Title
					link.IsLinked = true
					link.IssueTitle = &title
					link.URL = issue.URL
				}
			}
		}

		if link.IsLinked {
			report.LinkedCount++
		} else {
			report.UnlinkedCount++
		}
		report.Branches = append(report.Branches, link)
	}

	report.Total = len(report.Branches)
	report.LinkPercentage = percentage(report.LinkedCount, report.Total)

	return report
}

// percentage returns round(part/whole*100), or 0 when whole is 0
func percentage(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}
