package stats

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commitAt(sha, name, email, ts string, add, del int) CanonicalCommit {
	at, _ := time.Parse(time.RFC3339, ts)
	return CanonicalCommit{
		SHA:         sha,
		AuthorName:  name,
		AuthorEmail: email,
		CommittedAt: at.UTC(),
		Additions:   add,
		Deletions:   del,
		URL:         "https://example.com/" + sha,
	}
}

func TestCommitFrequency(t *testing.T) {
	commits := []CanonicalCommit{
		commitAt("3", "Ada", "ada@x.io", "2024-03-02T09:00:00Z", 1, 0),
		commitAt("1", "Ada", "ada@x.io", "2024-03-01T09:00:00Z", 1, 0),
		commitAt("2", "Grace", "grace@x.io", "2024-03-01T23:59:59Z", 1, 0),
		commitAt("4", "Bob", "", "2024-03-02T01:00:00+05:00", 1, 0),
	}

	report := CommitFrequency(commits)

	require.Len(t, report.Days, 2)
	assert.Equal(t, "2024-03-01", report.Days[0].Day)
	assert.Equal(t, "2024-03-02", report.Days[1].Day)
	assert.Equal(t, 4, report.TotalCommits)

	// 2024-03-02T01:00+05:00 is 2024-03-01T20:00Z
	assert.Equal(t, 3, report.Days[0].TotalCount)
	assert.Equal(t, 1, report.Days[0].PerAuthorCounts["Bob"])
	assert.Equal(t, "Grace", report.Authors["grace@x.io"])

	sum := 0
	for _, d := range report.Days {
		daySum := 0
		for _, n := range d.PerAuthorCounts {
			daySum += n
		}
		assert.Equal(t, d.TotalCount, daySum)
		sum += d.TotalCount
	}
	assert.Equal(t, len(commits), sum)
}

func TestCommitFrequencyEmpty(t *testing.T) {
	report := CommitFrequency(nil)
	assert.Empty(t, report.Days)
	assert.Zero(t, report.TotalCommits)
}

func TestCommitFrequencyDoesNotFoldEmailCase(t *testing.T) {
	report := CommitFrequency([]CanonicalCommit{
		commitAt("1", "Ada", "Ada@x.io", "2024-03-01T09:00:00Z", 0, 0),
		commitAt("2", "Ada", "ada@x.io", "2024-03-01T10:00:00Z", 0, 0),
	})
	assert.Len(t, report.Authors, 2)
}

func TestFrequencyChartRows(t *testing.T) {
	report := CommitFrequency([]CanonicalCommit{
		commitAt("1", "Ada", "ada@x.io", "2024-03-01T09:00:00Z", 0, 0),
		commitAt("2", "Grace", "grace@x.io", "2024-03-02T09:00:00Z", 0, 0),
	})

	rows := report.ChartRows()
	require.Len(t, rows, 2)
	assert.Equal(t, "2024-03-01", rows[0].Date)
	assert.Equal(t, 1, rows[0].Authors["ada@x.io"])
	assert.Equal(t, 0, rows[0].Authors["grace@x.io"])
	assert.Equal(t, 1, rows[0].Total)
}

func TestFrequencyChartRowsReservedAuthorNames(t *testing.T) {
	report := CommitFrequency([]CanonicalCommit{
		commitAt("1", TotalKey, "", "2024-03-01T09:00:00Z", 0, 0),
		commitAt("2", "date", "", "2024-03-01T10:00:00Z", 0, 0),
		commitAt("3", "X", "x@x", "2024-03-01T11:00:00Z", 0, 0),
		commitAt("4", "X", "x@x", "2024-03-01T12:00:00Z", 0, 0),
	})

	rows := report.ChartRows()
	require.Len(t, rows, 1)
	assert.Equal(t, "2024-03-01", rows[0].Date)
	assert.Equal(t, 4, rows[0].Total)
	assert.Equal(t, map[string]int{TotalKey: 1, "date": 1, "x@x": 2}, rows[0].Authors)
}

func TestCommitSizeStats(t *testing.T) {
	commits := []CanonicalCommit{
		commitAt("a", "Ada", "ada@x.io", "2024-03-01T09:00:00Z", 10, 0),
		commitAt("b", "Ada", "ada@x.io", "2024-03-01T10:00:00Z", 5, 5),
	}

	s := CommitSizeStats(commits)

	assert.Equal(t, 15, s.TotalAdditions)
	assert.Equal(t, 5, s.TotalDeletions)
	assert.Equal(t, 2, s.CommitCount)
	assert.Equal(t, 10.0, s.AverageChanges)
	assert.Equal(t, 3.0, s.AddDeleteRatio)
	require.NotNil(t, s.LargestCommit)
	assert.Equal(t, "a", s.LargestCommit.SHA)
	assert.Equal(t, "https://example.com/a", s.LargestCommit.URL)
	require.Len(t, s.Authors, 1)
	assert.Equal(t, 2, s.Authors[0].Commits)
}

func TestCommitSizeStatsEdgeCases(t *testing.T) {
	t.Run("no commits", func(t *testing.T) {
		s := CommitSizeStats(nil)
		assert.Zero(t, s.AverageChanges)
		assert.Zero(t, s.AddDeleteRatio)
		assert.Nil(t, s.LargestCommit)
	})

	t.Run("no deletions", func(t *testing.T) {
		s := CommitSizeStats([]CanonicalCommit{commitAt("a", "Ada", "ada@x.io", "2024-03-01T09:00:00Z", 7, 0)})
		assert.Equal(t, 7.0, s.AddDeleteRatio)
	})

	t.Run("co-authored trailer", func(t *testing.T) {
		c1 := commitAt("a", "Ada", "ada@x.io", "2024-03-01T09:00:00Z", 3, 1)
		c1.Message = "Pair work\n\nCO-AUTHORED-BY: Grace <grace@x.io>"
		c2 := commitAt("b", "Ada", "ada@x.io", "2024-03-01T09:00:00Z", 100, 0)
		c2.Message = "Solo work"

		s := CommitSizeStats([]CanonicalCommit{c1, c2})
		assert.Equal(t, 1, s.CoAuthoredCommits)
		assert.Equal(t, 4, s.CoAuthoredLines)
	})
}

func TestBusFactor(t *testing.T) {
	commits := []CanonicalCommit{
		commitAt("1", "Ada", "ada@x.io", "2024-03-01T09:00:00Z", 0, 0),
		commitAt("2", "Ada", "ada@x.io", "2024-03-01T09:00:00Z", 0, 0),
		commitAt("3", "Ada", "ada@x.io", "2024-03-01T09:00:00Z", 0, 0),
		commitAt("4", "Grace", "grace@x.io", "2024-03-01T09:00:00Z", 0, 0),
	}

	result := BusFactor(commits, 0.5)
	assert.Equal(t, 1, result.BusFactor)
	assert.Equal(t, RiskHigh, result.RiskLevel)
	assert.Equal(t, 75.0, result.TopContributors[0].OwnershipPct)

	result = BusFactor(commits, 0.9)
	assert.Equal(t, 2, result.BusFactor)
	assert.Equal(t, RiskMedium, result.RiskLevel)

	empty := BusFactor(nil, 0.5)
	assert.Equal(t, RiskUnknown, empty.RiskLevel)
	assert.Zero(t, empty.BusFactor)
}

func TestActivityCalendar(t *testing.T) {
	days := []DayBucket{
		{Day: "2024-03-01", TotalCount: 3},
		{Day: "2024-03-03", TotalCount: 12},
	}
	from := time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 3, 1, 0, 0, 0, time.UTC)

	cal := ActivityCalendar(days, from, to)

	require.Len(t, cal, 3)
	assert.Equal(t, ActivityLevel{Date: "2024-03-01", Count: 3, Level: 2}, cal[0])
	assert.Equal(t, ActivityLevel{Date: "2024-03-02", Count: 0, Level: 0}, cal[1])
	assert.Equal(t, ActivityLevel{Date: "2024-03-03", Count: 12, Level: 4}, cal[2])
}

func TestAggregatorsAreIdempotent(t *testing.T) {
	commits := []CanonicalCommit{
		commitAt("1", "Ada", "ada@x.io", "2024-03-01T09:00:00Z", 3, 2),
		commitAt("2", "Grace", "grace@x.io", "2024-03-02T09:00:00Z", 8, 1),
		commitAt("3", "Bob", "bob@x.io", "2024-03-02T11:00:00Z", 8, 1),
	}

	encode := func(v any) string {
		b, err := json.Marshal(v)
		require.NoError(t, err)
		return string(b)
	}

	report, err := ParseCoverageReport([]byte(summaryReport))
	require.NoError(t, err)
	files := entries("src/a.ts", "src/lib/b.ts", "README.md")
	branches := []string{"main", "1-a", "feature/2-b", "cleanup"}
	issues := []Issue{{Number: 1, Title: "A", URL: "u1"}}
	prs := []PullRequestRecord{
		{Number: 1, Author: "ada", Reviewers: []string{"grace"}, Commenters: []string{"bob"}},
		{Number: 2, Author: "grace", Reviewers: []string{"ada"}},
	}
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 3)

	components := map[string]func() any{
		"frequency":     func() any { return CommitFrequency(commits) },
		"size":          func() any { return CommitSizeStats(commits) },
		"bus factor":    func() any { return BusFactor(commits, 0.5) },
		"activity":      func() any { return ActivityCalendar(CommitFrequency(commits).Days, from, to) },
		"branches":      func() any { return LinkBranches(branches, issues) },
		"file tree":     func() any { return BuildFileTree(files) },
		"pull requests": func() any { return SummarizePullRequests(TallyPullRequests(prs)) },
		"coverage": func() any {
			snapshot, err := ProcessCoverage(1, "abc", "main", report)
			require.NoError(t, err)
			return snapshot
		},
	}

	for name, run := range components {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, encode(run()), encode(run()))
		})
	}
}
