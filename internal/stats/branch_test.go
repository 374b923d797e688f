package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractIssueNumber(t *testing.T) {
	tests := []struct {
		branch string
		want   string
		ok     bool
	}{
		{"123-fix-login", "123", true},
		{"42/refactor", "42", true},
		{"feature/45-add-button", "45", true},
		{"Issue-9-crash", "9", true},
		{"BUGFIX/300/null-check", "300", true},
		{"hotfix-2-typo", "2", true},
		{"cleanup", "", false},
		{"feature/add-button", "", false},
		{"release-2024", "", false},
		{"12", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.branch, func(t *testing.T) {
			got, ok := ExtractIssueNumber(tt.branch)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLinkBranches(t *testing.T) {
	issues := []Issue{
		{Number: 123, Title: "Login broken", URL: "https://github.com/o/r/issues/123"},
		{Number: 45, Title: "Add button", URL: "https://github.com/o/r/issues/45"},
	}
	branches := []string{"main", "123-fix-login", "feature/45-add-button", "7-missing", "cleanup", "master"}

	report := LinkBranches(branches, issues)

	require.Len(t, report.Branches, 4)
	assert.Equal(t, 4, report.Total)
	assert.Equal(t, 2, report.LinkedCount)
	assert.Equal(t, 2, report.UnlinkedCount)
	assert.Equal(t, 50, report.LinkPercentage)

	linked := report.Branches[0]
	assert.True(t, linked.IsLinked)
	require.NotNil(t, linked.IssueTitle)
	assert.Equal(t, "Login broken", *linked.IssueTitle)
	assert.Equal(t, "https://github.com/o/r/issues/123", linked.URL)

	unresolved := report.Branches[2]
	assert.False(t, unresolved.IsLinked)
	require.NotNil(t, unresolved.IssueNumber)
	assert.Equal(t, "7", *unresolved.IssueNumber)
	assert.Nil(t, unresolved.IssueTitle)
	assert.Equal(t, UnlinkedURL, unresolved.URL)

	noNumber := report.Branches[3]
	assert.Nil(t, noNumber.IssueNumber)
	assert.Equal(t, UnlinkedURL, noNumber.URL)
}

func TestLinkBranchesNumericEquality(t *testing.T) {
	report := LinkBranches([]string{"007-bond"}, []Issue{{Number: 7, Title: "Bond", URL: "u"}})
	require.Len(t, report.Branches, 1)
	assert.True(t, report.Branches[0].IsLinked)
	assert.Equal(t, "007", *report.Branches[0].IssueNumber)
}

func TestLinkBranchesPercentageRounding(t *testing.T) {
	report := LinkBranches([]string{"1-a", "2-b", "3-c"}, []Issue{{Number: 1}, {Number: 2}})
	assert.Equal(t, 67, report.LinkPercentage)
	assert.Equal(t, report.Total, report.LinkedCount+report.UnlinkedCount)
}

func TestLinkBranchesEmpty(t *testing.T) {
	report := LinkBranches(nil, nil)
	assert.Zero(t, report.Total)
	assert.Zero(t, report.LinkPercentage)
	assert.NotNil(t, report.Branches)
}
