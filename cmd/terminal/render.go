package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"repo-analytics-dashboard/internal/stats"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

func newTable(w io.Writer, headers ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	return table
}

func render(table *tablewriter.Table, data [][]string) error {
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func formatPct(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + "%"
}

func renderFrequency(w io.Writer, report stats.FrequencyReport) error {
	table := newTable(w, "Date", "Commits", "Top Author")

	var data [][]string
	for _, d := range report.Days {
		data = append(data, []string{d.Day, strconv.Itoa(d.TotalCount), topAuthor(d, report.Authors)})
	}
	if err := render(table, data); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "%d commits on %d days by %d authors\n", report.TotalCommits, len(report.Days), len(report.Authors))
	return err
}

// topAuthor names the busiest author of a day, smallest key first on ties
func topAuthor(d stats.DayBucket, names map[string]string) string {
	keys := make([]string, 0, len(d.PerAuthorCounts))
	for k := range d.PerAuthorCounts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	best := ""
	for _, k := range keys {
		if best == "" || d.PerAuthorCounts[k] > d.PerAuthorCounts[best] {
			best = k
		}
	}
	if name, ok := names[best]; ok {
		return name
	}
	return best
}

func renderSize(w io.Writer, s stats.SizeStats) error {
	table := newTable(w, "Author", "Commits", "Additions", "Deletions")

	var data [][]string
	for _, a := range s.Authors {
		data = append(data, []string{a.Name, strconv.Itoa(a.Commits), strconv.Itoa(a.Additions), strconv.Itoa(a.Deletions)})
	}
	if err := render(table, data); err != nil {
		return err
	}

	fmt.Fprintf(w, "+%d -%d across %d commits (avg %.1f lines, ratio %.2f)\n",
		s.TotalAdditions, s.TotalDeletions, s.CommitCount, s.AverageChanges, s.AddDeleteRatio)
	if s.LargestCommit != nil {
		fmt.Fprintf(w, "largest commit %s with %d changed lines\n", s.LargestCommit.SHA, s.LargestCommit.Changes)
	}
	_, err := fmt.Fprintf(w, "%d co-authored commits, %d lines\n", s.CoAuthoredCommits, s.CoAuthoredLines)
	return err
}

func renderBusFactor(w io.Writer, result stats.BusFactorResult) error {
	table := newTable(w, "Rank", "Author", "Commits", "Ownership")

	var data [][]string
	for i, c := range result.TopContributors {
		data = append(data, []string{strconv.Itoa(i + 1), c.Name, strconv.Itoa(c.Commits), formatPct(c.OwnershipPct)})
	}
	if err := render(table, data); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "bus factor %d at %s of %d commits (risk: %s)\n",
		result.BusFactor, formatPct(result.Threshold*100), result.TotalCommits, result.RiskLevel)
	return err
}

func renderCoverage(w io.Writer, snapshot *stats.CoverageSnapshot) error {
	table := newTable(w, "File", "Statements", "Branches", "Functions", "Lines")

	data := make([][]string, 0, len(snapshot.PerFile)+1)
	for _, f := range snapshot.PerFile {
		data = append(data, []string{f.FilePath, formatPct(f.Statements), formatPct(f.Branches), formatPct(f.Functions), formatPct(f.Lines)})
	}
	m := snapshot.Metrics
	data = append(data, []string{"total", formatPct(m.Statements), formatPct(m.Branches), formatPct(m.Functions), formatPct(m.Lines)})
	if err := render(table, data); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "overall %s on %s\n", formatPct(m.Overall), snapshot.Branch)
	return err
}

func renderTree(w io.Writer, root *stats.FileTreeNode) {
	var walk func(n *stats.FileTreeNode, depth int)
	walk = func(n *stats.FileTreeNode, depth int) {
		for _, c := range n.SortedChildren() {
			name := c.Name
			if c.IsDirectory {
				name += "/"
			}
			fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), name)
			if c.IsDirectory {
				walk(c, depth+1)
			}
		}
	}
	walk(root, 0)
}
