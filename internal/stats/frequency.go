package stats

import (
	"sort"
)

const (
	// TotalKey is the JSON name of the per-day total column of a ChartRow
	TotalKey = "TOTAL"

	dayLayout = "2006-01-02"
)

// DayBucket holds the commit counts of one UTC calendar day
type DayBucket struct {
	Day             string         `json:"day"`
	PerAuthorCounts map[string]int `json:"perAuthorCounts"`
	TotalCount      int            `json:"totalCount"`
}

// ChartRow is one day of the chart series. Author counts live in their own
// map so an author key can never shadow the date or total columns.
type ChartRow struct {
	Date    string         `json:"date"`
	Authors map[string]int `json:"authors"`
	Total   int            `json:"TOTAL"` // TotalKey
}

// FrequencyReport is the commit frequency series of a repository
type FrequencyReport struct {
	Days         []DayBucket       `json:"days"`
	Authors      map[string]string `json:"authors"` // author key -> display name
	TotalCommits int               `json:"totalCommits"`
}

// AuthorKey identifies an author across commits: the email, or the display
// name when no email is known. Emails are compared as given.
func AuthorKey(c CanonicalCommit) string {
	if c.AuthorEmail != "" {
		return c.AuthorEmail
	}
	return c.AuthorName
}

// CommitFrequency buckets commits by UTC day and author
func CommitFrequency(commits []CanonicalCommit) FrequencyReport {
	buckets := make(map[string]*DayBucket)
	authors := make(map[string]string)

	for _, c := range commits {
		day := c.CommittedAt.UTC().Format(dayLayout)
		key := AuthorKey(c)

		b, ok := buckets[day]
		if !ok {
			b = &DayBucket{Day: day, PerAuthorCounts: make(map[string]int)}
			buckets[day] = b
		}
		b.PerAuthorCounts[key]++
		b.TotalCount++

		if _, seen := authors[key]; !seen {
			authors[key] = c.AuthorName
		}
	}

	days := make([]DayBucket, 0, len(buckets))
	for _, b := range buckets {
		days = append(days, *b)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Day < days[j].Day
	})

	return FrequencyReport{
		Days:         days,
		Authors:      authors,
		TotalCommits: len(commits),
	}
}

// ChartRows flattens the report into one row per day holding a count for
// every known author, zero when the author has no commits that day.
func (r FrequencyReport) ChartRows() []ChartRow {
	rows := make([]ChartRow, 0, len(r.Days))
	for _, d := range r.Days {
		row := ChartRow{
			Date:    d.Day,
			Authors: make(map[string]int, len(r.Authors)),
			Total:   d.TotalCount,
		}
		for key := range r.Authors {
			row.Authors[key] = d.PerAuthorCounts[key]
		}
		rows = append(rows, row)
	}
	return rows
}
