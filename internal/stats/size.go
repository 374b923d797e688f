package stats

import (
	"regexp"
	"sort"
)

var coAuthoredBy = regexp.MustCompile(`(?i)co-authored-by:`)

// LargestCommit identifies the commit with the most changed lines
type LargestCommit struct {
	SHA     string `json:"sha"`
	URL     string `json:"url"`
	Changes int    `json:"changes"`
}

// AuthorSize is the per-author slice of the size statistics
type AuthorSize struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	Commits   int    `json:"commits"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
}

// SizeStats summarizes commit sizes of a repository
type SizeStats struct {
	TotalAdditions    int            `json:"totalAdditions"`
	TotalDeletions    int            `json:"totalDeletions"`
	TotalChangedFiles int            `json:"totalChangedFiles"`
	CommitCount       int            `json:"commitCount"`
	AverageChanges    float64        `json:"averageChanges"`
	AddDeleteRatio    float64        `json:"addDeleteRatio"`
	LargestCommit     *LargestCommit `json:"largestCommit,omitempty"`
	CoAuthoredCommits int            `json:"coAuthoredCommits"`
	CoAuthoredLines   int            `json:"coAuthoredLines"`
	Authors           []AuthorSize   `json:"authors"`
}

// IsCoAuthored reports whether a commit message carries a Co-authored-by trailer
func IsCoAuthored(message string) bool {
	return coAuthoredBy.MatchString(message)
}

// CommitSizeStats computes totals, averages and the largest commit.
// With no deletions the add/delete ratio is the addition count itself.
func CommitSizeStats(commits []CanonicalCommit) SizeStats {
	s := SizeStats{
		CommitCount: len(commits),
		Authors:     []AuthorSize{},
	}

	authors := make(map[string]*AuthorSize)

	for _, c := range commits {
		s.TotalAdditions += c.Additions
		s.TotalDeletions += c.Deletions
		s.TotalChangedFiles += c.ChangedFiles

		changes := c.Changes()
		if s.LargestCommit == nil || changes > s.LargestCommit.Changes {
			s.LargestCommit = &LargestCommit{SHA: c.SHA, URL: c.URL, Changes: changes}
		}

		if IsCoAuthored(c.Message) {
			s.CoAuthoredCommits++
			s.CoAuthoredLines += changes
		}

		key := AuthorKey(c)
		a, ok := authors[key]
		if !ok {
			a = &AuthorSize{Key: key, Name: c.AuthorName}
			authors[key] = a
		}
		a.Commits++
		a.Additions += c.Additions
		a.Deletions += c.Deletions
	}

	if s.CommitCount > 0 {
		s.AverageChanges = float64(s.TotalAdditions+s.TotalDeletions) / float64(s.CommitCount)
	}

	if s.TotalDeletions == 0 {
		s.AddDeleteRatio = float64(s.TotalAdditions)
	} else {
		s.AddDeleteRatio = float64(s.TotalAdditions) / float64(s.TotalDeletions)
	}

	for _, a := range authors {
		s.Authors = append(s.Authors, *a)
	}
	sort.Slice(s.Authors, func(i, j int) bool {
		ci := s.Authors[i].Additions + s.Authors[i].Deletions
		cj := s.Authors[j].Additions + s.Authors[j].Deletions
		if ci != cj {
			return ci > cj
		}
		return s.Authors[i].Key < s.Authors[j].Key
	})

	return s
}
