package stats

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strconv"
)

// CoverageTotalKey is the report entry holding the repository-wide summary
const CoverageTotalKey = "total"

// Percent is a coverage percentage. Reports may carry a number or a
// non-numeric placeholder such as "Unknown"; the latter decodes to 0, as do
// NaN and infinities.
type Percent float64

func finitePercent(v float64) Percent {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return Percent(v)
}

func (p *Percent) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = 0
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*p = 0
			return nil
		}
		*p = finitePercent(v)
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = finitePercent(v)
	return nil
}

// CoverageMetric is one metric block of an istanbul json-summary entry
type CoverageMetric struct {
	Total   int     `json:"total"`
	Covered int     `json:"covered"`
	Skipped int     `json:"skipped"`
	Pct     Percent `json:"pct"`
}

// CoverageSummary is the summary of a single report entry
type CoverageSummary struct {
	Statements *CoverageMetric `json:"statements,omitempty"`
	Branches   *CoverageMetric `json:"branches,omitempty"`
	Functions  *CoverageMetric `json:"functions,omitempty"`
	Lines      *CoverageMetric `json:"lines,omitempty"`
}

// CoverageReport maps "total" and each file path to its summary
type CoverageReport map[string]CoverageSummary

// CoverageMetrics holds the four coverage percentages plus their mean
type CoverageMetrics struct {
	Statements float64 `json:"statements"`
	Branches   float64 `json:"branches"`
	Functions  float64 `json:"functions"`
	Lines      float64 `json:"lines"`
	Overall    float64 `json:"overall"`
}

// FileCoverage holds the coverage percentages of one file
type FileCoverage struct {
	FilePath   string  `json:"filePath"`
	Statements float64 `json:"statements"`
	Branches   float64 `json:"branches"`
	Functions  float64 `json:"functions"`
	Lines      float64 `json:"lines"`
}

// CoverageKey identifies the snapshot slot a coverage upload replaces
type CoverageKey struct {
	RepositoryID int64
	Branch       string
}

// CoverageSnapshot is the latest coverage of a repository branch
type CoverageSnapshot struct {
	RepositoryID int64           `json:"repositoryId"`
	CommitID     string          `json:"commitId"`
	Branch       string          `json:"branch"`
	Metrics      CoverageMetrics `json:"metrics"`
	PerFile      []FileCoverage  `json:"perFile"`
}

// Key returns the (repository, branch) slot of the snapshot
func (s *CoverageSnapshot) Key() CoverageKey {
	return CoverageKey{RepositoryID: s.RepositoryID, Branch: s.Branch}
}

// ParseCoverageReport decodes a json-summary document
func ParseCoverageReport(data []byte) (CoverageReport, error) {
	var report CoverageReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, &InvalidCoverageFormatError{Reason: "report must be an object of coverage summaries"}
	}
	if _, ok := report[CoverageTotalKey]; !ok {
		return nil, &InvalidCoverageFormatError{Reason: `missing "total" summary`}
	}
	return report, nil
}

// ProcessCoverage builds a snapshot from a report. The overall figure is the
// mean of the four total percentages; per-file entries are ordered by path.
func ProcessCoverage(repositoryID int64, commitID, branch string, report CoverageReport) (*CoverageSnapshot, error) {
	total, ok := report[CoverageTotalKey]
	if !ok {
		return nil, &InvalidCoverageFormatError{Reason: `missing "total" summary`}
	}

	statements := pct(total.Statements)
	branches := pct(total.Branches)
	functions := pct(total.Functions)
	lines := pct(total.Lines)

	snapshot := &CoverageSnapshot{
		RepositoryID: repositoryID,
		CommitID:     commitID,
		Branch:       branch,
		Metrics: CoverageMetrics{
			Statements: statements,
			Branches:   branches,
			Functions:  functions,
			Lines:      lines,
			Overall:    (statements + branches + functions + lines) / 4,
		},
		PerFile: make([]FileCoverage, 0, len(report)-1),
	}

	for path, summary := range report {
		if path == CoverageTotalKey {
			continue
		}
		snapshot.PerFile = append(snapshot.PerFile, FileCoverage{
			FilePath:   path,
			Statements: pct(summary.Statements),
			Branches:   pct(summary.Branches),
			Functions:  pct(summary.Functions),
			Lines:      pct(summary.Lines),
		})
	}
	sort.Slice(snapshot.PerFile, func(i, j int) bool {
		return snapshot.PerFile[i].FilePath < snapshot.PerFile[j].FilePath
	})

	return snapshot, nil
}

func pct(m *CoverageMetric) float64 {
	if m == nil {
		return 0
	}
	return float64(finitePercent(float64(m.Pct)))
}
