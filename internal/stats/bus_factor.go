package stats

import (
	"sort"
)

const (
	DefaultBusFactorThreshold = 0.5

	RiskHigh    = "high"
	RiskMedium  = "medium"
	RiskLow     = "low"
	RiskUnknown = "unknown"
)

// BusFactorResult holds the calculated bus factor and ownership data
type BusFactorResult struct {
	BusFactor       int                    `json:"busFactor"`
	Threshold       float64                `json:"threshold"` // e.g., 0.5 for 50%
	TotalCommits    int                    `json:"totalCommits"`
	TopContributors []ContributorOwnership `json:"topContributors"`
	RiskLevel       string                 `json:"riskLevel"`
}

// ContributorOwnership represents a contributor's share of the commit history
type ContributorOwnership struct {
	Key          string  `json:"key"`
	Name         string  `json:"name"`
	Commits      int     `json:"commits"`
	OwnershipPct float64 `json:"ownershipPct"`
}

// BusFactor returns the minimum number of contributors who together
// authored threshold of all commits.
func BusFactor(commits []CanonicalCommit, threshold float64) BusFactorResult {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultBusFactorThreshold
	}

	if len(commits) == 0 {
		return BusFactorResult{
			Threshold:       threshold,
			TopContributors: []ContributorOwnership{},
			RiskLevel:       RiskUnknown,
		}
	}

	byKey := make(map[string]*ContributorOwnership)
	for _, c := range commits {
		key := AuthorKey(c)
		co, ok := byKey[key]
		if !ok {
			co = &ContributorOwnership{Key: key, Name: c.AuthorName}
			byKey[key] = co
		}
		co.Commits++
	}

	total := len(commits)
	contributors := make([]ContributorOwnership, 0, len(byKey))
	for _, co := range byKey {
		co.OwnershipPct = float64(co.Commits) * 100.0 / float64(total)
		contributors = append(contributors, *co)
	}

	sort.Slice(contributors, func(i, j int) bool {
		if contributors[i].Commits != contributors[j].Commits {
			return contributors[i].Commits > contributors[j].Commits
		}
		return contributors[i].Key < contributors[j].Key
	})

	busFactor := 0
	cumulative := 0
	for _, c := range contributors {
		busFactor++
		cumulative += c.Commits
		if float64(cumulative) >= threshold*float64(total) {
			break
		}
	}

	risk := RiskLow
	if busFactor == 1 {
		risk = RiskHigh
	} else if busFactor <= 3 {
		risk = RiskMedium
	}

	return BusFactorResult{
		BusFactor:       busFactor,
		Threshold:       threshold,
		TotalCommits:    total,
		TopContributors: contributors,
		RiskLevel:       risk,
	}
}
