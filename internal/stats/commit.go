// Package stats turns raw repository activity into dashboard metrics.
//
// Everything in this package is a pure function of its input: no I/O, no clock
// reads and no shared state, so results can be cached or recomputed freely.
package stats

import (
	"errors"
	"strings"
	"time"
)

// UnknownAuthor is used when a commit carries neither an author name nor an email
const UnknownAuthor = "unknown"

// RawAuthor covers both the git signature ({name,email,date}) and the
// GitHub user object ({login}) that appear under "author".
type RawAuthor struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Date  string `json:"date,omitempty"`
	Login string `json:"login,omitempty"`
}

// RawCommitDetail is the nested "commit" object of the REST API
type RawCommitDetail struct {
	Author    *RawAuthor `json:"author,omitempty"`
	Committer *RawAuthor `json:"committer,omitempty"`
	Message   string     `json:"message,omitempty"`
}

// RawCommitStats is the "stats" object of the REST single-commit endpoint
type RawCommitStats struct {
	Additions *int `json:"additions,omitempty"`
	Deletions *int `json:"deletions,omitempty"`
	Total     *int `json:"total,omitempty"`
}

// RawFile is a changed file entry of the REST single-commit endpoint
type RawFile struct {
	Filename  string `json:"filename"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
}

// RawPullRequestRef is a pull request associated with a GraphQL commit
type RawPullRequestRef struct {
	Number      int    `json:"number"`
	URL         string `json:"url,omitempty"`
	HeadRefName string `json:"headRefName,omitempty"`
}

// RawPullRequestConnection is the GraphQL "associatedPullRequests" connection
type RawPullRequestConnection struct {
	Nodes []RawPullRequestRef `json:"nodes"`
}

// RawCommit is a commit record as delivered by a webhook or fetched from the
// GitHub REST or GraphQL API. Both shapes decode into the same struct; only
// the fields of one shape are populated in practice.
type RawCommit struct {
	// REST shape
	SHA     string           `json:"sha,omitempty"`
	Commit  *RawCommitDetail `json:"commit,omitempty"`
	Stats   *RawCommitStats  `json:"stats,omitempty"`
	Files   []RawFile        `json:"files,omitempty"`
	HTMLURL string           `json:"html_url,omitempty"`

	// GraphQL shape
	OID                    string                    `json:"oid,omitempty"`
	MessageHeadline        string                    `json:"messageHeadline,omitempty"`
	CommittedDate          string                    `json:"committedDate,omitempty"`
	ChangedFiles           *int                      `json:"changedFiles,omitempty"`
	URL                    string                    `json:"url,omitempty"`
	AssociatedPullRequests *RawPullRequestConnection `json:"associatedPullRequests,omitempty"`

	// Shared by both shapes
	Author    *RawAuthor `json:"author,omitempty"`
	Message   string     `json:"message,omitempty"`
	Additions *int       `json:"additions,omitempty"`
	Deletions *int       `json:"deletions,omitempty"`
	Branch    string     `json:"branch,omitempty"`
}

// CanonicalCommit is the normalized commit every aggregator consumes
type CanonicalCommit struct {
	SHA          string    `json:"sha"`
	AuthorName   string    `json:"authorName"`
	AuthorEmail  string    `json:"authorEmail"`
	CommittedAt  time.Time `json:"committedAt"`
	Message      string    `json:"message"`
	Additions    int       `json:"additions"`
	Deletions    int       `json:"deletions"`
	ChangedFiles int       `json:"changedFiles"`
	URL          string    `json:"url"`
	Branch       string    `json:"branch,omitempty"`
}

// Changes returns additions plus deletions
func (c CanonicalCommit) Changes() int {
	return c.Additions + c.Deletions
}

// NormalizeCommit converts a single raw record into a CanonicalCommit.
// A record without a sha or a parseable timestamp yields *MalformedCommitError.
func NormalizeCommit(raw RawCommit) (CanonicalCommit, error) {
	sha := strings.TrimSpace(firstNonEmpty(raw.SHA, raw.OID))
	if sha == "" {
		return CanonicalCommit{}, &MalformedCommitError{Reason: ReasonMissingSHA}
	}

	committedAt, ok := commitTime(raw)
	if !ok {
		return CanonicalCommit{}, &MalformedCommitError{SHA: sha, Reason: ReasonMissingTimestamp}
	}

	name, email := authorIdentity(raw)

	return CanonicalCommit{
		SHA:          sha,
		AuthorName:   name,
		AuthorEmail:  email,
		CommittedAt:  committedAt,
		Message:      commitMessage(raw),
		Additions:    additions(raw),
		Deletions:    deletions(raw),
		ChangedFiles: changedFiles(raw),
		URL:          firstNonEmpty(raw.HTMLURL, raw.URL),
		Branch:       branch(raw),
	}, nil
}

// NormalizeCommits converts raw records in order. Malformed records are left
// out of the result and reported through the returned error, which joins one
// *MalformedCommitError per rejected record. Callers that want to abort on the
// first bad record check the error; callers that skip use the commits as is.
func NormalizeCommits(raw []RawCommit) ([]CanonicalCommit, error) {
	commits := make([]CanonicalCommit, 0, len(raw))
	var errs []error

	for _, r := range raw {
		c, err := NormalizeCommit(r)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		commits = append(commits, c)
	}

	return commits, errors.Join(errs...)
}

func commitTime(raw RawCommit) (time.Time, bool) {
	var candidates []string
	if raw.Commit != nil {
		if raw.Commit.Author != nil {
			candidates = append(candidates, raw.Commit.Author.Date)
		}
		if raw.Commit.Committer != nil {
			candidates = append(candidates, raw.Commit.Committer.Date)
		}
	}
	if raw.Author != nil {
		candidates = append(candidates, raw.Author.Date)
	}
	candidates = append(candidates, raw.CommittedDate)

	for _, c := range candidates {
		if c == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, c)
		if err != nil {
			continue
		}
		return t.UTC(), true
	}
	return time.Time{}, false
}

func authorIdentity(raw RawCommit) (string, string) {
	var name, email string
	if raw.Commit != nil && raw.Commit.Author != nil {
		name, email = raw.Commit.Author.Name, raw.Commit.Author.Email
	}
	if raw.Author != nil {
		name = firstNonEmpty(name, raw.Author.Name)
		email = firstNonEmpty(email, raw.Author.Email)
	}

	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	switch {
	case name == "" && email == "":
		return UnknownAuthor, UnknownAuthor
	case name == "":
		return email, email
	case email == "":
		return name, name
	}
	return name, email
}

func commitMessage(raw RawCommit) string {
	if raw.Commit != nil && raw.Commit.Message != "" {
		return raw.Commit.Message
	}
	return firstNonEmpty(raw.Message, raw.MessageHeadline)
}

func additions(raw RawCommit) int {
	if raw.Additions != nil {
		return *raw.Additions
	}
	if raw.Stats != nil && raw.Stats.Additions != nil {
		return *raw.Stats.Additions
	}
	return 0
}

func deletions(raw RawCommit) int {
	if raw.Deletions != nil {
		return *raw.Deletions
	}
	if raw.Stats != nil && raw.Stats.Deletions != nil {
		return *raw.Stats.Deletions
	}
	return 0
}

func changedFiles(raw RawCommit) int {
	if raw.ChangedFiles != nil {
		return *raw.ChangedFiles
	}
	return len(raw.Files)
}

func branch(raw RawCommit) string {
	if raw.Branch != "" {
		return raw.Branch
	}
	if raw.AssociatedPullRequests != nil {
		for _, pr := range raw.AssociatedPullRequests.Nodes {
			if pr.HeadRefName != "" {
				return pr.HeadRefName
			}
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
