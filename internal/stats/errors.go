package stats

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedCommit       = errors.New("malformed commit")
	ErrInvalidCoverageFormat = errors.New("invalid coverage format")
	ErrInvalidFileList       = errors.New("invalid file list")
)

// Reasons a commit record is rejected
const (
	ReasonMissingSHA       = "missing sha"
	ReasonMissingTimestamp = "missing timestamp"
)

// MalformedCommitError is returned for a commit record without an identity
// or without a usable timestamp
type MalformedCommitError struct {
	SHA    string
	Reason string
}

func (e *MalformedCommitError) Error() string {
	if e.SHA == "" {
		return "malformed commit: " + e.Reason
	}
	return fmt.Sprintf("malformed commit %s: %s", e.SHA, e.Reason)
}

func (e *MalformedCommitError) Is(target error) bool {
	return target == ErrMalformedCommit
}

// InvalidCoverageFormatError is returned when a coverage report has no "total" summary
type InvalidCoverageFormatError struct {
	Reason string
}

func (e *InvalidCoverageFormatError) Error() string {
	return "invalid coverage format: " + e.Reason
}

func (e *InvalidCoverageFormatError) Is(target error) bool {
	return target == ErrInvalidCoverageFormat
}

// InvalidFileListError is returned when a file list payload is not a list of {path} objects
type InvalidFileListError struct {
	Reason string
}

func (e *InvalidFileListError) Error() string {
	return "invalid file list: " + e.Reason
}

func (e *InvalidFileListError) Is(target error) bool {
	return target == ErrInvalidFileList
}
