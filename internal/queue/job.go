package queue

import (
	"encoding/json"
	"time"
)

type JobType string

// JobType constants - different types of worker jobs
const (
	// JobTypeIndex clones or fetches the repository and reads history locally
	JobTypeIndex = JobType("index")
	// JobTypeSync pulls commits and the file list from the GitHub API
	JobTypeSync = JobType("sync")
)

// Job represents a unit of work
type Job struct {
	ID           string         `json:"id"`
	RepositoryID int64          `json:"repository_id"`
	Type         JobType        `json:"type"`
	Payload      map[string]any `json:"payload,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	Retries      int            `json:"retries"`
	MaxRetries   int            `json:"max_retries"`
}

// ToJSON - Convert job to JSON string for Redis storage
func (j *Job) ToJSON() (string, error) {
	bytes, err := json.Marshal(j)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// FromJSON - Parse JSON string back to Job
func FromJSON(data string) (*Job, error) {
	var job Job
	err := json.Unmarshal([]byte(data), &job)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// CanRetry reports whether the job has attempts left
func (j *Job) CanRetry() bool {
	return j.Retries < j.MaxRetries
}
