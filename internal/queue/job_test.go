package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobJSON(t *testing.T) {
	job := NewJob(JobTypeSync, 12)

	data, err := job.ToJSON()
	require.NoError(t, err)
	assert.Contains(t, data, `"type":"sync"`)
	assert.Contains(t, data, `"repository_id":12`)

	decoded, err := FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, job.ID, decoded.ID)
	assert.Equal(t, JobTypeSync, decoded.Type)
	assert.Equal(t, DefaultMaxRetries, decoded.MaxRetries)
	assert.True(t, job.CreatedAt.Equal(decoded.CreatedAt))
}

func TestFromJSONInvalid(t *testing.T) {
	_, err := FromJSON("not json")
	assert.Error(t, err)
}

func TestCanRetry(t *testing.T) {
	job := NewJob(JobTypeIndex, 1)
	assert.True(t, job.CanRetry())

	job.Retries = job.MaxRetries
	assert.False(t, job.CanRetry())
}

func TestNewJobIDsAreUnique(t *testing.T) {
	assert.NotEqual(t, NewJob(JobTypeIndex, 1).ID, NewJob(JobTypeIndex, 1).ID)
}
