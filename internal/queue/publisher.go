package queue

import (
	"context"
	"fmt"
	"time"

	"repo-analytics-dashboard/internal/redis"

	"github.com/google/uuid"
)

// DefaultMaxRetries is the retry budget given to new jobs
const DefaultMaxRetries = 3

// IPublisher defines the interface for publishing jobs to the queue
type IPublisher interface {
	PublishIndexJob(ctx context.Context, repoID int64) (*Job, error)
	PublishSyncJob(ctx context.Context, repoID int64) (*Job, error)
	GetQueueLength(ctx context.Context) (int64, error)
}

type publisherImpl struct {
	queue *Queue
}

// NewPublisher creates a publisher
func NewPublisher(redisClient *redis.Client, queueName string) IPublisher {
	return &publisherImpl{
		queue: NewQueue(redisClient, queueName),
	}
}

// NewJob builds a job with a fresh id
func NewJob(jobType JobType, repoID int64) *Job {
	return &Job{
		ID:           uuid.New().String(),
		RepositoryID: repoID,
		Type:         jobType,
		Payload:      make(map[string]any),
		CreatedAt:    time.Now().UTC(),
		Retries:      0,
		MaxRetries:   DefaultMaxRetries,
	}
}

// PublishIndexJob creates a job to index a repository from its clone
func (p *publisherImpl) PublishIndexJob(ctx context.Context, repoID int64) (*Job, error) {
	job := NewJob(JobTypeIndex, repoID)

	if err := p.queue.Push(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to publish index job: %w", err)
	}

	return job, nil
}

// PublishSyncJob creates a job to sync a repository from the GitHub API
func (p *publisherImpl) PublishSyncJob(ctx context.Context, repoID int64) (*Job, error) {
	job := NewJob(JobTypeSync, repoID)

	if err := p.queue.Push(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to publish sync job: %w", err)
	}

	return job, nil
}

// GetQueueLength returns current queue size
func (p *publisherImpl) GetQueueLength(ctx context.Context) (int64, error) {
	length, err := p.queue.Length(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get queue length: %w", err)
	}
	return length, nil
}
