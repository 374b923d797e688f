package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"repo-analytics-dashboard/internal/logger"
	"repo-analytics-dashboard/internal/redis"

	goredis "github.com/redis/go-redis/v9"
)

const popTimeout = 5 * time.Second

// ErrPermanent marks handler failures that retrying cannot fix
var ErrPermanent = errors.New("permanent job failure")

// Consumer handles consuming jobs from Redis
type Consumer struct {
	queue       *Queue
	handler     JobHandler
	concurrency int
	log         *slog.Logger
	stopChan    chan struct{}
	wg          sync.WaitGroup
}

// JobHandler processes a single job
type JobHandler interface {
	HandleJob(ctx context.Context, job *Job) error
}

// NewConsumer creates a consumer
func NewConsumer(
	redisClient *redis.Client,
	queueName string,
	handler JobHandler,
	concurrency int,
	log *slog.Logger,
) *Consumer {
	return &Consumer{
		queue:       NewQueue(redisClient, queueName),
		handler:     handler,
		concurrency: concurrency,
		log:         log.With(slog.String("component", "consumer"), slog.String("queue", queueName)),
		stopChan:    make(chan struct{}),
	}
}

// Start begins consuming jobs (runs goroutines)
func (c *Consumer) Start(ctx context.Context) error {
	if c.concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1")
	}

	c.log.Info("starting consumer", slog.Int("workers", c.concurrency))

	for i := 0; i < c.concurrency; i++ {
		c.wg.Add(1)
		go c.worker(ctx, i)
	}

	return nil
}

// worker is a goroutine that processes jobs from the queue
func (c *Consumer) worker(ctx context.Context, id int) {
	defer c.wg.Done()

	log := c.log.With(slog.Int("worker", id))
	log.Debug("worker started")

	for {
		select {
		case <-c.stopChan:
			log.Debug("worker stopping")
			return
		case <-ctx.Done():
			log.Debug("worker context cancelled")
			return
		default:
			job, err := c.queue.Pop(ctx, popTimeout)
			if err != nil {
				if errors.Is(err, goredis.Nil) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
					continue
				}
				log.Error("failed to pop job", logger.Err(err))
				continue
			}

			if job == nil {
				continue
			}

			c.process(ctx, log, job)
		}
	}
}

func (c *Consumer) process(ctx context.Context, log *slog.Logger, job *Job) {
	log = log.With(
		slog.String("job_id", job.ID),
		slog.String("type", string(job.Type)),
		slog.Int64("repository_id", job.RepositoryID),
	)
	log.Info("processing job")

	err := c.handler.HandleJob(ctx, job)
	if err == nil {
		log.Info("completed job")
		return
	}

	log.Error("failed to handle job", logger.Err(err), slog.Int("retries", job.Retries))

	if errors.Is(err, ErrPermanent) || !job.CanRetry() {
		return
	}

	job.Retries++
	if err := c.queue.Push(ctx, job); err != nil {
		log.Error("failed to requeue job", logger.Err(err))
	}
}

// Stop gracefully stops the consumer
func (c *Consumer) Stop() {
	c.log.Info("stopping consumer")
	close(c.stopChan)
	c.wg.Wait()
	c.log.Info("consumer stopped")
}
