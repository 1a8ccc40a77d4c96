package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrQueueClosed is returned by Enqueue when the queue is not accepting work.
var ErrQueueClosed = errors.New("queue closed")

// Job represents a queued unit of blocking work.
type Job struct {
	ID       string
	Name     string
	Run      func(context.Context)
	Enqueued time.Time
}

// QueueConfig configures worker pool behaviour.
type QueueConfig struct {
	Workers    int
	BufferSize int
	// RateLimit caps job starts per second; zero disables throttling.
	RateLimit float64
	RateBurst int
	Logger    *zap.Logger
}

// Queue is a bounded in-memory dispatcher backed by a fixed set of goroutines.
// Enqueue blocks while the buffer is full.
type Queue struct {
	name string

	workers    int
	bufferSize int
	limiter    *rate.Limiter
	logger     *zap.Logger

	jobs    chan Job
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.RWMutex
	started bool
	stopped bool
}

// NewQueue builds a new queue.
func NewQueue(name string, cfg QueueConfig) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 4
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &Queue{
		name:       name,
		workers:    cfg.Workers,
		bufferSize: cfg.BufferSize,
		limiter:    limiter,
		logger:     cfg.Logger,
		jobs:       make(chan Job, cfg.BufferSize),
	}
}

// Start begins worker consumption. Safe to call once.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started || q.stopped {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i + 1)
	}
	q.started = true
	q.logger.Sugar().Infow("queue started", "queue", q.name, "workers", q.workers, "buffer", q.bufferSize)
}

// Stop refuses new jobs, lets workers finish everything already queued, then
// returns.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.started || q.stopped {
		q.stopped = true
		q.mu.Unlock()
		return
	}
	q.stopped = true
	close(q.jobs)
	q.mu.Unlock()

	q.wg.Wait()
	q.cancel()
	q.logger.Sugar().Infow("queue stopped", "queue", q.name)
}

// Enqueue pushes a job onto the queue, waiting for buffer space.
func (q *Queue) Enqueue(ctx context.Context, job Job) error {
	if job.Run == nil {
		return fmt.Errorf("queue %s: job %s has no work", q.name, job.ID)
	}

	q.mu.RLock()
	defer q.mu.RUnlock()
	if !q.started || q.stopped {
		return fmt.Errorf("queue %s: %w", q.name, ErrQueueClosed)
	}
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now().UTC()
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("queue %s enqueue %s: %w", q.name, job.ID, ctx.Err())
	case q.jobs <- job:
		return nil
	}
}

// Depth returns the number of jobs waiting for a worker.
func (q *Queue) Depth() int {
	return len(q.jobs)
}

func (q *Queue) worker(workerID int) {
	defer q.wg.Done()
	for job := range q.jobs {
		if q.limiter != nil {
			if err := q.limiter.Wait(q.ctx); err != nil {
				q.logger.Sugar().Warnw("rate limiter wait aborted", "queue", q.name, "job_id", job.ID, "error", err)
			}
		}
		q.logger.Sugar().Debugw("job started", "queue", q.name, "worker", workerID, "job_id", job.ID, "job", job.Name, "waited", time.Since(job.Enqueued))
		job.Run(q.ctx)
	}
}
