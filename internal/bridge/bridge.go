// Package bridge runs blocking work off the UI loop and delivers exactly one
// completion back onto it.
package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/sims-core/pkg/errors"
	"github.com/noah-isme/sims-core/pkg/jobs"
)

// Executor schedules jobs on worker goroutines.
type Executor interface {
	Enqueue(ctx context.Context, job jobs.Job) error
}

// Poster marshals callbacks onto the UI loop. Hold keeps the loop open for a
// completion that has not been posted yet.
type Poster interface {
	Post(fn func()) bool
	Hold() (release func())
}

// Metrics records task throughput.
type Metrics interface {
	TaskSubmitted(name string)
	TaskCompleted(name, outcome string, duration time.Duration)
}

type nopMetrics struct{}

func (nopMetrics) TaskSubmitted(string)                        {}
func (nopMetrics) TaskCompleted(string, string, time.Duration) {}

// Option customises a Bridge.
type Option func(*Bridge)

// WithLogger sets the bridge logger.
func WithLogger(l *zap.Logger) Option {
	return func(b *Bridge) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithMetrics reports task counts and durations to m.
func WithMetrics(m Metrics) Option {
	return func(b *Bridge) {
		if m != nil {
			b.metrics = m
		}
	}
}

// Bridge hands work to an executor and completions to the UI loop.
type Bridge struct {
	executor Executor
	loop     Poster
	logger   *zap.Logger
	metrics  Metrics
}

// New constructs a bridge.
func New(executor Executor, loop Poster, opts ...Option) *Bridge {
	b := &Bridge{
		executor: executor,
		loop:     loop,
		logger:   zap.NewNop(),
		metrics:  nopMetrics{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Submit schedules work and returns its task. Exactly one of onSuccess or
// onFailure later runs on the UI loop; onFailure receives the error returned
// by work as-is. A panic in work is reported as a WorkFailure. Submit blocks
// only while the executor's queue is full, and ctx bounds that wait.
func Submit[T any](ctx context.Context, b *Bridge, name string, work func(context.Context) (T, error), onSuccess func(T), onFailure func(error)) *Task[T] {
	task := newTask[T](uuid.NewString(), name)
	task.release = b.loop.Hold()
	b.metrics.TaskSubmitted(name)

	if work == nil {
		var zero T
		task.start()
		complete(b, task, zero, appErrors.New(appErrors.CodeWorkFailure, fmt.Sprintf("task %s has no work", name)), onSuccess, onFailure)
		return task
	}

	job := jobs.Job{
		ID:   task.ID,
		Name: name,
		Run: func(jobCtx context.Context) {
			execute(jobCtx, b, task, work, onSuccess, onFailure)
		},
	}
	if err := b.executor.Enqueue(ctx, job); err != nil {
		var zero T
		task.start()
		complete(b, task, zero, appErrors.Wrap(err, appErrors.CodeWorkFailure, fmt.Sprintf("submit task %s", name)), onSuccess, onFailure)
	}
	return task
}

func execute[T any](ctx context.Context, b *Bridge, task *Task[T], work func(context.Context) (T, error), onSuccess func(T), onFailure func(error)) {
	if !task.start() {
		return
	}

	var (
		value T
		err   error
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				var zero T
				value = zero
				err = appErrors.Wrap(fmt.Errorf("panic: %v", r), appErrors.CodeWorkFailure, fmt.Sprintf("task %s", task.Name))
			}
		}()
		value, err = work(ctx)
	}()

	complete(b, task, value, err, onSuccess, onFailure)
}

func complete[T any](b *Bridge, task *Task[T], value T, err error, onSuccess func(T), onFailure func(error)) {
	state, applied := task.finish(value, err)
	if !applied {
		return
	}
	elapsed := time.Since(task.Submitted)
	b.metrics.TaskCompleted(task.Name, state.String(), elapsed)

	if state == StateFailed {
		b.logger.Sugar().Debugw("task failed", "task_id", task.ID, "task", task.Name, "duration", elapsed, "error", err)
	} else {
		b.logger.Sugar().Debugw("task succeeded", "task_id", task.ID, "task", task.Name, "duration", elapsed)
	}

	deliver := func() {
		if state == StateSucceeded {
			if onSuccess != nil {
				onSuccess(value)
			}
			return
		}
		if onFailure != nil {
			onFailure(err)
		}
	}
	if !b.loop.Post(deliver) {
		b.logger.Sugar().Warnw("ui loop stopped, completion dropped", "task_id", task.ID, "task", task.Name, "state", state.String())
	}
	task.release()
}
