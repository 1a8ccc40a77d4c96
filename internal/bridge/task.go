package bridge

import (
	"sync"
	"sync/atomic"
	"time"
)

// State is the lifecycle phase of a task.
type State int32

const (
	StatePending State = iota
	StateRunning
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Done reports whether s is terminal.
func (s State) Done() bool {
	return s == StateSucceeded || s == StateFailed
}

// Task is a one-shot unit of blocking work. It moves from Pending to Running
// to exactly one of Succeeded or Failed.
type Task[T any] struct {
	ID        string
	Name      string
	Submitted time.Time

	state atomic.Int32
	once  sync.Once
	done  chan struct{}

	mu     sync.Mutex
	result T
	err    error

	release func()
}

func newTask[T any](id, name string) *Task[T] {
	return &Task[T]{
		ID:        id,
		Name:      name,
		Submitted: time.Now().UTC(),
		done:      make(chan struct{}),
		release:   func() {},
	}
}

// State returns the current phase.
func (t *Task[T]) State() State {
	return State(t.state.Load())
}

// Done is closed once the task reaches a terminal state. Completion handlers
// may still be queued on the UI loop at that point.
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// Result returns the value and error of a finished task. ok is false while
// the task is still pending or running.
func (t *Task[T]) Result() (T, bool, error) {
	if !t.State().Done() {
		var zero T
		return zero, false, nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result, true, t.err
}

func (t *Task[T]) start() bool {
	return t.state.CompareAndSwap(int32(StatePending), int32(StateRunning))
}

// finish records the outcome of a running task. Only the first call has any
// effect.
func (t *Task[T]) finish(value T, err error) (State, bool) {
	final := StateSucceeded
	if err != nil {
		final = StateFailed
	}
	if t.State() != StateRunning {
		return final, false
	}
	applied := false
	t.once.Do(func() {
		t.mu.Lock()
		t.result = value
		t.err = err
		t.mu.Unlock()
		t.state.Store(int32(final))
		close(t.done)
		applied = true
	})
	return final, applied
}
