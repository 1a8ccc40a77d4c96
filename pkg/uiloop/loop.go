// Package uiloop provides the single logical thread on which all view state
// is mutated. Any goroutine may Post a callback; callbacks run one at a time,
// in the order they were posted, on the goroutine that called Run.
package uiloop

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	// ErrAlreadyRunning is returned when Run is called while another Run is active.
	ErrAlreadyRunning = errors.New("uiloop: already running")
	// ErrStopped is returned by Do once the loop no longer accepts callbacks.
	ErrStopped = errors.New("uiloop: stopped")
)

// Loop is an unbounded FIFO of callbacks drained by one goroutine.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	closed bool
	holds  int
	signal chan struct{}

	running     atomic.Bool
	dispatching atomic.Bool
	logger      *zap.Logger
}

// New builds an idle loop. Callbacks may be posted before Run starts.
func New(logger *zap.Logger) *Loop {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loop{
		queue:  make([]func(), 0, 64),
		signal: make(chan struct{}, 1),
		logger: logger,
	}
}

// Post enqueues fn without blocking. It returns false once the loop is
// stopped and no holds remain.
func (l *Loop) Post(fn func()) bool {
	if fn == nil {
		return false
	}
	l.mu.Lock()
	if l.closed && l.holds == 0 {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	l.wake()
	return true
}

// Hold keeps the loop accepting and dispatching callbacks after Stop until
// release is called. release is idempotent.
func (l *Loop) Hold() (release func()) {
	l.mu.Lock()
	l.holds++
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			l.holds--
			l.mu.Unlock()
			l.wake()
		})
	}
}

// Do posts fn and waits until it has run on the loop.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if !l.Post(func() {
		defer close(done)
		fn()
	}) {
		return ErrStopped
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run dispatches callbacks until Stop is called, the queue is drained and no
// holds remain, or until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer l.running.Store(false)

	for {
		for {
			fn, ok := l.next()
			if !ok {
				break
			}
			l.dispatch(fn)
		}

		l.mu.Lock()
		finished := l.closed && len(l.queue) == 0 && l.holds == 0
		l.mu.Unlock()
		if finished {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.signal:
		}
	}
}

// Stop refuses new callbacks once every hold is released. Run returns after
// draining what is queued.
func (l *Loop) Stop() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	l.wake()
}

// OnLoop reports whether the caller is inside a callback dispatched by Run.
func (l *Loop) OnLoop() bool {
	return l.dispatching.Load()
}

// Pending returns the number of queued callbacks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

func (l *Loop) wake() {
	select {
	case l.signal <- struct{}{}:
	default:
	}
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.queue) == 0 {
		return nil, false
	}
	fn := l.queue[0]
	l.queue[0] = nil
	if len(l.queue) == 1 {
		l.queue = l.queue[:0]
	} else {
		l.queue = l.queue[1:]
	}
	return fn, true
}

func (l *Loop) dispatch(fn func()) {
	l.dispatching.Store(true)
	defer func() {
		l.dispatching.Store(false)
		if r := recover(); r != nil {
			l.logger.Sugar().Errorw("ui callback panicked", "panic", fmt.Sprint(r))
		}
	}()
	fn()
}
