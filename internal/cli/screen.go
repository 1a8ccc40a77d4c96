package cli

import (
	"context"

	"github.com/noah-isme/sims-core/internal/bridge"
	"github.com/noah-isme/sims-core/internal/reconcile"
)

// screen plays the role of a view: it submits blocking work through the
// bridge and renders results from the UI loop. All fields are touched only on
// the goroutine that calls run, which is also the loop goroutine.
type screen struct {
	ctx     context.Context
	app     *App
	pending int
	err     error
	latest  reconcile.Generation
}

func newScreen(ctx context.Context, app *App) *screen {
	return &screen{ctx: ctx, app: app}
}

// submit queues work and renders its result on the loop.
func submit[T any](s *screen, name string, work func(context.Context) (T, error), render func(T) error) *bridge.Task[T] {
	s.pending++
	return bridge.Submit(s.ctx, s.app.Bridge, name, work,
		func(v T) {
			s.fail(render(v))
			s.done()
		},
		func(err error) {
			s.fail(err)
			s.done()
		})
}

// submitLatest is submit for selection-driven loads: only the most recently
// submitted request is rendered, older completions are dropped.
func submitLatest[T any](s *screen, name string, work func(context.Context) (T, error), render func(T) error) *bridge.Task[T] {
	token := s.latest.Next()
	s.pending++
	return bridge.Submit(s.ctx, s.app.Bridge, name, work,
		func(v T) {
			reconcile.Guard(&s.latest, token, func(v T) { s.fail(render(v)) })(v)
			s.done()
		},
		func(err error) {
			reconcile.Guard(&s.latest, token, s.fail)(err)
			s.done()
		})
}

func (s *screen) fail(err error) {
	if err != nil && s.err == nil {
		s.err = err
	}
}

func (s *screen) done() {
	s.pending--
	if s.pending == 0 {
		s.app.Loop.Stop()
	}
}

// run drives the loop until every submitted task has been handled.
func (s *screen) run() error {
	if s.pending == 0 {
		return s.err
	}
	if err := s.app.Loop.Run(s.ctx); err != nil {
		return err
	}
	return s.err
}
