package reconcile

import "sync/atomic"

// Generation hands out increasing tokens so that a consumer can drop
// completions belonging to superseded requests.
type Generation struct {
	current atomic.Uint64
}

// Next starts a new generation and returns its token.
func (g *Generation) Next() uint64 {
	return g.current.Add(1)
}

// Current reports whether token is still the latest generation.
func (g *Generation) Current(token uint64) bool {
	return g.current.Load() == token
}

// Guard wraps fn so that it only runs while token is current.
func Guard[T any](g *Generation, token uint64, fn func(T)) func(T) {
	return func(v T) {
		if g.Current(token) && fn != nil {
			fn(v)
		}
	}
}
