// Package reconcile joins slot sequences with fact sequences for display.
package reconcile

// Index builds a lookup of facts by key. When two facts share a key the later
// one wins.
func Index[F any, K comparable](facts []F, key func(F) K) map[K]F {
	index := make(map[K]F, len(facts))
	for _, fact := range facts {
		index[key(fact)] = fact
	}
	return index
}

// Reconcile emits one row per slot, in slot order. build receives the fact
// stored under the slot's key, or found=false when there is none; a slot with
// no fact is never dropped.
func Reconcile[S, F any, K comparable, R any](slots []S, facts []F, slotKey func(S) K, factKey func(F) K, build func(slot S, fact F, found bool) R) []R {
	index := Index(facts, factKey)
	rows := make([]R, 0, len(slots))
	for _, slot := range slots {
		fact, found := index[slotKey(slot)]
		rows = append(rows, build(slot, fact, found))
	}
	return rows
}
