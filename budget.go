package deepresearch

import "sync"

// Budget is the atomic accountant wrapping a shared BudgetState (§4.2,
// §5). All writers go through Record; the single mutex makes "Used" and
// "Reached" update together, which is simpler to reason about than a pair
// of atomics that could be observed out of sync.
type Budget struct {
	mu    sync.Mutex
	state BudgetState
}

// NewBudget constructs a Budget. cap <= 0 means unlimited.
func NewBudget(cap int) *Budget {
	b := &Budget{}
	if cap > 0 {
		b.state.Cap = cap
		b.state.HasCap = true
	}
	return b
}

// Record adds usage.Total() to the running total and sets Reached true
// once Used >= Cap. Reached is sticky: once true it is never cleared
// (§4.2).
func (b *Budget) Record(usage Usage) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.Used += usage.Total()
	if b.state.HasCap && b.state.Used >= b.state.Cap {
		b.state.Reached = true
	}
}

// Reached reports whether the cap has been hit. This is a point-in-time
// check: a stale false observed concurrently with a Record call leads to
// at most one extra call, which §5 accepts as fine.
func (b *Budget) Reached() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state.Reached
}

// Snapshot returns a copy of the current state for embedding in a
// ResearchResult.
func (b *Budget) Snapshot() BudgetState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
