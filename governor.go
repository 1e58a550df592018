package deepresearch

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Governor is the single fair counting semaphore bounding the total number
// of simultaneously in-flight model calls, search calls, and fetches
// across every node of one invocation (§5). It is intentionally
// aggressive: politeness to upstream services over raw throughput.
type Governor struct {
	sem *semaphore.Weighted
}

// NewGovernor constructs a Governor with the given capacity. capacity <= 0
// is treated as 1 so the engine never deadlocks on a misconfigured value.
func NewGovernor(capacity int) *Governor {
	if capacity <= 0 {
		capacity = 1
	}
	return &Governor{sem: semaphore.NewWeighted(int64(capacity))}
}

// Run acquires one slot, runs fn, and releases the slot. If ctx is
// cancelled while waiting for a slot, Run returns ctx.Err() without
// calling fn.
func (g *Governor) Run(ctx context.Context, fn func() error) error {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer g.sem.Release(1)
	return fn()
}
