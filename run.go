package analysis

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Run is one correlated execution of the analysis engine over a forest of
// independently rooted NameAnalysis instances: each root, and everything it
// transitively depends on, is only ever walked once thanks to Walker's own
// memoization, so the roots can be dispatched to the errgroup without any
// coordination beyond that.
type Run struct {
	ID     string
	Walker *Walker
}

// NewRun creates a Run tagged with a fresh correlation id.
func NewRun(walker *Walker) *Run {
	return &Run{ID: uuid.NewString(), Walker: walker}
}

// WalkAll walks every root at level concurrently. A dependency reachable
// from more than one root is only computed once: Walker.Walk's populated
// memo check makes the second and later callers no-ops, so the errgroup
// needs no locking beyond what NameAnalysis's own fields require the
// collector to have already settled before Run starts.
func (run *Run) WalkAll(ctx context.Context, roots []*NameAnalysis, level Level) error {
	g, _ := errgroup.WithContext(ctx)
	for _, root := range roots {
		root := root
		g.Go(func() error {
			return run.Walker.Walk(root, level, nil)
		})
	}
	return g.Wait()
}

// Serialize produces the run's full report at the given severity gate,
// after WalkAll has populated every root.
func (run *Run) Serialize(roots []*NameAnalysis, loglevel LogLevel) SerializedReport {
	return SerializeAll(run.ID, roots, loglevel)
}
