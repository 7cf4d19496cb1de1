package workerpool

import (
	"sync"
)

// lifecycleCoordinator encapsulates the shutdown sequence for a Pool.
// It is a wiring helper: it doesn't own the queue or the workers; it orchestrates
// the state change, queue closure, worker joins and final bookkeeping in a deterministic order.
//
// Close() is safe for concurrent calls; the sequence executes exactly once and
// every caller returns only after it has finished.
type lifecycleCoordinator struct {
	closeQueue func()
	beginDrain func()
	joins      []func()
	finish     func()

	once sync.Once
}

func newLifecycleCoordinator(
	closeQueue func(),
	beginDrain func(),
	joins []func(),
	finish func(),
) *lifecycleCoordinator {
	return &lifecycleCoordinator{
		beginDrain: beginDrain,
		closeQueue: closeQueue,
		joins:      joins,
		finish:     finish,
	}
}

// Close executes the shutdown sequence exactly once:
// 1) close the queue so no more jobs are accepted
// 2) mark the pool as draining
// 3) join every worker, in id order; workers drain queued jobs first
// 4) mark the pool as terminated
func (lc *lifecycleCoordinator) Close() {
	lc.once.Do(func() {
		if lc.closeQueue != nil {
			lc.closeQueue()
		}
		if lc.beginDrain != nil {
			lc.beginDrain()
		}
		for _, join := range lc.joins {
			if join != nil {
				join()
			}
		}
		if lc.finish != nil {
			lc.finish()
		}
	})
}
