package workerpool

import "fmt"

// Job is a unit of deferred work: no arguments, no result.
// A submitted Job is executed at most once, by the single worker that dequeues it.
// Any state a Job needs should be captured by value; the pool does not
// synchronize access to captured variables.
type Job func()

// runJob executes j and converts a panic into an error wrapping ErrJobPanicked.
func runJob(workerID int, j Job) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("%w: worker %d: %v", ErrJobPanicked, workerID, v)
		}
	}()

	j()
	return nil
}
