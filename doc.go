// Package workerpool runs jobs on a fixed number of background workers.
//
// Constructors
//   - New(size, opts ...Option): builds the queue and starts exactly size workers.
//     A zero size is rejected with ErrZeroSizedPool before any worker starts.
//   - Run(size, fn, opts ...Option): scoped form; the pool is closed on every
//     exit path of fn, including panics.
//
// Submission
// Submit never blocks on worker availability: the job queue has no capacity
// limit. Jobs are handed to whichever worker becomes idle first. With a single
// worker, jobs run one at a time in submission order. Submit returns
// ErrPoolClosed once Close has begun.
//
// Shutdown
// Close closes the queue, lets workers drain every job accepted so far, then
// joins each worker. It is idempotent and safe for concurrent use; every
// caller blocks until the pool has terminated. There is no per-job
// cancellation: a submitted job always runs to completion.
//
// Failures
// A panic inside a job is recovered, logged, counted and passed to the
// optional panic handler. The worker that ran it keeps serving the queue.
//
// Defaults
//   - Name: "workerpool"
//   - Logger: discards all records
//   - Metrics: metrics.NoopProvider
//   - PanicHandler: none
package workerpool
