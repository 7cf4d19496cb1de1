package workerpool

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/ygrebnov/workerpool/queue"
)

// Pool runs submitted jobs on a fixed number of worker goroutines.
// Pool is a concrete struct; methods are safe for concurrent use.
// Construct it with New; the zero value is not usable.
type Pool struct {
	// noCopy prevents accidental copying of the pool.
	//go:nocopy
	nc noCopy

	config *config
	logger *slog.Logger

	jobs    queue.Queue[Job]
	workers []*worker

	state      atomic.Int32
	lc         *lifecycleCoordinator
	terminated chan struct{}

	submitted atomic.Int64
	rejected  atomic.Int64
	completed atomic.Int64
	panicked  atomic.Int64
	inflight  atomic.Int64
	queued    atomic.Int64

	m *instruments
}

// noCopy is a vet-recognized marker to discourage copying types with this field embedded.
// It works with the "-copylocks" analyzer via the presence of Lock/Unlock methods.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// New creates a Pool with exactly size workers, configured by functional options.
// Workers are started before New returns.
// It returns ErrZeroSizedPool when size is zero; no worker is started in that case.
func New(size uint, opts ...Option) (*Pool, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	if size == 0 {
		return nil, ErrZeroSizedPool
	}

	p := &Pool{}
	p.initialize(size, &cfg)
	return p, nil
}

// initialize creates the queue, spawns the workers and wires the shutdown sequence.
func (p *Pool) initialize(size uint, cfg *config) {
	p.config = cfg
	p.logger = cfg.Logger.With("pool", cfg.Name)
	p.m = newInstruments(cfg.Metrics)
	p.jobs = queue.NewUnbounded[Job]()
	p.terminated = make(chan struct{})
	p.state.Store(int32(StateRunning))

	p.workers = make([]*worker, 0, size)
	joins := make([]func(), 0, size)
	for id := 0; id < int(size); id++ {
		w := newWorker(id, p.jobs, p.execute, p.logger)
		p.workers = append(p.workers, w)
		joins = append(joins, func() {
			p.logger.Info("shutting down worker", "worker", w.id)
			w.join()
			p.m.live.Add(-1)
		})
	}

	p.lc = newLifecycleCoordinator(
		p.jobs.Close,
		func() { p.state.Store(int32(StateDraining)) },
		joins,
		func() {
			p.state.Store(int32(StateTerminated))
			close(p.terminated)
			p.logger.Info("pool terminated",
				"completed", p.completed.Load(), "panicked", p.panicked.Load())
		},
	)

	for _, w := range p.workers {
		p.m.live.Add(1)
		w.start()
	}

	p.logger.Info("pool started", "workers", size)
}

// Submit hands j to the queue for execution by the next idle worker.
//
// Semantics:
//   - Safe for concurrent use by multiple goroutines.
//   - Never blocks on worker availability; the queue has no capacity limit.
//   - Fire-and-forget: there is no completion notification. Jobs report
//     their own results through whatever they capture.
//   - Returns ErrNilJob for a nil j and ErrPoolClosed once Close has begun.
func (p *Pool) Submit(j Job) error {
	if j == nil {
		return ErrNilJob
	}

	// account before the push so a fast worker never drives the gauge negative
	p.queued.Add(1)
	p.m.queued.Add(1)

	if err := p.jobs.Push(j); err != nil {
		p.queued.Add(-1)
		p.m.queued.Add(-1)
		p.rejected.Add(1)
		p.m.rejected.Add(1)
		if errors.Is(err, queue.ErrClosed) {
			return ErrPoolClosed
		}
		return err
	}

	p.submitted.Add(1)
	p.m.submitted.Add(1)
	return nil
}

// execute runs on a worker goroutine for every dequeued job.
func (p *Pool) execute(workerID int, j Job) {
	p.queued.Add(-1)
	p.m.queued.Add(-1)
	p.inflight.Add(1)
	p.m.inflight.Add(1)

	start := time.Now()
	returned := false
	defer func() {
		// j called runtime.Goexit: nothing after runJob runs on this goroutine.
		if !returned {
			p.finish(start)
			p.logger.Error("job exited its goroutine", "worker", workerID)
		}
	}()

	err := runJob(workerID, j)
	returned = true
	p.finish(start)

	if err == nil {
		return
	}

	p.panicked.Add(1)
	p.m.panicked.Add(1)
	p.logger.Error("job panicked", "worker", workerID, "error", err)

	if h := p.config.PanicHandler; h != nil {
		if hErr := runJob(workerID, func() { h(workerID, err) }); hErr != nil {
			p.logger.Error("panic handler panicked", "worker", workerID, "error", hErr)
		}
	}
}

// finish records the end of one job execution.
func (p *Pool) finish(start time.Time) {
	p.m.duration.Record(time.Since(start).Seconds())

	p.inflight.Add(-1)
	p.m.inflight.Add(-1)
	p.completed.Add(1)
	p.m.completed.Add(1)
}

// Close stops accepting jobs, waits for every queued and in-flight job to finish,
// then joins all workers.
//
// Semantics:
//   - Idempotent and safe for concurrent use; every caller returns only after
//     the pool has terminated.
//   - Jobs accepted before Close began are all executed.
//   - Must not be called from inside a Job: the calling worker would wait for itself.
func (p *Pool) Close() {
	p.lc.Close()
}

// CloseContext starts Close and waits until the pool has terminated or ctx is done.
// On ctx expiry it returns ctx.Err(); workers keep draining in the background
// and a later Close still blocks until they are done.
func (p *Pool) CloseContext(ctx context.Context) error {
	go p.lc.Close()

	select {
	case <-p.terminated:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done returns a channel that is closed once the pool has terminated.
func (p *Pool) Done() <-chan struct{} { return p.terminated }

// Size returns the number of workers, fixed at construction.
func (p *Pool) Size() int { return len(p.workers) }

// State returns the current lifecycle stage.
func (p *Pool) State() State { return State(p.state.Load()) }

// Stats returns a snapshot of the pool counters.
func (p *Pool) Stats() Stats {
	return Stats{
		Workers:   len(p.workers),
		State:     p.State(),
		Submitted: p.submitted.Load(),
		Rejected:  p.rejected.Load(),
		Completed: p.completed.Load(),
		Panicked:  p.panicked.Load(),
		InFlight:  p.inflight.Load(),
		Queued:    p.queued.Load(),
	}
}

// Run builds a pool of the given size, passes it to fn, and closes it on every
// exit path: normal return, returned error, or panic (re-raised after Close).
// Run returns fn's error, or the construction error when the pool cannot be built.
func Run(size uint, fn func(*Pool) error, opts ...Option) error {
	p, err := New(size, opts...)
	if err != nil {
		return err
	}
	defer p.Close()

	return fn(p)
}
