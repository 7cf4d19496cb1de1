package workerpool

import (
	"log/slog"

	"github.com/ygrebnov/workerpool/queue"
)

// worker runs one execution loop bound to the shared jobs queue.
type worker struct {
	id     int
	jobs   queue.Queue[Job]
	exec   func(workerID int, j Job)
	logger *slog.Logger
	done   chan struct{}
}

func newWorker(id int, jobs queue.Queue[Job], exec func(int, Job), logger *slog.Logger) *worker {
	return &worker{
		id:     id,
		jobs:   jobs,
		exec:   exec,
		logger: logger,
		done:   make(chan struct{}),
	}
}

func (w *worker) start() { go w.loop() }

// loop takes one job at a time and runs it outside the queue lock.
// It returns once the queue is closed and empty. A job that ends the goroutine
// with runtime.Goexit does not end the worker: the loop resumes on a new goroutine.
func (w *worker) loop() {
	drained := false
	defer func() {
		if !drained {
			w.logger.Warn("worker goroutine exited during a job; restarting", "worker", w.id)
			go w.loop()
			return
		}
		close(w.done)
	}()

	for {
		j, ok := w.jobs.Pop()
		if !ok {
			w.logger.Debug("worker disconnected; shutting down", "worker", w.id)
			drained = true
			return
		}

		w.logger.Debug("worker got a job; executing", "worker", w.id)
		w.exec(w.id, j)
	}
}

// join blocks until the loop has exited.
func (w *worker) join() { <-w.done }
