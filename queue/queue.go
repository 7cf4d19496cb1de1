// Package queue provides the job queue shared by pool workers.
package queue

import "errors"

// ErrClosed is returned by Push after the queue has been closed.
var ErrClosed = errors.New("queue: closed")

// Queue is a multi-producer, multi-consumer FIFO of items.
type Queue[T any] interface {
	// Push appends an item. It never blocks on consumers.
	Push(T) error

	// Pop removes the oldest item, blocking until one is available.
	// It returns false once the queue is closed and empty.
	Pop() (T, bool)

	// Close forbids further pushes and wakes all blocked consumers.
	Close()

	// Len returns the number of queued items.
	Len() int
}
