package queue

import (
	"sync"

	"github.com/gammazero/deque"
)

type unbounded[T any] struct {
	mu       sync.Mutex
	nonEmpty *sync.Cond
	items    deque.Deque[T]
	closed   bool
}

// NewUnbounded returns a Queue with no capacity limit.
// Pop is serialized under a single mutex; only the dequeue itself is
// inside the critical section.
func NewUnbounded[T any]() Queue[T] {
	q := &unbounded[T]{}
	q.nonEmpty = sync.NewCond(&q.mu)
	return q
}

func (q *unbounded[T]) Push(item T) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}
	q.items.PushBack(item)
	q.nonEmpty.Signal()
	return nil
}

func (q *unbounded[T]) Pop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.items.Len() == 0 {
		if q.closed {
			var zero T
			return zero, false
		}
		q.nonEmpty.Wait()
	}
	return q.items.PopFront(), true
}

func (q *unbounded[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	q.nonEmpty.Broadcast()
}

func (q *unbounded[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Len()
}
