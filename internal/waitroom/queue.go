// Package waitroom implements the bounded FIFO waiting room.
//
// Queue is a fixed-capacity ring buffer. It is NOT synchronized: the shop
// owns the only instance and touches it only inside its critical section.
//
// [Layout]
//
//	  head                tail
//	   ↓                   ↓
//	┌─────┬─────┬─────┬─────┬─────┐
//	│  3  │  5  │  8  │     │     │   capacity 5, len 3
//	└─────┴─────┴─────┴─────┴─────┘
//
// Enqueue writes at tail, Dequeue reads at head; both wrap modulo capacity.
// Arrival order is service order.
package waitroom

import (
	"errors"
	"fmt"
)

var (
	// ErrFull is returned by Enqueue when Len() == Cap().
	ErrFull = errors.New("waitroom: queue is full")

	// ErrEmpty is returned by Dequeue when Len() == 0.
	ErrEmpty = errors.New("waitroom: queue is empty")
)

// Queue is a fixed-capacity FIFO of T.
type Queue[T any] struct {
	buf  []T
	head int // index of the earliest element
	size int
}

// New creates an empty queue holding at most capacity elements.
//
// A capacity of zero is valid: every Enqueue fails with ErrFull.
func New[T any](capacity int) (*Queue[T], error) {
	if capacity < 0 {
		return nil, fmt.Errorf("waitroom: negative capacity %d", capacity)
	}
	return &Queue[T]{buf: make([]T, capacity)}, nil
}

// Enqueue appends v behind every element already queued.
func (q *Queue[T]) Enqueue(v T) error {
	if q.size == len(q.buf) {
		return ErrFull
	}
	q.buf[(q.head+q.size)%len(q.buf)] = v
	q.size++
	return nil
}

// Dequeue removes and returns the earliest-inserted element.
func (q *Queue[T]) Dequeue() (T, error) {
	var zero T
	if q.size == 0 {
		return zero, ErrEmpty
	}
	v := q.buf[q.head]
	// Clear the slot so the queue does not keep the value reachable.
	q.buf[q.head] = zero
	q.head = (q.head + 1) % len(q.buf)
	q.size--
	return v, nil
}

// Len returns the number of queued elements.
func (q *Queue[T]) Len() int { return q.size }

// Cap returns the fixed capacity.
func (q *Queue[T]) Cap() int { return len(q.buf) }

// Items returns a copy of the queued elements, earliest first.
func (q *Queue[T]) Items() []T {
	out := make([]T, 0, q.size)
	for i := 0; i < q.size; i++ {
		out = append(out, q.buf[(q.head+i)%len(q.buf)])
	}
	return out
}
