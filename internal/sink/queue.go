// Package sink delivers recorded candidates to their destinations. Workers
// hand candidates to a Queue, which never blocks them; a single consumer
// drains the queue into one or more Writers.
package sink

import (
	"context"
	"sync"

	"stardew-seedsearch/internal/search"
)

// Queue is an unbounded multi-producer, single-consumer queue.
type Queue struct {
	mu     sync.Mutex
	items  []search.Candidate
	spare  []search.Candidate
	closed bool
	wake   chan struct{}
}

func NewQueue() *Queue {
	return &Queue{wake: make(chan struct{}, 1)}
}

// Record enqueues c. It never blocks; candidates recorded after Close are
// dropped.
func (q *Queue) Record(c search.Candidate) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.items = append(q.items, c)
	q.mu.Unlock()
	q.signal()
}

func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Close stops accepting candidates. Drain returns once the backlog is empty.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.signal()
}

// Len reports the current backlog.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Drain passes every candidate to fn in record order until the queue is
// closed and empty, fn fails, or ctx is done.
func (q *Queue) Drain(ctx context.Context, fn func(search.Candidate) error) error {
	for {
		q.mu.Lock()
		batch := q.items
		q.items = q.spare[:0]
		closed := q.closed
		q.mu.Unlock()

		for _, c := range batch {
			if err := fn(c); err != nil {
				return err
			}
		}
		q.spare = batch[:0]

		if len(batch) == 0 {
			if closed {
				return nil
			}
			select {
			case <-q.wake:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
