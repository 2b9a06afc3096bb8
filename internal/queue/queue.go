// Package queue implements the bounded resource pool + task queue that
// backs every stage of the pipeline: a fixed-size cache of reusable
// per-worker Resources and a FIFO (LIFO-popped, see below) of pending
// entry.Pairs, mutex-guarded, atomically pairing a free resource with a
// pending pair.
package queue

import (
	"sync"

	"github.com/joe/treesync/internal/entry"
)

// Resource is a per-worker scratch area reused across tasks of the same
// queue. Reset prepares it for a new task (clearing buffers/vectors,
// zeroing progress) and never fails — any I/O a task needs (opening
// streams, say) happens inside the task itself, which is responsible for
// reporting its own failures. Teardown releases anything the task opened;
// it must be idempotent, since a task may tear down early (to satisfy the
// "close streams before emitting Modified" ordering) and the queue always
// calls Teardown again on the way out as a safety net.
type Resource interface {
	Reset()
	Teardown()
	Progress() float64
}

// Status is a point-in-time snapshot of a Queue, always read under the
// queue's own mutex.
type Status struct {
	QueueSize      int
	ResourceCount  int
	BusyCount      int
	CompletedCount int64
	ProgressSum    float64
}

// IsReady reports whether the queue has pending work and a free resource.
func (s Status) IsReady() bool {
	return s.QueueSize > 0 && s.BusyCount < s.ResourceCount
}

// IsDone reports whether the queue has neither pending work nor busy
// resources.
func (s Status) IsDone() bool {
	return s.QueueSize == 0 && s.BusyCount == 0
}

// Queue is a generic bounded resource pool + task queue for resource kind
// R. Its resource cache is sized at construction and never reallocates.
type Queue[R Resource] struct {
	mu   sync.Mutex
	cond *sync.Cond

	pending   []entry.Pair
	resources []R
	busy      []bool

	completedCount int64
}

// New builds a Queue whose resource cache is exactly resources — one slot
// per element, never resized.
func New[R Resource](resources []R) *Queue[R] {
	q := &Queue[R]{
		resources: resources,
		busy:      make([]bool, len(resources)),
	}
	q.cond = sync.NewCond(&q.mu)

	return q
}

// Push enqueues pair and returns the resulting status. Callers (the
// worker pool's Enqueue) use the returned status to decide whether to
// Signal a waiting worker.
func (q *Queue[R]) Push(pair entry.Pair) Status {
	q.mu.Lock()
	q.pending = append(q.pending, pair)
	st := q.snapshotLocked()
	q.mu.Unlock()

	return st
}

// Status returns the current snapshot.
func (q *Queue[R]) Status() Status {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.snapshotLocked()
}

// PopAndExecute atomically finds the first available resource and, if the
// queue is non-empty, pops the most recently pushed pair (LIFO; callers
// must not rely on pop order), marks the resource busy, releases the
// lock, resets the resource, invokes exec, and on every exit path —
// including a panic unwinding through exec — tears down the resource and
// marks it available again. Returns false without blocking if there was
// no work or no free resource.
func (q *Queue[R]) PopAndExecute(exec func(resource R, pair entry.Pair) bool) bool {
	q.mu.Lock()

	idx := q.firstAvailableLocked()
	if idx < 0 || len(q.pending) == 0 {
		q.mu.Unlock()
		return false
	}

	pair := q.pending[len(q.pending)-1]
	q.pending = q.pending[:len(q.pending)-1]
	q.busy[idx] = true
	resource := q.resources[idx]

	q.mu.Unlock()

	defer func() {
		resource.Teardown()

		q.mu.Lock()
		q.busy[idx] = false
		q.completedCount++
		q.mu.Unlock()

		q.cond.Broadcast()
	}()

	resource.Reset()
	exec(resource, pair)

	return true
}

// Wait blocks the calling goroutine on the queue's condition variable until
// the next Broadcast. The worker pool pairs this with a per-queue ticker
// that broadcasts every 250ms, giving every waiter the same bounded-wakeup
// guarantee the source gets from a timed condition-variable wait — Go's
// sync.Cond has no native timeout, so the periodic external broadcast plays
// that role instead.
func (q *Queue[R]) Wait() {
	q.mu.Lock()
	q.cond.Wait()
	q.mu.Unlock()
}

// Signal wakes at most one waiter.
func (q *Queue[R]) Signal() {
	q.cond.Signal()
}

// Broadcast wakes every waiter.
func (q *Queue[R]) Broadcast() {
	q.cond.Broadcast()
}

func (q *Queue[R]) firstAvailableLocked() int {
	for i, b := range q.busy {
		if !b {
			return i
		}
	}

	return -1
}

func (q *Queue[R]) snapshotLocked() Status {
	st := Status{
		QueueSize:      len(q.pending),
		ResourceCount:  len(q.resources),
		CompletedCount: q.completedCount,
	}

	for i, b := range q.busy {
		if b {
			st.BusyCount++
			st.ProgressSum += q.resources[i].Progress()
		}
	}

	return st
}
