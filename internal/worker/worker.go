// Package worker implements the generic worker pool that drives one
// internal/queue.Queue: a fixed number of goroutines that pop and execute
// work until the queue and the run's fault collector say to stop.
package worker

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/joe/treesync/internal/entry"
	"github.com/joe/treesync/internal/faults"
	"github.com/joe/treesync/internal/queue"
)

// tickInterval is the bounded-wakeup period every worker gets even if a
// Signal/Broadcast is missed — see internal/queue's doc comment on Wait.
const tickInterval = 250 * time.Millisecond

// pollFloor and pollCeiling bound WaitUntilFinished's exponential-backoff
// status poll.
const (
	pollFloor   = 5 * time.Millisecond
	pollCeiling = 330 * time.Millisecond
)

// Pool runs numWorkers goroutines against a Queue[R], each repeatedly
// calling PopAndExecute with exec until told to stop.
type Pool[R queue.Resource] struct {
	q       *queue.Queue[R]
	exec    func(resource R, pair entry.Pair) bool
	faults  *faults.Collector
	workers int

	// finishPolicy gates self-exit once the queue is visibly empty and
	// idle: a worker only exits on its own when the queue IsDone() *and*
	// finishPolicy() holds. Defaults to "always" — a queue with no
	// cross-queue dependency finishes as soon as it drains.
	finishPolicy func() bool

	// wakePolicy gates whether a worker is even allowed to attempt a pop
	// this iteration — used by dir-compare to stall when file-compare is
	// visibly overloaded. Defaults to "always".
	wakePolicy func() bool

	wg         sync.WaitGroup
	stop       atomic.Bool
	tickerDone chan struct{}
}

// Option configures optional Pool behavior at construction.
type Option[R queue.Resource] func(*Pool[R])

// WithFinishPolicy overrides the default "finish as soon as drained"
// policy with a predicate that must also hold.
func WithFinishPolicy[R queue.Resource](policy func() bool) Option[R] {
	return func(p *Pool[R]) { p.finishPolicy = policy }
}

// WithWakePolicy gates whether a worker may attempt to pop this
// iteration, independent of whether the queue itself has work.
func WithWakePolicy[R queue.Resource](policy func() bool) Option[R] {
	return func(p *Pool[R]) { p.wakePolicy = policy }
}

// New builds a Pool of workers workers against q. exec is the task logic
// invoked for each popped pair (compare, copy or remove, depending on the
// queue's role); faults collects any panic exec raises.
func New[R queue.Resource](q *queue.Queue[R], workers int, flt *faults.Collector, exec func(R, entry.Pair) bool, opts ...Option[R]) *Pool[R] {
	p := &Pool[R]{
		q:            q,
		exec:         exec,
		faults:       flt,
		workers:      workers,
		finishPolicy: func() bool { return true },
		wakePolicy:   func() bool { return true },
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Start launches the pool's worker goroutines and its bounded-wakeup
// ticker. Callers must eventually call Stop.
func (p *Pool[R]) Start() {
	p.tickerDone = make(chan struct{})

	go p.tick()

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)

		go p.runWorker()
	}
}

// Enqueue pushes pair onto the underlying queue and, if that makes the
// queue ready, wakes exactly one waiting worker.
func (p *Pool[R]) Enqueue(pair entry.Pair) queue.Status {
	st := p.q.Push(pair)
	if st.IsReady() {
		p.q.Signal()
	}

	return st
}

// Status returns the underlying queue's current snapshot.
func (p *Pool[R]) Status() queue.Status {
	return p.q.Status()
}

// WaitUntilFinished polls the queue's status with exponential backoff
// (5ms up to 330ms), calling onProgress after every poll, until the queue
// is done or the shared fault collector has recorded an abort. It returns
// false if it stopped because of an abort rather than because the queue
// drained.
func (p *Pool[R]) WaitUntilFinished(onProgress func(queue.Status)) bool {
	backoff := pollFloor

	for {
		st := p.q.Status()
		if onProgress != nil {
			onProgress(st)
		}

		if st.IsDone() || p.faults.WillAbort() {
			break
		}

		time.Sleep(backoff)

		backoff *= 2
		if backoff > pollCeiling {
			backoff = pollCeiling
		}
	}

	return !p.faults.WillAbort()
}

// Stop signals every worker to exit once it next checks in, broadcasts to
// wake any blocked waiters immediately, stops the ticker, and joins all
// worker goroutines before returning.
func (p *Pool[R]) Stop() {
	p.stop.Store(true)
	p.q.Broadcast()
	close(p.tickerDone)
	p.wg.Wait()
}

func (p *Pool[R]) tick() {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.q.Broadcast()
		case <-p.tickerDone:
			return
		}
	}
}

func (p *Pool[R]) runWorker() {
	defer p.wg.Done()

	for {
		if p.stop.Load() || p.faults.WillAbort() {
			return
		}

		if p.wakePolicy() && p.q.PopAndExecute(p.wrappedExec) {
			continue
		}

		if p.stop.Load() || p.faults.WillAbort() {
			return
		}

		if p.q.Status().IsDone() && p.finishPolicy() {
			return
		}

		p.q.Wait()
	}
}

func (p *Pool[R]) wrappedExec(resource R, pair entry.Pair) bool {
	defer p.faults.Recover()

	return p.exec(resource, pair)
}
