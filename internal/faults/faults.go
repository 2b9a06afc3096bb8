// Package faults collects worker-level failures (recovered panics, fatal
// invariant violations) across goroutines and re-raises the first one on
// the calling goroutine exactly once, mirroring the source's
// ThreadExceptions collector.
package faults

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Collector aggregates faults raised inside worker goroutines. It is
// append-only until HandleAll runs once; after that, further Add calls are
// still accepted (a worker may still be unwinding) but are never re-raised,
// since HandleAll has already run.
type Collector struct {
	mu      sync.Mutex
	faults  []error
	aborted atomic.Bool
	once    sync.Once
}

// New returns an empty Collector.
func New() *Collector {
	return &Collector{}
}

// Add records a fault and flips the shared abort flag. Safe to call from
// any goroutine, including from a recover() at the top of a worker loop.
func (c *Collector) Add(err error) {
	if err == nil {
		return
	}

	c.mu.Lock()
	c.faults = append(c.faults, err)
	c.mu.Unlock()

	c.aborted.Store(true)
}

// Recover is meant to be deferred at the top of a worker's loop body. If
// the loop body panicked, it converts the panic into a fault, records it,
// and suppresses the panic so the worker can exit its loop cleanly instead
// of crashing the process.
func (c *Collector) Recover() {
	if r := recover(); r != nil {
		if err, ok := r.(error); ok {
			c.Add(fmt.Errorf("worker panic: %w", err))
		} else {
			c.Add(fmt.Errorf("worker panic: %v", r))
		}
	}
}

// WillAbort reports whether any fault has been recorded. Workers check this
// on every loop iteration and exit without dequeuing further work once it
// is true.
func (c *Collector) WillAbort() bool {
	return c.aborted.Load()
}

// Count returns the number of faults recorded so far.
func (c *Collector) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.faults)
}

// Summary renders every recorded fault as a multi-line string. Intended for
// the logfile/console sink, not for re-raising.
func (c *Collector) Summary() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.faults) == 0 {
		return ""
	}

	out := fmt.Sprintf("%d worker fault(s):\n", len(c.faults))
	for _, f := range c.faults {
		out += "  - " + f.Error() + "\n"
	}

	return out
}

// HandleAll runs exactly once across the Collector's lifetime (subsequent
// calls are no-ops). If any fault was recorded, it panics with the first
// one, re-raising it on the calling goroutine — intended to be called on
// the main goroutine after every worker has joined.
func (c *Collector) HandleAll() {
	c.once.Do(func() {
		c.mu.Lock()
		faults := c.faults
		c.mu.Unlock()

		if len(faults) > 0 {
			panic(faults[0])
		}
	})
}
