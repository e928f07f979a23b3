package engine

import "sync/atomic"

// cancelSignal counts the interrupting requests (stop, ponderhit, quit) that
// have been issued but not yet taken by the worker. A relay yields while the
// count is positive. Set wakes a waiting relay through C.
type cancelSignal struct {
	pending atomic.Int64
	wake    chan struct{}
}

func newCancelSignal() *cancelSignal {
	return &cancelSignal{wake: make(chan struct{}, 1)}
}

// Set records one more interrupting request.
func (c *cancelSignal) Set() {
	c.pending.Add(1)
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// Done takes back one request recorded by Set. The pending wake-up is
// discarded once nothing is outstanding.
func (c *cancelSignal) Done() {
	if c.pending.Add(-1) > 0 {
		return
	}
	c.pending.CompareAndSwap(-1, 0)
	select {
	case <-c.wake:
	default:
	}
}

// IsSet reports whether an interrupting request is outstanding.
func (c *cancelSignal) IsSet() bool {
	return c.pending.Load() > 0
}

// C receives once per Set.
func (c *cancelSignal) C() <-chan struct{} {
	return c.wake
}
