package pipeline

import "sync/atomic"

// Cancel is the cooperative stop flag for a running batch. It is deliberately
// separate from the batch-active state: "nothing running" and "please stop"
// are different facts.
//
// The orchestrator checks it at image boundaries and after each request
// returns; the interrupt control sets it alongside the server-side interrupt
// call.
type Cancel struct {
	v atomic.Bool
}

// Request asks the running batch to stop before the next image.
func (c *Cancel) Request() {
	c.v.Store(true)
}

// Requested reports whether a stop was asked for.
func (c *Cancel) Requested() bool {
	return c.v.Load()
}

// Reset clears the flag; called at the start of every batch.
func (c *Cancel) Reset() {
	c.v.Store(false)
}
