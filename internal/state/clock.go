package state

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Clock stamps ops with a Lamport counter and this board's site ID.
type Clock struct {
	site    string
	lamport atomic.Uint64
}

func NewClock() *Clock {
	return &Clock{site: uuid.NewString()}
}

// Site returns the unique ID of this board instance.
func (c *Clock) Site() string {
	return c.site
}

// Stamp assigns the next Lamport value and the site to op.
func (c *Clock) Stamp(op Op) Op {
	op.Lamport = c.lamport.Add(1)
	op.Site = c.site
	return op
}

// Observe moves the clock forward past a remote Lamport value.
func (c *Clock) Observe(remote uint64) {
	for {
		cur := c.lamport.Load()
		if remote <= cur || c.lamport.CompareAndSwap(cur, remote) {
			return
		}
	}
}

// Now returns the last Lamport value issued or observed.
func (c *Clock) Now() uint64 {
	return c.lamport.Load()
}
