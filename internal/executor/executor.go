package executor

import (
	"go.uber.org/atomic"
)

// InFlightCounter counts transactions accepted upstream but not yet executed.
type InFlightCounter struct {
	n *atomic.Uint64
}

func NewInFlightCounter() *InFlightCounter {
	return &InFlightCounter{n: atomic.NewUint64(0)}
}

func (c *InFlightCounter) Add(n uint64) uint64 {
	return c.n.Add(n)
}

// Release subtracts n, stopping at zero.
func (c *InFlightCounter) Release(n uint64) uint64 {
	for {
		old := c.n.Load()
		next := uint64(0)
		if old > n {
			next = old - n
		}
		if c.n.CompareAndSwap(old, next) {
			return next
		}
	}
}

func (c *InFlightCounter) Load() uint64 {
	return c.n.Load()
}
