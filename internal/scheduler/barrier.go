package scheduler

import (
	"fmt"
	"sync"
)

// Barrier is a count-down synchronization primitive (§4.5): Wait blocks
// until count arrivals have accumulated, then releases all of them at
// once; Reset prepares a fresh generation so the same Barrier can be
// reused.
type Barrier struct {
	mu      sync.Mutex
	count   int
	arrived int
	release chan struct{}
}

// NewBarrier creates a Barrier for count arrivals. Zero and negative
// counts are rejected (§4.5).
func NewBarrier(count int) (*Barrier, error) {
	if count <= 0 {
		return nil, fmt.Errorf("scheduler: barrier count must be positive, got %d", count)
	}
	return &Barrier{count: count, release: make(chan struct{})}, nil
}

// Wait arrives at the barrier and blocks until the current generation's
// count has been reached, at which point every waiter is released
// together.
func (b *Barrier) Wait() {
	b.mu.Lock()
	b.arrived++
	if b.arrived >= b.count {
		ch := b.release
		b.mu.Unlock()
		close(ch)
		return
	}
	ch := b.release
	b.mu.Unlock()
	<-ch
}

// Reset prepares a fresh generation with a (possibly different) count.
// Zero and negative counts are rejected.
func (b *Barrier) Reset(count int) error {
	if count <= 0 {
		return fmt.Errorf("scheduler: barrier count must be positive, got %d", count)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.count = count
	b.arrived = 0
	b.release = make(chan struct{})
	return nil
}
