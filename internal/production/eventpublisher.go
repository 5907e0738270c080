package production

import (
	"sync"
	"sync/atomic"

	"github.com/comalice/boundsx"
)

// ChannelPublisher forwards engine changes to a Go channel.
// Non-blocking publish with drop on backpressure.
type ChannelPublisher struct {
	mu      sync.RWMutex
	ch      chan<- boundsx.Change
	closed  bool
	dropped atomic.Uint64
}

// NewChannelPublisher creates a ChannelPublisher with the given output channel.
func NewChannelPublisher(ch chan<- boundsx.Change) *ChannelPublisher {
	return &ChannelPublisher{ch: ch}
}

// Publish implements boundsx.Publisher.
func (p *ChannelPublisher) Publish(change boundsx.Change) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.dropped.Add(1)
		return
	}
	select {
	case p.ch <- change:
	default:
		p.dropped.Add(1)
	}
}

// Dropped returns the number of changes lost to backpressure or after Close.
func (p *ChannelPublisher) Dropped() uint64 {
	return p.dropped.Load()
}

// Close closes the output channel. Later publishes are dropped.
func (p *ChannelPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.ch)
	}
	return nil
}
