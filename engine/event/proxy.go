package event

import (
	"errors"
	"sync"
)

var (
	// ErrProxyFull is returned by Send when the proxy queue is at capacity.
	ErrProxyFull = errors.New("event: proxy queue full")

	// ErrProxyClosed is returned by Send after Close.
	ErrProxyClosed = errors.New("event: proxy closed")
)

// Proxy lets other goroutines post User events into the single-threaded event loop.
// Send is safe for concurrent use; Drain must only be called from the loop thread.
type Proxy[U any] struct {
	mu     sync.Mutex
	queue  chan User[U]
	wake   func()
	closed bool
}

// NewProxy creates a proxy with a bounded queue.
//
// Parameters:
//   - capacity: the maximum number of undelivered events (values < 1 use 1)
//   - wake: called after each successful Send to unblock a waiting event loop (may be nil)
//
// Returns:
//   - *Proxy[U]: the new proxy
func NewProxy[U any](capacity int, wake func()) *Proxy[U] {
	return &Proxy[U]{
		queue: make(chan User[U], max(capacity, 1)),
		wake:  wake,
	}
}

// Send queues payload for delivery as a User event without blocking.
//
// Parameters:
//   - payload: the value to deliver
//
// Returns:
//   - error: ErrProxyFull if the queue is full, ErrProxyClosed after Close
func (p *Proxy[U]) Send(payload U) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrProxyClosed
	}
	select {
	case p.queue <- User[U]{Payload: payload}:
	default:
		p.mu.Unlock()
		return ErrProxyFull
	}
	wake := p.wake
	p.mu.Unlock()

	if wake != nil {
		wake()
	}
	return nil
}

// Drain delivers every queued event to fn in send order and returns how many were delivered.
//
// Parameters:
//   - fn: receives each queued event
//
// Returns:
//   - int: the number of events delivered
func (p *Proxy[U]) Drain(fn func(Event)) int {
	n := 0
	for {
		select {
		case ev := <-p.queue:
			fn(ev)
			n++
		default:
			return n
		}
	}
}

// Close rejects further sends. Already queued events can still be drained.
func (p *Proxy[U]) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}
