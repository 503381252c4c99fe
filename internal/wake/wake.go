// Package wake lets engine goroutines nudge the host event loop and decides
// how the loop blocks between native events.
package wake

import "sync/atomic"

// PostFunc delivers one native wake to the host loop. It must not block.
type PostFunc func()

// Waker is a coalescing, cross-goroutine wake notifier.
//
// Wake may be called from any goroutine, any number of times; wakes issued
// before the host consumes the pending one collapse into a single post.
// After Close every Wake is a no-op.
type Waker struct {
	post    PostFunc
	pending atomic.Bool
	closed  atomic.Bool
	posted  atomic.Uint64
}

// NewWaker returns a Waker that calls post to reach the host loop.
func NewWaker(post PostFunc) *Waker {
	return &Waker{post: post}
}

// Wake requests one pump of the host loop.
func (w *Waker) Wake() {
	if w == nil || w.closed.Load() {
		return
	}
	if !w.pending.CompareAndSwap(false, true) {
		return
	}
	if w.post != nil {
		w.post()
		w.posted.Add(1)
	}
}

// Consume clears the pending flag on the host thread. It reports whether a
// wake was pending.
func (w *Waker) Consume() bool {
	if w == nil {
		return false
	}
	return w.pending.Swap(false)
}

// Close turns every later Wake into a no-op.
func (w *Waker) Close() {
	if w == nil {
		return
	}
	w.closed.Store(true)
}

// Closed reports whether Close has been called.
func (w *Waker) Closed() bool {
	return w == nil || w.closed.Load()
}

// Posted returns how many native wakes were actually delivered.
func (w *Waker) Posted() uint64 {
	if w == nil {
		return 0
	}
	return w.posted.Load()
}
