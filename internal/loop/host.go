package loop

import (
	"sync/atomic"

	"github.com/1broseidon/webshim/internal/engine"
	"github.com/1broseidon/webshim/internal/viewport"
	"github.com/1broseidon/webshim/internal/wake"
)

// Host is the embedder side the engine talks to. Its methods are safe from
// any goroutine.
type Host struct {
	vp        atomic.Pointer[viewport.Viewport]
	animating atomic.Bool
	waker     *wake.Waker
}

var _ engine.Embedder = (*Host)(nil)

// NewHost returns a Host that hands waker to the engine.
func NewHost(waker *wake.Waker, vp viewport.Viewport) *Host {
	h := &Host{waker: waker}
	h.vp.Store(&vp)
	return h
}

func (h *Host) Coordinates() viewport.Viewport {
	return *h.vp.Load()
}

// SetAnimationState records the page's animation state and wakes the loop
// so the scheduler sees it.
func (h *Host) SetAnimationState(animating bool) {
	if h.animating.Swap(animating) != animating {
		h.waker.Wake()
	}
}

func (h *Host) CreateEventLoopWaker() engine.EventLoopWaker {
	return h.waker
}

// Animating returns the last reported animation state.
func (h *Host) Animating() bool {
	return h.animating.Load()
}

func (h *Host) setCoordinates(vp viewport.Viewport) {
	h.vp.Store(&vp)
}
