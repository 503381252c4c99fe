// Package engine defines the contract between the embedder and the
// rendering engine it hosts. The engine itself is an external service;
// this package only carries the types that cross the boundary.
package engine

import (
	"image"

	"github.com/1broseidon/webshim/internal/viewport"
)

// ViewHandle identifies one logical view (tab/webview). Zero means none.
type ViewHandle uint64

// Surface is one composited frame leased from the engine's surface pool.
type Surface struct {
	ID     uint64
	Size   image.Point
	Pixels image.Image
}

// Engine is the service interface the embedder consumes.
//
// All methods are called from the host thread. The engine may run its own
// goroutines internally; the only way for them to reach the host is the
// callback passed to RegisterWakeCallback.
type Engine interface {
	// SubmitEvents hands a batch of input events to the engine and reports
	// whether a present is needed as a result.
	SubmitEvents(batch []InputEvent) bool

	// PollOutbound pops the next notification, reporting false once the
	// outbound queue is empty.
	PollOutbound() (Notification, bool)

	// Present asks the engine to composite its current frame.
	Present()

	// FrontSurface leases the most recent frame. It fails if the engine has
	// no current frame.
	FrontSurface() (Surface, error)

	// ReleaseSurface returns a leased surface to the pool.
	ReleaseSurface(Surface)

	// RegisterWakeCallback installs the cross-thread wake notifier.
	RegisterWakeCallback(func())

	// Shutdown deinitializes the engine synchronously.
	Shutdown()

	// Viewport returns the engine's view of the current coordinates.
	Viewport() viewport.Viewport
}

// EventLoopWaker wakes the host loop from any goroutine.
type EventLoopWaker interface {
	Wake()
}

// Embedder is what the engine sees of the host.
type Embedder interface {
	Coordinates() viewport.Viewport
	SetAnimationState(animating bool)
	CreateEventLoopWaker() EventLoopWaker
}
