// Package enginetest provides a scriptable in-memory engine for tests.
package enginetest

import (
	"image"
	"sync"

	"github.com/1broseidon/webshim/internal/engine"
	"github.com/1broseidon/webshim/internal/viewport"
)

// Recorder implements engine.Engine and records every call made to it.
type Recorder struct {
	mu sync.Mutex

	batches  [][]engine.InputEvent
	outbound []engine.Notification
	wake     func()

	// OnSubmit, when set, is called for every submitted batch; the returned
	// notifications are queued and the bool is returned from SubmitEvents.
	OnSubmit func(batch []engine.InputEvent) ([]engine.Notification, bool)

	// Frame is handed out by FrontSurface. A nil Pixels means no frame.
	Frame engine.Surface

	leased        int
	acquired      int
	released      int
	presents      int
	shutdowns     int
	viewportValue viewport.Viewport
}

var _ engine.Engine = (*Recorder)(nil)

// New returns a Recorder with a 4x4 frame ready to present.
func New() *Recorder {
	return &Recorder{
		Frame: engine.Surface{
			ID:     1,
			Size:   image.Pt(4, 4),
			Pixels: image.NewRGBA(image.Rect(0, 0, 4, 4)),
		},
	}
}

// Queue appends notifications to the outbound queue.
func (r *Recorder) Queue(n ...engine.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outbound = append(r.outbound, n...)
}

// Wake invokes the registered wake callback, as an engine thread would.
func (r *Recorder) Wake() {
	r.mu.Lock()
	wake := r.wake
	r.mu.Unlock()
	if wake != nil {
		wake()
	}
}

func (r *Recorder) SubmitEvents(batch []engine.InputEvent) bool {
	r.mu.Lock()
	cp := append([]engine.InputEvent(nil), batch...)
	r.batches = append(r.batches, cp)
	hook := r.OnSubmit
	r.mu.Unlock()

	if hook == nil {
		return false
	}
	notes, present := hook(cp)
	r.Queue(notes...)
	return present
}

func (r *Recorder) PollOutbound() (engine.Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.outbound) == 0 {
		return engine.Notification{}, false
	}
	n := r.outbound[0]
	r.outbound = r.outbound[1:]
	return n, true
}

func (r *Recorder) Present() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.presents++
}

func (r *Recorder) FrontSurface() (engine.Surface, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Frame.Pixels == nil {
		return engine.Surface{}, engine.ErrNoFrame
	}
	r.acquired++
	r.leased++
	return r.Frame, nil
}

func (r *Recorder) ReleaseSurface(engine.Surface) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.released++
	r.leased--
}

func (r *Recorder) RegisterWakeCallback(f func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.wake = f
}

func (r *Recorder) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shutdowns++
}

func (r *Recorder) Viewport() viewport.Viewport {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.viewportValue
}

// SetViewport sets the value returned by Viewport.
func (r *Recorder) SetViewport(vp viewport.Viewport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.viewportValue = vp
}

// Batches returns a copy of every submitted batch, in order.
func (r *Recorder) Batches() [][]engine.InputEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]engine.InputEvent, len(r.batches))
	copy(out, r.batches)
	return out
}

// Events returns every submitted event flattened in submission order.
func (r *Recorder) Events() []engine.InputEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []engine.InputEvent
	for _, b := range r.batches {
		out = append(out, b...)
	}
	return out
}

// Kinds returns the kinds of every submitted event, in order.
func (r *Recorder) Kinds() []engine.InputKind {
	events := r.Events()
	kinds := make([]engine.InputKind, len(events))
	for i, e := range events {
		kinds[i] = e.Kind
	}
	return kinds
}

// Leases returns how many surfaces were acquired and released.
func (r *Recorder) Leases() (acquired, released int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.acquired, r.released
}

// Presents returns how many times Present was called.
func (r *Recorder) Presents() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.presents
}

// Shutdowns returns how many times Shutdown was called.
func (r *Recorder) Shutdowns() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.shutdowns
}
