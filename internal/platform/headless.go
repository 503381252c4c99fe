package platform

import (
	"context"
	"errors"
	"image"
	"sync"

	"github.com/1broseidon/webshim/internal/surface"
	"github.com/1broseidon/webshim/internal/viewport"
	"github.com/1broseidon/webshim/internal/wake"
)

// ErrWindowClosed is returned by NextEvent after Close.
var ErrWindowClosed = errors.New("platform: window closed")

// HeadlessOptions configures a Headless window.
type HeadlessOptions struct {
	Size      image.Point
	Scale     float32
	Screen    image.Point
	Available image.Point
	// Queue is the native event queue depth. Send blocks when it is full.
	Queue int
}

// Headless is an in-memory Window. Events are injected with Send and
// frames land in an RGBA framebuffer.
type Headless struct {
	events chan Event
	wakec  chan struct{}
	done   chan struct{}
	waker  *wake.Waker
	target *surface.RGBATarget
	ctx    *surface.SoftwareContext

	mu        sync.Mutex
	size      image.Point
	scale     float32
	screen    image.Point
	available image.Point
	front     *image.RGBA
	cursor    CursorIcon
	title     string
	swaps     int
	closed    bool
}

var _ Window = (*Headless)(nil)

// NewHeadless returns a headless window.
func NewHeadless(opts HeadlessOptions) *Headless {
	if opts.Size.X <= 0 || opts.Size.Y <= 0 {
		opts.Size = image.Pt(800, 600)
	}
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	if opts.Screen == (image.Point{}) {
		opts.Screen = opts.Size
	}
	if opts.Available == (image.Point{}) {
		opts.Available = opts.Screen
	}
	if opts.Queue <= 0 {
		opts.Queue = 64
	}

	h := &Headless{
		events:    make(chan Event, opts.Queue),
		wakec:     make(chan struct{}, 1),
		done:      make(chan struct{}),
		target:    &surface.RGBATarget{},
		size:      opts.Size,
		scale:     opts.Scale,
		screen:    opts.Screen,
		available: opts.Available,
	}
	h.ctx = surface.NewSoftwareContext(h.target)
	h.waker = wake.NewWaker(h.postWake)
	return h
}

func (h *Headless) postWake() {
	select {
	case h.wakec <- struct{}{}:
	default:
	}
}

// Send queues a native event. It may be called from any goroutine and
// returns false once the window is closed.
func (h *Headless) Send(ev Event) bool {
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.events <- ev:
		return true
	case <-h.done:
		return false
	}
}

func (h *Headless) NextEvent(ctx context.Context, mode wake.Mode) (Event, error) {
	select {
	case <-h.done:
		return Event{}, ErrWindowClosed
	default:
	}

	if mode == wake.Poll {
		select {
		case ev := <-h.events:
			return h.deliver(ev), nil
		case <-h.wakec:
			return Event{Kind: EventWake}, nil
		default:
			return Event{Kind: EventIdle}, nil
		}
	}

	select {
	case ev := <-h.events:
		return h.deliver(ev), nil
	case <-h.wakec:
		return Event{Kind: EventWake}, nil
	case <-h.done:
		return Event{}, ErrWindowClosed
	case <-ctx.Done():
		return Event{}, ctx.Err()
	}
}

func (h *Headless) deliver(ev Event) Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch ev.Kind {
	case EventResize:
		if vp, ok := viewport.ToDeviceRect(ev.Size, h.scale, ev.Unit); ok {
			h.size = vp.Size
		}
	case EventDisplayChanged:
		if ev.Scale > 0 {
			h.scale = ev.Scale
		}
		if ev.Screen != (image.Point{}) {
			h.screen, h.available = ev.Screen, ev.Available
			if h.available == (image.Point{}) {
				h.available = ev.Screen
			}
		}
	}
	return ev
}

func (h *Headless) Size() image.Point {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.size
}

func (h *Headless) ScaleFactor() float32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.scale
}

func (h *Headless) Screens() (image.Point, image.Point) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.screen, h.available
}

func (h *Headless) Context() surface.Context {
	return h.ctx
}

// SwapBuffers publishes the framebuffer drawn by the last blit.
func (h *Headless) SwapBuffers() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrWindowClosed
	}
	fb := h.target.Image()
	if fb == nil {
		return nil
	}
	if h.front == nil || h.front.Bounds() != fb.Bounds() {
		h.front = image.NewRGBA(fb.Bounds())
	}
	copy(h.front.Pix, fb.Pix)
	h.swaps++
	return nil
}

func (h *Headless) SetCursor(c CursorIcon) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cursor = c
}

func (h *Headless) SetTitle(title string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.title = title
}

func (h *Headless) Waker() *wake.Waker {
	return h.waker
}

func (h *Headless) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	h.waker.Close()
	close(h.done)
	return nil
}

// Cursor returns the last cursor set.
func (h *Headless) Cursor() CursorIcon {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor
}

// Title returns the last title set.
func (h *Headless) Title() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.title
}

// Swaps returns the number of swaps that showed a frame.
func (h *Headless) Swaps() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.swaps
}

// Frame returns a copy of the last swapped framebuffer, or nil.
func (h *Headless) Frame() *image.RGBA {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.front == nil {
		return nil
	}
	cp := image.NewRGBA(h.front.Bounds())
	copy(cp.Pix, h.front.Pix)
	return cp
}
