// Package demoengine is a small in-process engine used by the webshim
// binary when no external engine is attached. It renders with gg on its
// own compositor goroutine and reaches the host only through the wake
// callback.
package demoengine

import (
	"image"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/1broseidon/webshim/internal/engine"
	"github.com/1broseidon/webshim/internal/viewport"
)

// View is the handle of the single view the demo engine opens.
const View engine.ViewHandle = 1

// Options configures the demo engine.
type Options struct {
	// FrameInterval paces animation frames.
	FrameInterval time.Duration
	// Animate starts the page animating.
	Animate bool
	// URL is the initial page.
	URL string
	// Args are engine switches. The demo engine only logs them.
	Args   []string
	Logger *slog.Logger
}

type frame struct {
	id  uint64
	img *image.RGBA
}

// Engine implements engine.Engine.
type Engine struct {
	embedder engine.Embedder
	logger   *slog.Logger
	interval time.Duration

	mu         sync.Mutex
	wake       func()
	outbound   []engine.Notification
	front      *frame
	nextID     uint64
	leased     int
	vp         viewport.Viewport
	pointer    image.Point
	hover      bool
	animating  bool
	phase      float64
	scroll     int
	url        string
	pendingNav map[string]bool
	readyQueue bool
	presents   int
	viewOpen   bool
	closed     bool

	dirty chan struct{}
	quit  chan struct{}
	done  chan struct{}
	once  sync.Once
}

var _ engine.Engine = (*Engine)(nil)

// New starts the compositor and opens the initial view.
func New(embedder engine.Embedder, opts Options) *Engine {
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = 16 * time.Millisecond
	}
	if opts.URL == "" {
		opts.URL = "about:demo"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e := &Engine{
		embedder:   embedder,
		logger:     logger,
		interval:   opts.FrameInterval,
		wake:       embedder.CreateEventLoopWaker().Wake,
		vp:         embedder.Coordinates(),
		animating:  opts.Animate,
		url:        opts.URL,
		viewOpen:   true,
		pendingNav: make(map[string]bool),
		dirty:      make(chan struct{}, 1),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	e.outbound = append(e.outbound,
		engine.Notification{Kind: engine.NotifyViewOpened, View: View},
		engine.Notification{Kind: engine.NotifyTitleChanged, View: View, Title: titleFor(opts.URL)},
		engine.Notification{Kind: engine.NotifyLoadComplete, View: View, URL: opts.URL},
	)
	if opts.Animate {
		embedder.SetAnimationState(true)
	}

	logger.Debug("demo engine started", "url", opts.URL, "args", opts.Args, "frame_interval", opts.FrameInterval)
	go e.compositor()
	e.invalidate()
	return e
}

func (e *Engine) RegisterWakeCallback(f func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.wake = f
}

func (e *Engine) SubmitEvents(batch []engine.InputEvent) bool {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return false
	}

	redraw := false
	var animating *bool
	for _, ev := range batch {
		switch ev.Kind {
		case engine.InputPointerMove:
			e.pointer = ev.Pos
			if hover := ev.Pos.In(buttonRect(e.vp)); hover != e.hover {
				e.hover = hover
				cursor := engine.CursorDefault
				if hover {
					cursor = engine.CursorPointer
				}
				e.outbound = append(e.outbound, engine.Notification{Kind: engine.NotifyCursorChanged, View: View, Cursor: cursor})
				redraw = true
			}
		case engine.InputClick:
			if ev.Pos.In(buttonRect(e.vp)) {
				e.animating = !e.animating
				a := e.animating
				animating = &a
				redraw = true
			}
		case engine.InputKeyDown:
			switch {
			case ev.Key == "space":
				e.animating = !e.animating
				a := e.animating
				animating = &a
			case ev.Key == "Escape" && e.viewOpen:
				// The page closes itself; the embedder decides whether that ends the app.
				e.viewOpen = false
				e.outbound = append(e.outbound, engine.Notification{Kind: engine.NotifyViewClosed, View: View})
			case ev.Key == "q" && ev.Mods&engine.ModControl != 0:
				e.outbound = append(e.outbound, engine.Notification{Kind: engine.NotifyShutdown})
			}
		case engine.InputScroll:
			e.scroll += ev.Delta.Y
			redraw = true
		case engine.InputWindowResize:
			e.vp = ev.Viewport
			redraw = true
		case engine.InputMoveResizeView, engine.InputRaiseToTop:
			redraw = true
		case engine.InputLoadURL:
			e.pendingNav[ev.URL] = true
			e.outbound = append(e.outbound, engine.Notification{Kind: engine.NotifyNavigationRequested, View: ev.View, URL: ev.URL})
		case engine.InputAllowNavigation:
			if !e.pendingNav[ev.URL] {
				break
			}
			delete(e.pendingNav, ev.URL)
			if !ev.Allow {
				e.logger.Info("navigation denied", "url", ev.URL)
				break
			}
			e.url = ev.URL
			e.outbound = append(e.outbound,
				engine.Notification{Kind: engine.NotifyTitleChanged, View: ev.View, Title: titleFor(ev.URL)},
				engine.Notification{Kind: engine.NotifyLoadComplete, View: ev.View, URL: ev.URL},
			)
			redraw = true
		}
	}
	e.mu.Unlock()

	if animating != nil {
		e.embedder.SetAnimationState(*animating)
	}
	if redraw {
		e.invalidate()
	}
	return false
}

func (e *Engine) PollOutbound() (engine.Notification, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.outbound) == 0 {
		return engine.Notification{}, false
	}
	n := e.outbound[0]
	e.outbound = e.outbound[1:]
	if n.Kind == engine.NotifyReadyToPresent {
		e.readyQueue = false
	}
	return n, true
}

func (e *Engine) Present() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.presents++
}

func (e *Engine) FrontSurface() (engine.Surface, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return engine.Surface{}, &engine.OpError{Op: "front surface", Err: engine.ErrNotInitialized}
	}
	if e.front == nil {
		return engine.Surface{}, engine.ErrNoFrame
	}
	e.leased++
	return engine.Surface{ID: e.front.id, Size: e.front.img.Bounds().Size(), Pixels: e.front.img}, nil
}

func (e *Engine) ReleaseSurface(engine.Surface) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.leased > 0 {
		e.leased--
	}
}

// Shutdown stops the compositor and waits for it. It is idempotent.
func (e *Engine) Shutdown() {
	e.once.Do(func() {
		e.mu.Lock()
		e.closed = true
		leased := e.leased
		e.mu.Unlock()

		close(e.quit)
		<-e.done
		if leased != 0 {
			e.logger.Warn("engine shut down with leased surfaces", "leased", leased)
		}
		e.logger.Debug("demo engine stopped")
	})
}

func (e *Engine) Viewport() viewport.Viewport {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.vp
}

// Leased returns how many surfaces are currently leased.
func (e *Engine) Leased() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.leased
}

// Animating reports the page's animation state.
func (e *Engine) Animating() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.animating
}

func (e *Engine) invalidate() {
	select {
	case e.dirty <- struct{}{}:
	default:
	}
}

func titleFor(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "webshim - " + raw
	}
	return "webshim - " + u.Host
}
