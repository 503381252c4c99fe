// Package lifecycle tracks the views of one window, answers engine
// callbacks, and runs the shutdown sequence.
package lifecycle

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/1broseidon/webshim/internal/engine"
	"github.com/1broseidon/webshim/internal/platform"
	"github.com/1broseidon/webshim/internal/surface"
	"github.com/1broseidon/webshim/internal/viewport"
	"github.com/1broseidon/webshim/internal/wake"
)

// State is the per-window lifecycle state.
type State int

const (
	Running State = iota
	ShuttingDown
	Terminated
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case ShuttingDown:
		return "shutting-down"
	case Terminated:
		return "terminated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Chrome is the part of the native window the controller decorates.
type Chrome interface {
	SetCursor(platform.CursorIcon)
	SetTitle(string)
}

// Options configures a Controller.
type Options struct {
	Host   Host
	Chrome Chrome
	// Coordinates returns the viewport new views are sized to.
	Coordinates func() viewport.Viewport
	// ExitOnLastViewClosed runs the shutdown sequence when no views remain.
	ExitOnLastViewClosed bool
	Logger               *slog.Logger
}

// Result is what handling one notification asks of the loop.
type Result struct {
	// Events must be submitted to the engine in order.
	Events []engine.InputEvent
	// Present is set when the engine has a new frame.
	Present bool
	// Stop is set once the controller reached Terminated.
	Stop bool
}

// Controller is the view lifecycle state machine. Host thread only.
type Controller struct {
	eng    engine.Engine
	bridge *surface.Bridge
	waker  *wake.Waker
	opts   Options
	logger *slog.Logger

	state  State
	views  []engine.ViewHandle
	titles map[engine.ViewHandle]string
	urls   map[engine.ViewHandle]string
	done   chan struct{}
	stops  int
}

// New returns a Running controller. bridge and waker may be nil.
func New(eng engine.Engine, bridge *surface.Bridge, waker *wake.Waker, opts Options) *Controller {
	if opts.Host == nil {
		opts.Host = DefaultHost{}
	}
	if opts.Coordinates == nil {
		opts.Coordinates = eng.Viewport
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		eng:    eng,
		bridge: bridge,
		waker:  waker,
		opts:   opts,
		logger: logger,
		titles: make(map[engine.ViewHandle]string),
		urls:   make(map[engine.ViewHandle]string),
		done:   make(chan struct{}),
	}
}

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Accepting reports whether input may still be sent to the engine.
func (c *Controller) Accepting() bool { return c.state == Running }

// Done is closed when the controller reaches Terminated.
func (c *Controller) Done() <-chan struct{} { return c.done }

// Terminations returns how many times Terminated was entered (0 or 1).
func (c *Controller) Terminations() int { return c.stops }

// Top returns the view that owns the window surface, or zero.
func (c *Controller) Top() engine.ViewHandle {
	if len(c.views) == 0 {
		return 0
	}
	return c.views[len(c.views)-1]
}

// Views returns the open views, oldest first.
func (c *Controller) Views() []engine.ViewHandle {
	return slices.Clone(c.views)
}

// Title returns the last title reported for view.
func (c *Controller) Title(view engine.ViewHandle) string { return c.titles[view] }

// URL returns the last loaded URL of view.
func (c *Controller) URL(view engine.ViewHandle) string { return c.urls[view] }

// Handle processes one outbound notification. Notifications arriving after
// the controller left Running are ignored.
func (c *Controller) Handle(n engine.Notification) (Result, error) {
	if c.state != Running {
		return Result{Stop: c.state == Terminated}, nil
	}

	switch n.Kind {
	case engine.NotifyViewOpened:
		if n.View == 0 {
			c.logger.Warn("view opened without a handle")
			return Result{}, nil
		}
		c.views = slices.DeleteFunc(c.views, func(v engine.ViewHandle) bool { return v == n.View })
		c.views = append(c.views, n.View)
		c.logger.Info("view opened", "view", n.View, "views", len(c.views))
		return Result{Events: c.takeOver(n.View)}, nil

	case engine.NotifyViewClosed:
		return c.closeView(n.View)

	case engine.NotifyNavigationRequested:
		allow := c.opts.Host.AllowNavigation(n.View, n.URL)
		c.logger.Debug("navigation requested", "view", n.View, "url", n.URL, "allow", allow)
		return Result{Events: []engine.InputEvent{engine.AllowNavigation(n.View, n.URL, allow)}}, nil

	case engine.NotifyCursorChanged:
		if icon, ok := c.opts.Host.MapCursor(n.Cursor); ok && c.opts.Chrome != nil {
			c.opts.Chrome.SetCursor(icon)
		}
		return Result{}, nil

	case engine.NotifyTitleChanged:
		c.titles[n.View] = n.Title
		if (n.View == 0 || n.View == c.Top()) && c.opts.Chrome != nil {
			c.opts.Chrome.SetTitle(n.Title)
		}
		return Result{}, nil

	case engine.NotifyLoadComplete:
		c.urls[n.View] = n.URL
		c.logger.Debug("load complete", "view", n.View, "url", n.URL)
		return Result{}, nil

	case engine.NotifyReadyToPresent:
		return Result{Present: true}, nil

	case engine.NotifyShutdown:
		c.logger.Info("engine requested shutdown")
		if err := c.Shutdown(); err != nil {
			return Result{}, err
		}
		return Result{Stop: true}, nil
	}

	c.logger.Debug("unhandled engine notification", "notification", n.String())
	return Result{}, nil
}

func (c *Controller) takeOver(v engine.ViewHandle) []engine.InputEvent {
	vp := c.opts.Coordinates()
	if t, ok := c.titles[v]; ok && c.opts.Chrome != nil {
		c.opts.Chrome.SetTitle(t)
	}
	return []engine.InputEvent{
		engine.Focus(v),
		engine.MoveResizeView(v, vp.Rect()),
		engine.RaiseToTop(v),
	}
}

func (c *Controller) closeView(v engine.ViewHandle) (Result, error) {
	i := slices.Index(c.views, v)
	if i < 0 {
		c.logger.Debug("close for unknown view", "view", v)
		return Result{}, nil
	}
	wasTop := v == c.Top()
	c.views = slices.Delete(c.views, i, i+1)
	delete(c.titles, v)
	delete(c.urls, v)
	c.logger.Info("view closed", "view", v, "views", len(c.views))

	if len(c.views) == 0 {
		if c.opts.ExitOnLastViewClosed {
			if err := c.Shutdown(); err != nil {
				return Result{}, err
			}
			return Result{Stop: true}, nil
		}
		return Result{}, nil
	}
	if !wasTop {
		return Result{}, nil
	}
	return Result{Events: c.takeOver(c.Top())}, nil
}

// Shutdown runs the one-way shutdown sequence. It is idempotent. An open
// texture binding is a protocol violation; the controller then stays in
// ShuttingDown and the error must be treated as fatal.
func (c *Controller) Shutdown() error {
	if c.state == Terminated {
		return nil
	}
	c.state = ShuttingDown

	if c.bridge != nil {
		if c.bridge.BindingOpen() {
			return fmt.Errorf("%w: shutdown with a texture binding open", surface.ErrProtocol)
		}
		if err := c.bridge.Close(); err != nil {
			return fmt.Errorf("release surfaces: %w", err)
		}
	}
	c.eng.Shutdown()
	c.waker.Close()

	c.views = nil
	c.state = Terminated
	c.stops++
	close(c.done)
	c.logger.Info("lifecycle terminated")
	return nil
}
