package x11

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"sync"

	"github.com/1broseidon/webshim/internal/platform"
	"github.com/1broseidon/webshim/internal/surface"
	"github.com/1broseidon/webshim/internal/viewport"
	"github.com/1broseidon/webshim/internal/wake"
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xgraphics"
	"github.com/BurntSushi/xgbutil/xwindow"
	"golang.org/x/image/draw"
)

const wakeAtomName = "_WEBSHIM_WAKE"

// ErrNoDisplay is returned by Open when neither a display nor $DISPLAY is set.
var ErrNoDisplay = errors.New("x11: no display")

// Options configures the X11 window.
type Options struct {
	Display string
	Title   string
	Size    image.Point
	// Scale overrides the DPI-derived hidpi factor when > 0.
	Scale  float32
	Logger *slog.Logger
}

// Window is a platform.Window backed by an X11 top-level window.
type Window struct {
	conn   *Connection
	win    *xwindow.Window
	logger *slog.Logger
	waker  *wake.Waker
	ctx    *surface.SoftwareContext

	wakeAtom      xproto.Atom
	protocolsAtom xproto.Atom
	deleteAtom    xproto.Atom

	size       image.Point
	scale      float32
	fixedScale bool
	screen     image.Point
	available  image.Point
	back       *xgraphics.Image
	cursors    map[platform.CursorIcon]xproto.Cursor
	cursor     platform.CursorIcon

	// mu guards closed against Wake on engine goroutines.
	mu     sync.Mutex
	closed bool
}

var _ platform.Window = (*Window)(nil)

// Open connects to the X server and maps a new top-level window.
func Open(opts Options) (*Window, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Size.X <= 0 || opts.Size.Y <= 0 {
		opts.Size = image.Pt(1024, 768)
	}
	if opts.Display == "" && os.Getenv("DISPLAY") == "" {
		return nil, ErrNoDisplay
	}

	conn, err := NewConnection(opts.Display)
	if err != nil {
		return nil, err
	}
	w := &Window{
		conn:       conn,
		logger:     logger,
		size:       opts.Size,
		scale:      opts.Scale,
		fixedScale: opts.Scale > 0,
		cursors:    make(map[platform.CursorIcon]xproto.Cursor),
	}
	if w.scale <= 0 {
		w.scale = conn.ScaleFactor()
	}
	w.screen, w.available = conn.ScreenMetrics()

	if err := w.create(opts.Title); err != nil {
		conn.Close()
		return nil, err
	}
	w.ctx = surface.NewSoftwareContext(w)
	w.waker = wake.NewWaker(w.postWake)

	logger.Info("x11 window opened",
		"window", w.win.Id, "size", fmt.Sprintf("%dx%d", w.size.X, w.size.Y),
		"scale", w.scale, "screen", fmt.Sprintf("%dx%d", w.screen.X, w.screen.Y))
	return w, nil
}

func (w *Window) create(title string) error {
	xu := w.conn.XUtil
	conn := xu.Conn()
	screen := xu.Screen()

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return fmt.Errorf("allocate window id: %w", err)
	}

	// Value list follows the mask bit order: CwBackPixel before CwEventMask.
	mask := uint32(xproto.EventMaskStructureNotify | xproto.EventMaskExposure |
		xproto.EventMaskPointerMotion | xproto.EventMaskButtonPress | xproto.EventMaskButtonRelease |
		xproto.EventMaskKeyPress | xproto.EventMaskKeyRelease)
	err = xproto.CreateWindowChecked(
		conn,
		screen.RootDepth,
		wid,
		w.conn.Root,
		0, 0,
		uint16(w.size.X), uint16(w.size.Y),
		0,
		xproto.WindowClassInputOutput,
		screen.RootVisual,
		xproto.CwBackPixel|xproto.CwEventMask,
		[]uint32{screen.BlackPixel, mask},
	).Check()
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	w.win = xwindow.New(xu, wid)

	if w.wakeAtom, err = w.conn.Atom(wakeAtomName); err != nil {
		return err
	}
	if w.protocolsAtom, err = w.conn.Atom("WM_PROTOCOLS"); err != nil {
		return err
	}
	if w.deleteAtom, err = w.conn.Atom("WM_DELETE_WINDOW"); err != nil {
		return err
	}
	if err := icccm.WmProtocolsSet(xu, wid, []string{"WM_DELETE_WINDOW"}); err != nil {
		return fmt.Errorf("set WM_PROTOCOLS: %w", err)
	}
	if err := icccm.WmClassSet(xu, wid, &icccm.WmClass{Instance: "webshim", Class: "Webshim"}); err != nil {
		w.logger.Debug("set WM_CLASS", "error", err)
	}
	w.SetTitle(title)

	w.win.Map()
	w.watchScreens()
	return nil
}

// postWake sends a ClientMessage to our own window. xgb serializes writes,
// so this is safe from any goroutine.
func (w *Window) postWake() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: w.win.Id,
		Type:   w.wakeAtom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{0, 0, 0, 0, 0}),
	}
	xproto.SendEvent(w.conn.XUtil.Conn(), false, w.win.Id, xproto.EventMaskNoEvent, string(ev.Bytes()))
}

// NextEvent reads X events until one maps to a platform event. Cancel is
// observed through the waker; see loop.Driver.Run.
func (w *Window) NextEvent(ctx context.Context, mode wake.Mode) (platform.Event, error) {
	conn := w.conn.XUtil.Conn()
	for {
		if err := ctx.Err(); err != nil {
			return platform.Event{}, err
		}

		var (
			xev  xgb.Event
			xerr xgb.Error
		)
		if mode == wake.Poll {
			xev, xerr = conn.PollForEvent()
			if xev == nil && xerr == nil {
				return platform.Event{Kind: platform.EventIdle}, nil
			}
		} else {
			xev, xerr = conn.WaitForEvent()
			if xev == nil && xerr == nil {
				return platform.Event{}, platform.ErrWindowClosed
			}
		}
		if xerr != nil {
			w.logger.Debug("x11 error", "error", xerr)
			continue
		}
		if ev, ok := w.convert(xev); ok {
			return ev, nil
		}
	}
}

func (w *Window) convert(xev xgb.Event) (platform.Event, bool) {
	switch e := xev.(type) {
	case xproto.ConfigureNotifyEvent:
		if e.Window != w.win.Id {
			return platform.Event{}, false
		}
		size := image.Pt(int(e.Width), int(e.Height))
		if size == w.size {
			return platform.Event{}, false
		}
		w.size = size
		return platform.Event{Kind: platform.EventResize, Size: size, Unit: viewport.Physical}, true

	case xproto.ExposeEvent:
		if e.Count != 0 {
			return platform.Event{}, false
		}
		return platform.Event{Kind: platform.EventExpose}, true

	case xproto.MotionNotifyEvent:
		return platform.Event{Kind: platform.EventPointerMove, Pos: image.Pt(int(e.EventX), int(e.EventY)), Mods: modifiers(e.State)}, true

	case xproto.ButtonPressEvent:
		pos := image.Pt(int(e.EventX), int(e.EventY))
		if d, ok := wheelDelta(e.Detail); ok {
			return platform.Event{Kind: platform.EventScroll, Pos: pos, Delta: d, Mods: modifiers(e.State)}, true
		}
		return platform.Event{Kind: platform.EventButtonDown, Pos: pos, Button: button(e.Detail), Mods: modifiers(e.State)}, true

	case xproto.ButtonReleaseEvent:
		if _, ok := wheelDelta(e.Detail); ok {
			return platform.Event{}, false
		}
		return platform.Event{Kind: platform.EventButtonUp, Pos: image.Pt(int(e.EventX), int(e.EventY)), Button: button(e.Detail), Mods: modifiers(e.State)}, true

	case xproto.KeyPressEvent:
		return platform.Event{Kind: platform.EventKeyDown, Key: keyName(w.conn.XUtil, e.State, e.Detail), Mods: modifiers(e.State)}, true

	case xproto.KeyReleaseEvent:
		return platform.Event{Kind: platform.EventKeyUp, Key: keyName(w.conn.XUtil, e.State, e.Detail), Mods: modifiers(e.State)}, true

	case xproto.ClientMessageEvent:
		switch {
		case e.Type == w.wakeAtom:
			return platform.Event{Kind: platform.EventWake}, true
		case e.Type == w.protocolsAtom && xproto.Atom(e.Data.Data32[0]) == w.deleteAtom:
			return platform.Event{Kind: platform.EventCloseRequested}, true
		}

	case randr.ScreenChangeNotifyEvent:
		return w.screenChanged(e)

	case xproto.DestroyNotifyEvent:
		if e.Window == w.win.Id {
			return platform.Event{Kind: platform.EventCloseRequested}, true
		}
	}
	return platform.Event{}, false
}

func (w *Window) Size() image.Point { return w.size }

func (w *Window) ScaleFactor() float32 { return w.scale }

func (w *Window) Screens() (image.Point, image.Point) { return w.screen, w.available }

func (w *Window) Context() surface.Context { return w.ctx }

// Framebuffer returns the back buffer, reallocating it on size changes.
func (w *Window) Framebuffer(size image.Point) draw.Image {
	if w.back != nil && w.back.Bounds().Size() == size {
		return w.back
	}
	if w.back != nil {
		w.back.Destroy()
	}
	w.back = xgraphics.New(w.conn.XUtil, image.Rectangle{Max: size})
	if err := w.back.XSurfaceSet(w.win.Id); err != nil {
		w.logger.Warn("create x surface", "error", err)
	}
	return w.back
}

// SwapBuffers uploads the back buffer and paints it into the window.
func (w *Window) SwapBuffers() error {
	if w.back == nil {
		return nil
	}
	w.back.XDraw()
	w.back.XPaint(w.win.Id)
	return nil
}

func (w *Window) SetTitle(title string) {
	if title == "" {
		return
	}
	xu := w.conn.XUtil
	if err := ewmh.WmNameSet(xu, w.win.Id, title); err != nil {
		w.logger.Debug("set _NET_WM_NAME", "error", err)
	}
	if err := icccm.WmNameSet(xu, w.win.Id, title); err != nil {
		w.logger.Debug("set WM_NAME", "error", err)
	}
}

func (w *Window) Waker() *wake.Waker { return w.waker }

// Close destroys the window and disconnects. It is idempotent.
func (w *Window) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	w.waker.Close()
	for _, c := range w.cursors {
		xproto.FreeCursor(w.conn.XUtil.Conn(), c)
	}
	if w.back != nil {
		w.back.Destroy()
	}
	w.win.Destroy()
	w.conn.Close()
	return nil
}
