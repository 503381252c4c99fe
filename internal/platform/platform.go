// Package platform abstracts the native windowing toolkit the shim runs in.
package platform

import (
	"context"
	"fmt"
	"image"

	"github.com/1broseidon/webshim/internal/engine"
	"github.com/1broseidon/webshim/internal/surface"
	"github.com/1broseidon/webshim/internal/viewport"
	"github.com/1broseidon/webshim/internal/wake"
)

// EventKind enumerates native window events.
type EventKind int

const (
	// EventIdle is returned by a polling NextEvent when nothing is queued.
	EventIdle EventKind = iota
	EventResize
	EventPointerMove
	EventButtonDown
	EventButtonUp
	EventScroll
	EventKeyDown
	EventKeyUp
	EventCloseRequested
	EventExpose
	// EventWake is the native wake posted by a Waker.
	EventWake
	// EventDisplayChanged reports a new scale factor or screen geometry
	// for the display the window is on.
	EventDisplayChanged
)

var eventKindNames = [...]string{
	EventIdle:           "idle",
	EventResize:         "resize",
	EventPointerMove:    "pointer-move",
	EventButtonDown:     "button-down",
	EventButtonUp:       "button-up",
	EventScroll:         "scroll",
	EventKeyDown:        "key-down",
	EventKeyUp:          "key-up",
	EventCloseRequested: "close-requested",
	EventExpose:         "expose",
	EventWake:           "wake",
	EventDisplayChanged: "display-changed",
}

func (k EventKind) String() string {
	if k >= 0 && int(k) < len(eventKindNames) {
		return eventKindNames[k]
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Button is a native pointer button.
type Button int

const (
	ButtonLeft Button = iota + 1
	ButtonMiddle
	ButtonRight
	// ButtonOther covers extra buttons the engine has no name for.
	ButtonOther
)

// Event is one native window event. Positions are window-relative.
type Event struct {
	Kind EventKind
	// Size is the new window size for EventResize, in Unit.
	Size image.Point
	Unit viewport.Unit
	Pos  image.Point
	// Button is set for button events.
	Button Button
	// Delta is the scroll amount in lines; positive Y scrolls down.
	Delta image.Point
	Key   string
	Mods  engine.Modifiers
	// Scale, Screen and Available are set for EventDisplayChanged. A zero
	// Scale keeps the current factor.
	Scale     float32
	Screen    image.Point
	Available image.Point
}

func (e Event) String() string {
	switch e.Kind {
	case EventResize:
		return fmt.Sprintf("resize(%dx%d %s)", e.Size.X, e.Size.Y, e.Unit)
	case EventPointerMove:
		return fmt.Sprintf("pointer-move(%d,%d)", e.Pos.X, e.Pos.Y)
	case EventButtonDown, EventButtonUp:
		return fmt.Sprintf("%s(%d @ %d,%d)", e.Kind, e.Button, e.Pos.X, e.Pos.Y)
	case EventScroll:
		return fmt.Sprintf("scroll(%+d,%+d)", e.Delta.X, e.Delta.Y)
	case EventKeyDown, EventKeyUp:
		return fmt.Sprintf("%s(%q)", e.Kind, e.Key)
	case EventDisplayChanged:
		return fmt.Sprintf("display-changed(@%g screen %dx%d)", e.Scale, e.Screen.X, e.Screen.Y)
	default:
		return e.Kind.String()
	}
}

// CursorIcon is a native cursor shape.
type CursorIcon int

const (
	CursorDefault CursorIcon = iota
	CursorHidden
	CursorHand
	CursorText
	CursorWait
	CursorHelp
	CursorCrosshair
	CursorMove
	CursorNotAllowed
	CursorResizeEW
	CursorResizeNS
)

var cursorIconNames = [...]string{
	CursorDefault:    "default",
	CursorHidden:     "hidden",
	CursorHand:       "hand",
	CursorText:       "text",
	CursorWait:       "wait",
	CursorHelp:       "help",
	CursorCrosshair:  "crosshair",
	CursorMove:       "move",
	CursorNotAllowed: "not-allowed",
	CursorResizeEW:   "resize-ew",
	CursorResizeNS:   "resize-ns",
}

func (c CursorIcon) String() string {
	if c >= 0 && int(c) < len(cursorIconNames) {
		return cursorIconNames[c]
	}
	return fmt.Sprintf("CursorIcon(%d)", int(c))
}

// Window is a native top-level window plus its event queue.
//
// Everything except Waker().Wake must be called on the host thread.
type Window interface {
	// NextEvent blocks for the next event in wake.Wait mode and returns
	// EventIdle immediately when nothing is queued in wake.Poll mode.
	NextEvent(ctx context.Context, mode wake.Mode) (Event, error)
	// Size is the current client-area size in physical pixels.
	Size() image.Point
	// ScaleFactor is the HiDPI factor of the window's display.
	ScaleFactor() float32
	// Screens returns the full and available screen sizes.
	Screens() (screen, available image.Point)
	// Context is the native context the surface bridge draws with.
	Context() surface.Context
	// SwapBuffers shows the framebuffer drawn since the previous swap.
	SwapBuffers() error
	SetCursor(CursorIcon)
	SetTitle(string)
	// Waker returns the cross-thread waker that posts EventWake.
	Waker() *wake.Waker
	Close() error
}
