package engine

import (
	"fmt"
	"image"

	"github.com/1broseidon/webshim/internal/viewport"
)

// InputKind enumerates the events the embedder sends to the engine.
type InputKind int

const (
	InputPointerMove InputKind = iota
	InputPointerDown
	InputPointerUp
	InputClick
	InputScroll
	InputKeyDown
	InputKeyUp
	InputWindowResize
	InputMoveResizeView
	InputFocus
	InputRaiseToTop
	InputAllowNavigation
	InputLoadURL
)

var inputKindNames = map[InputKind]string{
	InputPointerMove:     "PointerMove",
	InputPointerDown:     "PointerDown",
	InputPointerUp:       "PointerUp",
	InputClick:           "Click",
	InputScroll:          "Scroll",
	InputKeyDown:         "KeyDown",
	InputKeyUp:           "KeyUp",
	InputWindowResize:    "WindowResize",
	InputMoveResizeView:  "MoveResizeView",
	InputFocus:           "Focus",
	InputRaiseToTop:      "RaiseToTop",
	InputAllowNavigation: "AllowNavigation",
	InputLoadURL:         "LoadURL",
}

func (k InputKind) String() string {
	if name, ok := inputKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("InputKind(%d)", int(k))
}

// Button is a pointer button as the engine understands it.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonMiddle
	ButtonSecondary
)

// Modifiers is a bit set of held modifier keys.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModControl
	ModAlt
	ModSuper
)

// InputEvent is one event sent to the engine. Only the fields relevant to
// Kind are set.
type InputEvent struct {
	Kind     InputKind
	View     ViewHandle
	Pos      image.Point
	Button   Button
	Delta    image.Point
	Key      string
	Mods     Modifiers
	Rect     image.Rectangle
	Viewport viewport.Viewport
	URL      string
	Allow    bool
}

func (e InputEvent) String() string {
	switch e.Kind {
	case InputPointerMove, InputPointerDown, InputPointerUp, InputClick:
		return fmt.Sprintf("%s(%d,%d)", e.Kind, e.Pos.X, e.Pos.Y)
	case InputScroll:
		return fmt.Sprintf("Scroll(%d,%d %+d,%+d)", e.Pos.X, e.Pos.Y, e.Delta.X, e.Delta.Y)
	case InputKeyDown, InputKeyUp:
		return fmt.Sprintf("%s(%q)", e.Kind, e.Key)
	case InputWindowResize:
		return fmt.Sprintf("WindowResize(%s)", e.Viewport)
	case InputMoveResizeView:
		return fmt.Sprintf("MoveResizeView(%d, %v)", e.View, e.Rect)
	case InputFocus, InputRaiseToTop:
		return fmt.Sprintf("%s(%d)", e.Kind, e.View)
	case InputAllowNavigation:
		return fmt.Sprintf("AllowNavigation(%d, %q, %v)", e.View, e.URL, e.Allow)
	case InputLoadURL:
		return fmt.Sprintf("LoadURL(%d, %q)", e.View, e.URL)
	default:
		return e.Kind.String()
	}
}

func PointerMove(p image.Point) InputEvent {
	return InputEvent{Kind: InputPointerMove, Pos: p}
}

func PointerDown(p image.Point, b Button) InputEvent {
	return InputEvent{Kind: InputPointerDown, Pos: p, Button: b}
}

func PointerUp(p image.Point, b Button) InputEvent {
	return InputEvent{Kind: InputPointerUp, Pos: p, Button: b}
}

func Click(p image.Point) InputEvent {
	return InputEvent{Kind: InputClick, Pos: p, Button: ButtonPrimary}
}

func Scroll(p, delta image.Point) InputEvent {
	return InputEvent{Kind: InputScroll, Pos: p, Delta: delta}
}

func KeyDown(key string, mods Modifiers) InputEvent {
	return InputEvent{Kind: InputKeyDown, Key: key, Mods: mods}
}

func KeyUp(key string, mods Modifiers) InputEvent {
	return InputEvent{Kind: InputKeyUp, Key: key, Mods: mods}
}

func WindowResize(vp viewport.Viewport) InputEvent {
	return InputEvent{Kind: InputWindowResize, Viewport: vp}
}

func MoveResizeView(v ViewHandle, r image.Rectangle) InputEvent {
	return InputEvent{Kind: InputMoveResizeView, View: v, Rect: r}
}

func Focus(v ViewHandle) InputEvent {
	return InputEvent{Kind: InputFocus, View: v}
}

func RaiseToTop(v ViewHandle) InputEvent {
	return InputEvent{Kind: InputRaiseToTop, View: v}
}

func AllowNavigation(v ViewHandle, url string, allow bool) InputEvent {
	return InputEvent{Kind: InputAllowNavigation, View: v, URL: url, Allow: allow}
}

func LoadURL(v ViewHandle, url string) InputEvent {
	return InputEvent{Kind: InputLoadURL, View: v, URL: url}
}
