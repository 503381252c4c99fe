// Package translate turns native window events into engine input events.
package translate

import (
	"image"

	"github.com/1broseidon/webshim/internal/engine"
	"github.com/1broseidon/webshim/internal/platform"
	"github.com/1broseidon/webshim/internal/viewport"
)

// Intent is what a native event asks of the loop beyond engine input.
type Intent int

const (
	IntentNone Intent = iota
	// IntentClose starts the shutdown sequence.
	IntentClose
	// IntentRedraw asks for a present without new input.
	IntentRedraw
)

// Translator owns the viewport and the last pointer position. It is used
// from the host thread only.
type Translator struct {
	vp      viewport.Viewport
	pointer image.Point
}

// New returns a Translator starting from vp.
func New(vp viewport.Viewport) *Translator {
	return &Translator{vp: vp}
}

// Viewport returns the current viewport.
func (t *Translator) Viewport() viewport.Viewport {
	return t.vp
}

// Translate appends the engine events for ev to pending. top is the view
// that owns the window surface, or zero when none is open.
func (t *Translator) Translate(pending []engine.InputEvent, ev platform.Event, top engine.ViewHandle) ([]engine.InputEvent, Intent) {
	switch ev.Kind {
	case platform.EventResize:
		vp, ok := viewport.ToDeviceRect(ev.Size, t.vp.HiDPIScale, ev.Unit)
		if !ok {
			return pending, IntentNone
		}
		vp.Origin = t.vp.Origin
		vp = vp.WithScreens(t.vp.Screen, t.vp.AvailableScreen)
		t.vp = vp
		if top != 0 {
			pending = append(pending, engine.MoveResizeView(top, vp.Rect()))
		}
		return append(pending, engine.WindowResize(vp)), IntentNone

	case platform.EventPointerMove:
		t.pointer = ev.Pos
		return append(pending, engine.PointerMove(ev.Pos)), IntentNone

	case platform.EventButtonDown:
		b, ok := mapButton(ev.Button)
		if !ok {
			return pending, IntentNone
		}
		return append(pending, engine.PointerDown(t.pointer, b)), IntentNone

	case platform.EventButtonUp:
		b, ok := mapButton(ev.Button)
		if !ok {
			return pending, IntentNone
		}
		pending = append(pending, engine.PointerUp(t.pointer, b))
		if b == engine.ButtonPrimary {
			// Every primary release is a click; there is no drag threshold.
			pending = append(pending, engine.Click(t.pointer))
		}
		return pending, IntentNone

	case platform.EventScroll:
		if ev.Delta == (image.Point{}) {
			return pending, IntentNone
		}
		return append(pending, engine.Scroll(t.pointer, ev.Delta)), IntentNone

	case platform.EventKeyDown:
		return append(pending, engine.KeyDown(ev.Key, ev.Mods)), IntentNone

	case platform.EventKeyUp:
		return append(pending, engine.KeyUp(ev.Key, ev.Mods)), IntentNone

	case platform.EventCloseRequested:
		return pending, IntentClose

	case platform.EventExpose:
		return pending, IntentRedraw

	case platform.EventDisplayChanged:
		if t.displayChanged(ev) {
			pending = append(pending, engine.WindowResize(t.vp))
		}
		return pending, IntentNone
	}
	return pending, IntentNone
}

// displayChanged applies a new scale and screen geometry. The device size
// is kept; the engine learns the new scale through WindowResize.
func (t *Translator) displayChanged(ev platform.Event) bool {
	vp := t.vp
	if ev.Scale > 0 {
		vp.HiDPIScale = ev.Scale
	}
	if ev.Screen != (image.Point{}) {
		available := ev.Available
		if available == (image.Point{}) {
			available = ev.Screen
		}
		vp = vp.WithScreens(ev.Screen, available)
	}
	if vp == t.vp {
		return false
	}
	t.vp = vp
	return true
}

func mapButton(b platform.Button) (engine.Button, bool) {
	switch b {
	case platform.ButtonLeft:
		return engine.ButtonPrimary, true
	case platform.ButtonMiddle:
		return engine.ButtonMiddle, true
	case platform.ButtonRight:
		return engine.ButtonSecondary, true
	}
	return 0, false
}
