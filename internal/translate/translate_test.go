package translate

import (
	"image"
	"reflect"
	"testing"

	"github.com/1broseidon/webshim/internal/engine"
	"github.com/1broseidon/webshim/internal/platform"
	"github.com/1broseidon/webshim/internal/viewport"
)

func initial(scale float32) viewport.Viewport {
	vp, _ := viewport.ToDeviceRect(image.Pt(320, 240), scale, viewport.Physical)
	return vp
}

func TestTranslate_Resize(t *testing.T) {
	tests := []struct {
		name     string
		size     image.Point
		unit     viewport.Unit
		scale    float32
		top      engine.ViewHandle
		wantSize image.Point
		wantKind []engine.InputKind
	}{
		{
			name:     "physical hidpi",
			size:     image.Pt(800, 600),
			scale:    2,
			top:      1,
			wantSize: image.Pt(800, 600),
			wantKind: []engine.InputKind{engine.InputMoveResizeView, engine.InputWindowResize},
		},
		{
			name:     "logical hidpi",
			size:     image.Pt(400, 300),
			unit:     viewport.Logical,
			scale:    2,
			top:      1,
			wantSize: image.Pt(800, 600),
			wantKind: []engine.InputKind{engine.InputMoveResizeView, engine.InputWindowResize},
		},
		{
			name:     "no view yet",
			size:     image.Pt(640, 480),
			scale:    1,
			wantSize: image.Pt(640, 480),
			wantKind: []engine.InputKind{engine.InputWindowResize},
		},
		{name: "zero width", size: image.Pt(0, 600), scale: 1, top: 1, wantSize: image.Pt(320, 240)},
		{name: "zero height", size: image.Pt(800, 0), scale: 1, top: 1, wantSize: image.Pt(320, 240)},
		{name: "negative", size: image.Pt(-5, -5), scale: 2, top: 1, wantSize: image.Pt(320, 240)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New(initial(tt.scale))
			before := tr.Viewport()
			out, intent := tr.Translate(nil, platform.Event{Kind: platform.EventResize, Size: tt.size, Unit: tt.unit}, tt.top)
			if intent != IntentNone {
				t.Fatalf("intent = %v, want none", intent)
			}

			var kinds []engine.InputKind
			resizes := 0
			for _, ev := range out {
				kinds = append(kinds, ev.Kind)
				if ev.Kind == engine.InputWindowResize {
					resizes++
					if ev.Viewport != tr.Viewport() {
						t.Fatalf("WindowResize carries %v, translator has %v", ev.Viewport, tr.Viewport())
					}
				}
			}
			if !reflect.DeepEqual(kinds, tt.wantKind) {
				t.Fatalf("kinds = %v, want %v", kinds, tt.wantKind)
			}
			if got := tr.Viewport().Size; got != tt.wantSize {
				t.Fatalf("viewport size = %v, want %v", got, tt.wantSize)
			}
			if tt.wantKind == nil {
				if tr.Viewport() != before {
					t.Fatalf("degenerate resize mutated viewport: %v -> %v", before, tr.Viewport())
				}
			} else if resizes != 1 {
				t.Fatalf("WindowResize emitted %d times, want 1", resizes)
			}
		})
	}
}

func TestTranslate_DownUpClick(t *testing.T) {
	tr := New(initial(1))
	p := image.Pt(17, 42)

	var out []engine.InputEvent
	out, _ = tr.Translate(out, platform.Event{Kind: platform.EventPointerMove, Pos: p}, 1)
	out = out[:0]
	out, _ = tr.Translate(out, platform.Event{Kind: platform.EventButtonDown, Button: platform.ButtonLeft}, 1)
	out, _ = tr.Translate(out, platform.Event{Kind: platform.EventButtonUp, Button: platform.ButtonLeft}, 1)

	want := []engine.InputEvent{
		engine.PointerDown(p, engine.ButtonPrimary),
		engine.PointerUp(p, engine.ButtonPrimary),
		engine.Click(p),
	}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("events = %v, want %v", out, want)
	}
}

func TestTranslate_ButtonsAndKeys(t *testing.T) {
	tests := []struct {
		name string
		ev   platform.Event
		want []engine.InputKind
	}{
		{"right up has no click", platform.Event{Kind: platform.EventButtonUp, Button: platform.ButtonRight}, []engine.InputKind{engine.InputPointerUp}},
		{"middle down", platform.Event{Kind: platform.EventButtonDown, Button: platform.ButtonMiddle}, []engine.InputKind{engine.InputPointerDown}},
		{"unknown button", platform.Event{Kind: platform.EventButtonDown, Button: platform.ButtonOther}, nil},
		{"scroll", platform.Event{Kind: platform.EventScroll, Delta: image.Pt(0, 3)}, []engine.InputKind{engine.InputScroll}},
		{"empty scroll", platform.Event{Kind: platform.EventScroll}, nil},
		{"key down", platform.Event{Kind: platform.EventKeyDown, Key: "a"}, []engine.InputKind{engine.InputKeyDown}},
		{"key up", platform.Event{Kind: platform.EventKeyUp, Key: "a"}, []engine.InputKind{engine.InputKeyUp}},
		{"wake", platform.Event{Kind: platform.EventWake}, nil},
		{"idle", platform.Event{Kind: platform.EventIdle}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New(initial(1))
			out, _ := tr.Translate(nil, tt.ev, 1)
			var kinds []engine.InputKind
			for _, ev := range out {
				kinds = append(kinds, ev.Kind)
			}
			if !reflect.DeepEqual(kinds, tt.want) {
				t.Fatalf("kinds = %v, want %v", kinds, tt.want)
			}
		})
	}
}

func TestTranslate_Intents(t *testing.T) {
	tr := New(initial(1))
	out, intent := tr.Translate(nil, platform.Event{Kind: platform.EventCloseRequested}, 1)
	if intent != IntentClose || len(out) != 0 {
		t.Fatalf("close: intent = %v events = %v", intent, out)
	}
	out, intent = tr.Translate(nil, platform.Event{Kind: platform.EventExpose}, 1)
	if intent != IntentRedraw || len(out) != 0 {
		t.Fatalf("expose: intent = %v events = %v", intent, out)
	}
}

func TestTranslate_PreservesPending(t *testing.T) {
	tr := New(initial(1))
	pending := []engine.InputEvent{engine.Focus(1)}
	out, _ := tr.Translate(pending, platform.Event{Kind: platform.EventPointerMove, Pos: image.Pt(1, 2)}, 1)
	if len(out) != 2 || out[0].Kind != engine.InputFocus || out[1].Kind != engine.InputPointerMove {
		t.Fatalf("events = %v", out)
	}
}

func TestTranslate_DisplayChanged(t *testing.T) {
	tests := []struct {
		name      string
		ev        platform.Event
		wantScale float32
		wantEmit  bool
	}{
		{
			name:      "scale and screens",
			ev:        platform.Event{Kind: platform.EventDisplayChanged, Scale: 2, Screen: image.Pt(3840, 2160), Available: image.Pt(3840, 2100)},
			wantScale: 2,
			wantEmit:  true,
		},
		{
			name:      "zero scale keeps factor",
			ev:        platform.Event{Kind: platform.EventDisplayChanged, Screen: image.Pt(2560, 1440)},
			wantScale: 1,
			wantEmit:  true,
		},
		{
			name:      "no change is silent",
			ev:        platform.Event{Kind: platform.EventDisplayChanged, Scale: 1},
			wantScale: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New(initial(1))
			out, intent := tr.Translate(nil, tt.ev, 1)
			if intent != IntentNone {
				t.Fatalf("intent = %v, want none", intent)
			}
			vp := tr.Viewport()
			if vp.HiDPIScale != tt.wantScale || vp.Size != image.Pt(320, 240) {
				t.Fatalf("viewport = %v, want 320x240@%v", vp, tt.wantScale)
			}
			if !tt.wantEmit {
				if len(out) != 0 {
					t.Fatalf("events = %v, want none", out)
				}
				return
			}
			if len(out) != 1 || out[0] != engine.WindowResize(vp) {
				t.Fatalf("events = %v, want one WindowResize(%v)", out, vp)
			}
			if tt.ev.Screen != (image.Point{}) && vp.Screen != tt.ev.Screen {
				t.Fatalf("screen = %v, want %v", vp.Screen, tt.ev.Screen)
			}
		})
	}
}
