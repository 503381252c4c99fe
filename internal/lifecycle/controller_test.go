package lifecycle

import (
	"errors"
	"image"
	"reflect"
	"testing"

	"github.com/1broseidon/webshim/internal/engine"
	"github.com/1broseidon/webshim/internal/engine/enginetest"
	"github.com/1broseidon/webshim/internal/platform"
	"github.com/1broseidon/webshim/internal/surface"
	"github.com/1broseidon/webshim/internal/viewport"
	"github.com/1broseidon/webshim/internal/wake"
)

type chrome struct {
	cursors []platform.CursorIcon
	titles  []string
}

func (c *chrome) SetCursor(i platform.CursorIcon) { c.cursors = append(c.cursors, i) }
func (c *chrome) SetTitle(t string)               { c.titles = append(c.titles, t) }

var testViewport = viewport.Viewport{Size: image.Pt(800, 600), HiDPIScale: 2}

func newController(t *testing.T, opts Options) (*Controller, *enginetest.Recorder, *chrome) {
	t.Helper()
	eng := enginetest.New()
	ch := &chrome{}
	opts.Chrome = ch
	if opts.Coordinates == nil {
		opts.Coordinates = func() viewport.Viewport { return testViewport }
	}
	c := New(eng, nil, wake.NewWaker(nil), opts)
	return c, eng, ch
}

func TestHandle_ViewOpenedTakesOver(t *testing.T) {
	c, _, _ := newController(t, Options{})
	res, err := c.Handle(engine.Notification{Kind: engine.NotifyViewOpened, View: 7})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	want := []engine.InputEvent{
		engine.Focus(7),
		engine.MoveResizeView(7, image.Rect(0, 0, 800, 600)),
		engine.RaiseToTop(7),
	}
	if !reflect.DeepEqual(res.Events, want) {
		t.Fatalf("events = %v, want %v", res.Events, want)
	}
	if c.Top() != 7 {
		t.Fatalf("Top() = %d, want 7", c.Top())
	}
}

func TestHandle_ViewClosedRefocuses(t *testing.T) {
	c, _, _ := newController(t, Options{})
	for _, v := range []engine.ViewHandle{1, 2, 3} {
		c.Handle(engine.Notification{Kind: engine.NotifyViewOpened, View: v})
	}

	res, _ := c.Handle(engine.Notification{Kind: engine.NotifyViewClosed, View: 2})
	if len(res.Events) != 0 || c.Top() != 3 {
		t.Fatalf("closing a background view: events=%v top=%d", res.Events, c.Top())
	}

	res, _ = c.Handle(engine.Notification{Kind: engine.NotifyViewClosed, View: 3})
	if len(res.Events) != 3 || res.Events[0] != engine.Focus(1) {
		t.Fatalf("closing top: events = %v, want takeover of 1", res.Events)
	}
	if !reflect.DeepEqual(c.Views(), []engine.ViewHandle{1}) {
		t.Fatalf("Views() = %v", c.Views())
	}
}

func TestHandle_LastViewClosed(t *testing.T) {
	tests := []struct {
		name      string
		exit      bool
		wantState State
	}{
		{"keeps running", false, Running},
		{"exits", true, Terminated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, eng, _ := newController(t, Options{ExitOnLastViewClosed: tt.exit})
			c.Handle(engine.Notification{Kind: engine.NotifyViewOpened, View: 1})
			res, err := c.Handle(engine.Notification{Kind: engine.NotifyViewClosed, View: 1})
			if err != nil {
				t.Fatalf("Handle: %v", err)
			}
			if c.State() != tt.wantState || res.Stop != tt.exit {
				t.Fatalf("state = %v stop = %v", c.State(), res.Stop)
			}
			if tt.exit && eng.Shutdowns() != 1 {
				t.Fatalf("engine shutdowns = %d, want 1", eng.Shutdowns())
			}
		})
	}
}

func TestHandle_Navigation(t *testing.T) {
	tests := []struct {
		name string
		host Host
		url  string
		want bool
	}{
		{"default allows", nil, "https://example.com/", true},
		{"denied pattern", PolicyHost{NavigationPolicy: PatternPolicy{Default: true, Deny: []string{"https://blocked.test/**"}}}, "https://blocked.test/a/b", false},
		{"allow list", PolicyHost{NavigationPolicy: PatternPolicy{Allow: []string{"https://*.example.com/**"}}}, "https://docs.example.com/x", true},
		{"default deny", PolicyHost{NavigationPolicy: PatternPolicy{Allow: []string{"https://*.example.com/**"}}}, "https://other.test/", false},
		{"deny beats allow", PolicyHost{NavigationPolicy: PatternPolicy{Allow: []string{"**"}, Deny: []string{"file://**"}}}, "file:///etc/passwd", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, _ := newController(t, Options{Host: tt.host})
			res, err := c.Handle(engine.Notification{Kind: engine.NotifyNavigationRequested, View: 4, URL: tt.url})
			if err != nil {
				t.Fatalf("Handle: %v", err)
			}
			want := []engine.InputEvent{engine.AllowNavigation(4, tt.url, tt.want)}
			if !reflect.DeepEqual(res.Events, want) {
				t.Fatalf("events = %v, want %v", res.Events, want)
			}
		})
	}
}

func TestValidatePatterns(t *testing.T) {
	if err := ValidatePatterns([]string{"https://**", "*.test"}); err != nil {
		t.Fatalf("valid patterns: %v", err)
	}
	var perr *PatternError
	if err := ValidatePatterns([]string{"ok", "[unclosed"}); !errors.As(err, &perr) || perr.Pattern != "[unclosed" {
		t.Fatalf("err = %v, want PatternError for [unclosed", err)
	}
}

func TestHandle_Cursor(t *testing.T) {
	c, _, ch := newController(t, Options{})
	c.Handle(engine.Notification{Kind: engine.NotifyCursorChanged, Cursor: engine.CursorPointer})
	c.Handle(engine.Notification{Kind: engine.NotifyCursorChanged, Cursor: engine.CursorZoomIn})
	if !reflect.DeepEqual(ch.cursors, []platform.CursorIcon{platform.CursorHand}) {
		t.Fatalf("cursors = %v, want [hand]", ch.cursors)
	}
}

func TestHandle_TitleOnlyForTop(t *testing.T) {
	c, _, ch := newController(t, Options{})
	c.Handle(engine.Notification{Kind: engine.NotifyViewOpened, View: 1})
	c.Handle(engine.Notification{Kind: engine.NotifyViewOpened, View: 2})
	c.Handle(engine.Notification{Kind: engine.NotifyTitleChanged, View: 1, Title: "background"})
	c.Handle(engine.Notification{Kind: engine.NotifyTitleChanged, View: 2, Title: "front"})
	if !reflect.DeepEqual(ch.titles, []string{"front"}) {
		t.Fatalf("titles = %v, want [front]", ch.titles)
	}
	c.Handle(engine.Notification{Kind: engine.NotifyViewClosed, View: 2})
	if got := ch.titles[len(ch.titles)-1]; got != "background" {
		t.Fatalf("title after refocus = %q, want background", got)
	}
}

func TestHandle_ReadyAndUnhandled(t *testing.T) {
	c, _, _ := newController(t, Options{})
	res, _ := c.Handle(engine.Notification{Kind: engine.NotifyReadyToPresent})
	if !res.Present {
		t.Fatal("ReadyToPresent did not request a present")
	}
	res, err := c.Handle(engine.Notification{Kind: engine.NotificationKind(99)})
	if err != nil || res.Present || len(res.Events) != 0 {
		t.Fatalf("unhandled notification: res=%+v err=%v", res, err)
	}
}

func TestShutdown_TerminatesOnce(t *testing.T) {
	c, eng, _ := newController(t, Options{})
	waker := c.waker

	for i := 0; i < 2; i++ {
		res, err := c.Handle(engine.Notification{Kind: engine.NotifyShutdown})
		if err != nil {
			t.Fatalf("Handle #%d: %v", i, err)
		}
		if !res.Stop {
			t.Fatalf("Handle #%d: Stop = false", i)
		}
	}
	if err := c.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	if c.State() != Terminated || c.Terminations() != 1 {
		t.Fatalf("state = %v terminations = %d", c.State(), c.Terminations())
	}
	if eng.Shutdowns() != 1 {
		t.Fatalf("engine shutdowns = %d, want 1", eng.Shutdowns())
	}
	if !waker.Closed() {
		t.Fatal("waker still open")
	}
	select {
	case <-c.Done():
	default:
		t.Fatal("Done not closed")
	}
	if c.Accepting() {
		t.Fatal("Accepting() after terminate")
	}
}

func TestShutdown_OpenBindingIsFatal(t *testing.T) {
	eng := enginetest.New()
	bridge := surface.NewBridge(surface.NewSoftwareContext(&surface.RGBATarget{}), eng, nil)
	if _, err := bridge.AcquireFrontSurface(); err != nil {
		t.Fatalf("AcquireFrontSurface: %v", err)
	}
	c := New(eng, bridge, wake.NewWaker(nil), Options{})

	_, err := c.Handle(engine.Notification{Kind: engine.NotifyShutdown})
	if !errors.Is(err, surface.ErrProtocol) {
		t.Fatalf("err = %v, want ErrProtocol", err)
	}
	if c.State() != ShuttingDown {
		t.Fatalf("state = %v, want shutting-down", c.State())
	}
	if eng.Shutdowns() != 0 {
		t.Fatal("engine shut down with a binding open")
	}
}
