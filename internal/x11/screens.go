package x11

import (
	"fmt"
	"image"

	"github.com/1broseidon/webshim/internal/platform"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Monitor represents a physical display
type Monitor struct {
	ID     int
	Name   string
	Bounds image.Rectangle
}

// Monitors retrieves all active monitors using XRandR
func (c *Connection) Monitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		// Skip disabled CRTCs
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		if out, err := randr.GetOutputInfo(c.XUtil.Conn(), info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(out.Name)
		}

		monitors = append(monitors, Monitor{
			ID:     i,
			Name:   name,
			Bounds: image.Rect(int(info.X), int(info.Y), int(info.X)+int(info.Width), int(info.Y)+int(info.Height)),
		})
	}
	return monitors, nil
}

// ScreenMetrics returns the size of the monitor under the pointer and the
// part of it not covered by panels. It falls back to the root screen.
func (c *Connection) ScreenMetrics() (screen, available image.Point) {
	s := c.XUtil.Screen()
	return c.screenMetrics(image.Rect(0, 0, int(s.WidthInPixels), int(s.HeightInPixels)))
}

// screenMetrics is ScreenMetrics with an explicit root fallback; the setup
// screen info goes stale after a RandR change.
func (c *Connection) screenMetrics(bounds image.Rectangle) (screen, available image.Point) {

	if monitors, err := c.Monitors(); err == nil && len(monitors) > 0 {
		bounds = monitors[0].Bounds
		if mon := c.monitorForPointer(monitors); mon != nil {
			bounds = mon.Bounds
		}
	}

	usable := bounds
	if workArea, err := ewmh.WorkareaGet(c.XUtil); err == nil && len(workArea) > 0 {
		desktop := 0
		if current, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil && int(current) < len(workArea) {
			desktop = int(current)
		}
		wa := workArea[desktop]
		usable = clipToWorkArea(bounds, image.Rect(wa.X, wa.Y, wa.X+int(wa.Width), wa.Y+int(wa.Height)))
	}
	return bounds.Size(), usable.Size()
}

func (c *Connection) monitorForPointer(monitors []Monitor) *Monitor {
	pointer, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil
	}
	return monitorAt(monitors, image.Pt(int(pointer.RootX), int(pointer.RootY)))
}

func monitorAt(monitors []Monitor, p image.Point) *Monitor {
	for i := range monitors {
		if p.In(monitors[i].Bounds) {
			return &monitors[i]
		}
	}
	return nil
}

// clipToWorkArea intersects a monitor with the work area. A work area that
// misses the monitor leaves it unchanged.
func clipToWorkArea(monitor, workArea image.Rectangle) image.Rectangle {
	if isect := monitor.Intersect(workArea); !isect.Empty() {
		return isect
	}
	return monitor
}

// ScaleFactor derives the hidpi factor from the screen's physical size,
// rounded to the nearest quarter and never below 1.
func (c *Connection) ScaleFactor() float32 {
	s := c.XUtil.Screen()
	return scaleFromDPI(int(s.WidthInPixels), int(s.WidthInMillimeters))
}

func scaleFromDPI(px, mm int) float32 {
	if px <= 0 || mm <= 0 {
		return 1
	}
	dpi := float64(px) * 25.4 / float64(mm)
	scale := float32(int(dpi/96*4+0.5)) / 4
	if scale < 1 {
		return 1
	}
	return scale
}

// watchScreens subscribes to RandR screen changes on the root window.
func (w *Window) watchScreens() {
	conn := w.conn.XUtil.Conn()
	if err := randr.Init(conn); err != nil {
		w.logger.Debug("randr unavailable, screen changes not tracked", "error", err)
		return
	}
	randr.SelectInput(conn, w.conn.Root, randr.NotifyMaskScreenChange)
}

// screenChanged refreshes the scale and screen metrics after a RandR change.
func (w *Window) screenChanged(e randr.ScreenChangeNotifyEvent) (platform.Event, bool) {
	scale := changedScale(w.fixedScale, w.scale, e)
	screen, available := w.conn.screenMetrics(image.Rect(0, 0, int(e.Width), int(e.Height)))
	if scale == w.scale && screen == w.screen && available == w.available {
		return platform.Event{}, false
	}
	w.scale, w.screen, w.available = scale, screen, available
	w.logger.Info("display changed", "scale", scale, "screen", fmt.Sprintf("%dx%d", screen.X, screen.Y))
	return platform.Event{Kind: platform.EventDisplayChanged, Scale: scale, Screen: screen, Available: available}, true
}

// changedScale is the scale after a screen change. A scale fixed by
// configuration never follows the DPI.
func changedScale(fixed bool, current float32, e randr.ScreenChangeNotifyEvent) float32 {
	if fixed {
		return current
	}
	return scaleFromDPI(int(e.Width), int(e.Mwidth))
}
