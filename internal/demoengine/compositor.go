package demoengine

import (
	"image"
	"math"
	"time"

	"github.com/1broseidon/webshim/internal/engine"
	"github.com/1broseidon/webshim/internal/viewport"
	"github.com/gogpu/gg"
)

// buttonRect is the toggle button in device pixels.
func buttonRect(vp viewport.Viewport) image.Rectangle {
	s := vp.HiDPIScale
	if s <= 0 {
		s = 1
	}
	px := func(v float32) int { return int(v * s) }
	return image.Rect(px(24), px(24), px(24+160), px(24+48))
}

func (e *Engine) compositor() {
	defer close(e.done)

	dc := gg.NewContext(1, 1)
	defer dc.Close()

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-e.quit:
			return
		case <-e.dirty:
		case <-ticker.C:
			e.mu.Lock()
			animating := e.animating
			if animating {
				e.phase += e.interval.Seconds() * 2
			}
			e.mu.Unlock()
			if !animating {
				continue
			}
		}
		e.render(dc)
	}
}

type scene struct {
	vp        viewport.Viewport
	hover     bool
	animating bool
	phase     float64
	scroll    int
}

func (e *Engine) render(dc *gg.Context) {
	e.mu.Lock()
	sc := scene{vp: e.vp, hover: e.hover, animating: e.animating, phase: e.phase, scroll: e.scroll}
	e.mu.Unlock()

	if sc.vp.Empty() {
		return
	}
	if err := dc.Resize(sc.vp.Size.X, sc.vp.Size.Y); err != nil {
		e.logger.Warn("resize canvas", "error", err)
		return
	}
	if err := paint(dc, sc); err != nil {
		e.logger.Warn("render frame", "error", err)
		return
	}
	img, ok := dc.Image().(*image.RGBA)
	if !ok {
		return
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.nextID++
	e.front = &frame{id: e.nextID, img: img}
	queued := e.readyQueue
	if !queued {
		e.readyQueue = true
		e.outbound = append(e.outbound, engine.Notification{Kind: engine.NotifyReadyToPresent, View: View})
	}
	wake := e.wake
	e.mu.Unlock()

	if !queued && wake != nil {
		wake()
	}
}

func paint(dc *gg.Context, sc scene) error {
	w, h := float64(sc.vp.Size.X), float64(sc.vp.Size.Y)
	scale := float64(sc.vp.HiDPIScale)
	if scale <= 0 {
		scale = 1
	}

	dc.ClearWithColor(gg.Hex("#1e1e2e"))

	b := buttonRect(sc.vp)
	switch {
	case sc.animating:
		dc.SetHexColor("#a6e3a1")
	case sc.hover:
		dc.SetHexColor("#89b4fa")
	default:
		dc.SetHexColor("#585b70")
	}
	dc.DrawRoundedRectangle(float64(b.Min.X), float64(b.Min.Y), float64(b.Dx()), float64(b.Dy()), 8*scale)
	if err := dc.Fill(); err != nil {
		return err
	}

	hue := math.Mod(float64(sc.scroll)*0.05, 1)
	if hue < 0 {
		hue++
	}
	dc.SetRGB(0.95, 0.55+0.4*hue, 0.66)
	r := math.Min(w, h) / 8
	cx := w/2 + math.Cos(sc.phase)*w/4
	cy := h/2 + math.Sin(sc.phase)*h/4
	dc.DrawCircle(cx, cy, r)
	return dc.Fill()
}
