// Package loop drives one window: it pumps native events through the
// translator into the engine, drains engine notifications through the
// lifecycle controller, and presents frames.
package loop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/1broseidon/webshim/internal/engine"
	"github.com/1broseidon/webshim/internal/lifecycle"
	"github.com/1broseidon/webshim/internal/platform"
	"github.com/1broseidon/webshim/internal/surface"
	"github.com/1broseidon/webshim/internal/translate"
	"github.com/1broseidon/webshim/internal/viewport"
	"github.com/1broseidon/webshim/internal/wake"
)

// maxDrainRounds bounds how many follow-up batches one iteration submits
// before leaving the rest of the outbound queue to the next iteration. The
// loop wakes itself so that iteration happens even in Wait mode.
const maxDrainRounds = 16

// ErrEmptyURL is returned by RequestNavigate for an empty URL.
var ErrEmptyURL = errors.New("loop: empty url")

// Options configures a Driver.
type Options struct {
	Host                 lifecycle.Host
	ExitOnLastViewClosed bool
	Logger               *slog.Logger
}

// Driver owns the engine, the window and everything between them for the
// lifetime of one window.
type Driver struct {
	eng    engine.Engine
	win    platform.Window
	host   *Host
	bridge *surface.Bridge
	ctrl   *lifecycle.Controller
	tr     *translate.Translator
	sched  wake.Scheduler
	logger *slog.Logger

	closeReq atomic.Bool
	navReq   atomic.Pointer[string]
	status   atomic.Pointer[Status]

	frames    uint64
	dropped   uint64
	submits   uint64
	wakes     uint64
	startedAt time.Time
}

// InitialViewport derives the starting viewport from a window.
func InitialViewport(win platform.Window) viewport.Viewport {
	vp, ok := viewport.ToDeviceRect(win.Size(), win.ScaleFactor(), viewport.Physical)
	if !ok {
		vp = viewport.Viewport{HiDPIScale: win.ScaleFactor()}
	}
	screen, available := win.Screens()
	return vp.WithScreens(screen, available)
}

// New wires a driver. host must be the Embedder the engine was created with.
func New(host *Host, eng engine.Engine, win platform.Window, opts Options) *Driver {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	vp := InitialViewport(win)
	d := &Driver{
		eng:       eng,
		win:       win,
		host:      host,
		tr:        translate.New(vp),
		logger:    logger,
		startedAt: time.Now(),
	}
	host.setCoordinates(vp)
	d.bridge = surface.NewBridge(win.Context(), eng, logger)
	d.ctrl = lifecycle.New(eng, d.bridge, win.Waker(), lifecycle.Options{
		Host:                 opts.Host,
		Chrome:               win,
		Coordinates:          d.tr.Viewport,
		ExitOnLastViewClosed: opts.ExitOnLastViewClosed,
		Logger:               logger,
	})
	d.publish()
	return d
}

// Run pumps the window until the lifecycle reaches Terminated. Cancelling
// ctx is a close request. Run locks the calling goroutine to its OS thread.
func (d *Driver) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	d.bridge.Pin()
	d.eng.RegisterWakeCallback(d.win.Waker().Wake)
	stop := context.AfterFunc(ctx, d.RequestClose)
	defer stop()

	d.logger.Info("event loop started", "viewport", d.tr.Viewport().String())
	for d.ctrl.State() != lifecycle.Terminated {
		ev, err := d.win.NextEvent(ctx, d.sched.Mode())
		if err != nil {
			if ctx.Err() == nil && !errors.Is(err, platform.ErrWindowClosed) {
				return fmt.Errorf("wait for native event: %w", err)
			}
			ev = platform.Event{Kind: platform.EventCloseRequested}
		}
		if err := d.Step(ev); err != nil {
			return err
		}
	}

	s := d.Status()
	d.logger.Info("event loop finished", "frames", s.Frames, "dropped", s.Dropped, "submits", s.Submits)
	return nil
}

// Step processes one native event to completion. Only ErrProtocol-class
// failures are returned; per-frame failures are logged.
func (d *Driver) Step(ev platform.Event) error {
	if !d.ctrl.Accepting() {
		return nil
	}
	if d.win.Waker().Consume() || ev.Kind == platform.EventWake {
		d.wakes++
	}

	var pending []engine.InputEvent
	if url := d.navReq.Swap(nil); url != nil {
		if top := d.ctrl.Top(); top != 0 {
			pending = append(pending, engine.LoadURL(top, *url))
		} else {
			d.logger.Warn("navigate without an open view", "url", *url)
		}
	}

	before := d.tr.Viewport()
	pending, intent := d.tr.Translate(pending, ev, d.ctrl.Top())
	if vp := d.tr.Viewport(); vp != before {
		d.host.setCoordinates(vp)
		d.logger.Debug("viewport changed", "viewport", vp.String())
	}

	if intent == translate.IntentClose || d.closeReq.Swap(false) {
		d.logger.Info("close requested", "dropped_events", len(pending))
		if len(pending) > 0 {
			d.logger.Debug("input dropped by close", "events", inputKinds(pending))
		}
		err := d.ctrl.Shutdown()
		d.publish()
		return err
	}

	present := intent == translate.IntentRedraw
	if len(pending) > 0 {
		present = d.submit(pending) || present
	}

	ready, err := d.drain()
	if err != nil {
		d.publish()
		return err
	}
	if d.ctrl.State() != lifecycle.Running {
		d.publish()
		return nil
	}
	present = present || ready

	animating := d.host.Animating()
	d.sched.Observe(animating)
	if present || animating {
		if err := d.present(); err != nil {
			d.publish()
			return err
		}
	}
	d.publish()
	return nil
}

func (d *Driver) submit(batch []engine.InputEvent) bool {
	if !d.ctrl.Accepting() {
		return false
	}
	d.submits++
	return d.eng.SubmitEvents(batch)
}

// drain empties the outbound queue. Controller responses are submitted as
// one follow-up batch per round and the queue is drained again.
func (d *Driver) drain() (bool, error) {
	present := false
	for round := 0; ; round++ {
		var follow []engine.InputEvent
		for {
			n, ok := d.eng.PollOutbound()
			if !ok {
				break
			}
			if n.Kind == engine.NotifyAnimationStateChanged {
				d.host.SetAnimationState(n.Animating)
				continue
			}
			res, err := d.ctrl.Handle(n)
			if err != nil {
				return present, err
			}
			if res.Stop {
				return present, nil
			}
			present = present || res.Present
			follow = append(follow, res.Events...)
		}
		if len(follow) == 0 {
			return present, nil
		}
		present = d.submit(follow) || present
		if round+1 >= maxDrainRounds {
			d.logger.Warn("outbound drain did not settle", "rounds", maxDrainRounds)
			d.win.Waker().Wake()
			return present, nil
		}
	}
}

func inputKinds(batch []engine.InputEvent) []string {
	kinds := make([]string, len(batch))
	for i, ev := range batch {
		kinds[i] = ev.Kind.String()
	}
	return kinds
}

func (d *Driver) present() error {
	d.eng.Present()
	dst := d.tr.Viewport().Size
	if err := d.bridge.PresentFrame(dst); err != nil {
		if errors.Is(err, surface.ErrProtocol) {
			return err
		}
		d.dropped++
		if errors.Is(err, engine.ErrNoFrame) {
			d.logger.Debug("present skipped", "error", err)
		} else {
			d.logger.Warn("frame dropped", "error", err)
		}
		return nil
	}
	if err := d.win.SwapBuffers(); err != nil {
		d.dropped++
		d.logger.Warn("swap buffers failed", "error", err)
		return nil
	}
	d.frames++
	return nil
}

// RequestClose asks the loop to run the shutdown sequence. Safe from any
// goroutine; pending input of the iteration that observes it is dropped.
func (d *Driver) RequestClose() {
	d.closeReq.Store(true)
	d.win.Waker().Wake()
}

// RequestNavigate asks the top view to load url. Safe from any goroutine.
func (d *Driver) RequestNavigate(url string) error {
	if url == "" {
		return ErrEmptyURL
	}
	d.navReq.Store(&url)
	d.win.Waker().Wake()
	return nil
}

// Done is closed once the lifecycle reaches Terminated.
func (d *Driver) Done() <-chan struct{} {
	return d.ctrl.Done()
}

// Status returns the latest published snapshot.
func (d *Driver) Status() Status {
	return *d.status.Load()
}

func (d *Driver) publish() {
	top := d.ctrl.Top()
	d.status.Store(&Status{
		State:     d.ctrl.State().String(),
		Mode:      d.sched.Mode().String(),
		Viewport:  d.tr.Viewport(),
		Views:     d.ctrl.Views(),
		Top:       top,
		Title:     d.ctrl.Title(top),
		URL:       d.ctrl.URL(top),
		Animating: d.host.Animating(),
		Frames:    d.frames,
		Dropped:   d.dropped,
		Submits:   d.submits,
		Wakes:     d.wakes,
		StartedAt: d.startedAt,
	})
}
