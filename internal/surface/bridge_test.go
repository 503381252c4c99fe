package surface

import (
	"errors"
	"image"
	"image/color"
	"runtime"
	"testing"

	"github.com/1broseidon/webshim/internal/engine"
	"github.com/1broseidon/webshim/internal/engine/enginetest"
)

type fakeContext struct {
	bound    map[TextureID]bool
	next     TextureID
	blitErr  error
	bindErr  error
	lastDst  image.Point
	lastSrc  image.Point
	released bool
}

func newFakeContext() *fakeContext {
	return &fakeContext{bound: make(map[TextureID]bool)}
}

func (c *fakeContext) BindSurface(engine.Surface) (TextureID, error) {
	if c.bindErr != nil {
		return 0, c.bindErr
	}
	c.next++
	c.bound[c.next] = true
	return c.next, nil
}

func (c *fakeContext) Blit(_ TextureID, src, dst image.Point) error {
	c.lastSrc, c.lastDst = src, dst
	return c.blitErr
}

func (c *fakeContext) DeleteTexture(tex TextureID) { delete(c.bound, tex) }
func (c *fakeContext) Release()                    { c.released = true }

func TestPresentFrame_BalancedLeases(t *testing.T) {
	tests := []struct {
		name    string
		blitErr error
		bindErr error
		wantErr error
	}{
		{name: "ok"},
		{name: "blit fails", blitErr: errors.New("gl error"), wantErr: ErrBlit},
		{name: "bind fails", bindErr: errors.New("no texture units")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newFakeContext()
			ctx.blitErr = tt.blitErr
			ctx.bindErr = tt.bindErr
			eng := enginetest.New()
			b := NewBridge(ctx, eng, nil)

			for i := 0; i < 3; i++ {
				err := b.PresentFrame(image.Pt(800, 600))
				if tt.blitErr == nil && tt.bindErr == nil && err != nil {
					t.Fatalf("PresentFrame: %v", err)
				}
				if (tt.blitErr != nil || tt.bindErr != nil) && err == nil {
					t.Fatal("PresentFrame error = nil, want failure")
				}
				if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
					t.Fatalf("PresentFrame error = %v, want %v", err, tt.wantErr)
				}
			}

			acq, rel := eng.Leases()
			if acq != 3 || rel != 3 {
				t.Fatalf("engine leases = %d/%d, want 3/3", acq, rel)
			}
			acq, rel = b.Leases()
			if acq != rel {
				t.Fatalf("bridge leases = %d/%d, want balanced", acq, rel)
			}
			if len(ctx.bound) != 0 {
				t.Fatalf("%d textures still bound", len(ctx.bound))
			}
			if b.BindingOpen() {
				t.Fatal("binding open after PresentFrame")
			}
		})
	}
}

func TestPresentFrame_BlitsPhysicalSize(t *testing.T) {
	ctx := newFakeContext()
	eng := enginetest.New()
	eng.Frame.Size = image.Pt(1600, 1200)
	b := NewBridge(ctx, eng, nil)

	if err := b.PresentFrame(image.Pt(800, 600)); err != nil {
		t.Fatalf("PresentFrame: %v", err)
	}
	if ctx.lastDst != image.Pt(800, 600) {
		t.Fatalf("blit dst = %v, want (800,600)", ctx.lastDst)
	}
	if ctx.lastSrc != image.Pt(1600, 1200) {
		t.Fatalf("blit src = %v, want surface size", ctx.lastSrc)
	}
}

func TestPresentFrame_NoFrame(t *testing.T) {
	eng := enginetest.New()
	eng.Frame = engine.Surface{}
	b := NewBridge(newFakeContext(), eng, nil)

	err := b.PresentFrame(image.Pt(10, 10))
	if !errors.Is(err, engine.ErrNoFrame) {
		t.Fatalf("err = %v, want ErrNoFrame", err)
	}
	if acq, rel := eng.Leases(); acq != 0 || rel != 0 {
		t.Fatalf("leases = %d/%d, want 0/0", acq, rel)
	}
}

func TestAcquire_TwiceIsProtocolError(t *testing.T) {
	eng := enginetest.New()
	b := NewBridge(newFakeContext(), eng, nil)

	s, err := b.AcquireFrontSurface()
	if err != nil {
		t.Fatalf("AcquireFrontSurface: %v", err)
	}
	if _, err := b.AcquireFrontSurface(); !errors.Is(err, ErrProtocol) {
		t.Fatalf("second acquire err = %v, want ErrProtocol", err)
	}
	tex, err := b.BindAsTexture(s)
	if err != nil {
		t.Fatalf("BindAsTexture: %v", err)
	}
	if _, err := b.BindAsTexture(s); !errors.Is(err, ErrProtocol) {
		t.Fatalf("second bind err = %v, want ErrProtocol", err)
	}
	if err := b.Close(); !errors.Is(err, ErrProtocol) {
		t.Fatalf("Close with open binding err = %v, want ErrProtocol", err)
	}
	if err := b.ReleaseTexture(tex, s); err != nil {
		t.Fatalf("ReleaseTexture: %v", err)
	}
	if err := b.ReleaseTexture(tex, s); !errors.Is(err, ErrProtocol) {
		t.Fatalf("double release err = %v, want ErrProtocol", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := b.AcquireFrontSurface(); !errors.Is(err, ErrClosed) {
		t.Fatalf("acquire after close err = %v, want ErrClosed", err)
	}
}

func TestBridge_NotInitialized(t *testing.T) {
	b := NewBridge(nil, nil, nil)
	var opErr *engine.OpError
	if _, err := b.AcquireFrontSurface(); !errors.As(err, &opErr) || !errors.Is(err, engine.ErrNotInitialized) {
		t.Fatalf("err = %v, want ErrNotInitialized", err)
	}
}

func TestBridge_WrongThread(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("thread ids are only checked on linux")
	}
	b := NewBridge(newFakeContext(), enginetest.New(), nil)

	pinned := make(chan struct{})
	done := make(chan struct{})
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		b.Pin()
		close(pinned)
		// Hold the thread so the test goroutine cannot land on it.
		<-done
	}()
	<-pinned

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	_, err := b.AcquireFrontSurface()
	close(done)
	if !errors.Is(err, engine.ErrWrongThread) {
		t.Fatalf("err = %v, want ErrWrongThread", err)
	}
}

func TestSoftwareContext_ScalesIntoTarget(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			src.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	target := &RGBATarget{}
	ctx := NewSoftwareContext(target)
	eng := enginetest.New()
	eng.Frame = engine.Surface{ID: 7, Size: image.Pt(2, 2), Pixels: src}
	b := NewBridge(ctx, eng, nil)

	if err := b.PresentFrame(image.Pt(8, 6)); err != nil {
		t.Fatalf("PresentFrame: %v", err)
	}
	img := target.Image()
	if img == nil || img.Bounds().Size() != image.Pt(8, 6) {
		t.Fatalf("framebuffer = %v, want 8x6", img)
	}
	if got := img.RGBAAt(4, 3); got.R != 255 {
		t.Fatalf("center pixel = %v, want red", got)
	}
	if ctx.Live() != 0 {
		t.Fatalf("live textures = %d, want 0", ctx.Live())
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := ctx.BindSurface(eng.Frame); !errors.Is(err, ErrClosed) {
		t.Fatalf("bind after release err = %v, want ErrClosed", err)
	}
}
