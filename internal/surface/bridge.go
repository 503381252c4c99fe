// Package surface copies engine frames into the window's framebuffer.
//
// A frame is leased from the engine, bound as a transient texture on the
// window's native context, blitted, and handed back, all within a single
// redraw. Every method must run on the host thread that owns the context.
package surface

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/1broseidon/webshim/internal/engine"
)

var (
	// ErrProtocol marks lease/binding invariant violations. Callers must
	// treat it as fatal.
	ErrProtocol = errors.New("surface: protocol violation")

	// ErrBlit wraps context errors raised while copying a frame.
	ErrBlit = errors.New("surface: blit failed")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("surface: bridge closed")
)

// TextureID names a transient texture on a Context.
type TextureID uint32

// Context is the window-side native context the bridge draws with.
type Context interface {
	// BindSurface creates a texture view over the surface's pixels.
	BindSurface(s engine.Surface) (TextureID, error)
	// Blit copies the texture into the default framebuffer, scaling src to dst.
	Blit(tex TextureID, src, dst image.Point) error
	// DeleteTexture destroys a texture created by BindSurface.
	DeleteTexture(tex TextureID)
	// Release frees framebuffer resources held by the context.
	Release()
}

// Source is the engine side of the lease.
type Source interface {
	FrontSurface() (engine.Surface, error)
	ReleaseSurface(engine.Surface)
}

// Binding is the live association between the window context, the engine
// and at most one texture.
type Binding struct {
	Context Context
	Device  Source
	Texture *TextureID

	surface engine.Surface
	leased  bool
}

// Bridge owns the Binding for the lifetime of the window.
type Bridge struct {
	binding  Binding
	logger   *slog.Logger
	thread   affinity
	acquired int
	released int
	closed   bool
}

// NewBridge binds a native context to an engine surface source.
func NewBridge(ctx Context, src Source, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		binding: Binding{Context: ctx, Device: src},
		logger:  logger,
	}
}

// Pin records the calling OS thread as the only one allowed to use the
// bridge. The caller must have locked its goroutine to the thread.
func (b *Bridge) Pin() {
	b.thread.pin()
}

func (b *Bridge) check(op string) error {
	if err := b.thread.check(op); err != nil {
		return err
	}
	if b.closed {
		return fmt.Errorf("%s: %w", op, ErrClosed)
	}
	if b.binding.Context == nil || b.binding.Device == nil {
		return &engine.OpError{Op: op, Err: engine.ErrNotInitialized}
	}
	return nil
}

// AcquireFrontSurface leases the engine's current frame.
func (b *Bridge) AcquireFrontSurface() (engine.Surface, error) {
	if err := b.check("acquire front surface"); err != nil {
		return engine.Surface{}, err
	}
	if b.binding.leased {
		return engine.Surface{}, fmt.Errorf("%w: surface %d acquired again before release", ErrProtocol, b.binding.surface.ID)
	}
	s, err := b.binding.Device.FrontSurface()
	if err != nil {
		return engine.Surface{}, fmt.Errorf("acquire front surface: %w", err)
	}
	b.binding.surface = s
	b.binding.leased = true
	b.acquired++
	return s, nil
}

// BindAsTexture creates the transient texture for a leased surface.
func (b *Bridge) BindAsTexture(s engine.Surface) (TextureID, error) {
	if err := b.check("bind texture"); err != nil {
		return 0, err
	}
	if b.binding.Texture != nil {
		return 0, fmt.Errorf("%w: texture %d still bound", ErrProtocol, *b.binding.Texture)
	}
	if !b.binding.leased || s.ID != b.binding.surface.ID {
		return 0, fmt.Errorf("%w: binding surface %d that is not leased", ErrProtocol, s.ID)
	}
	tex, err := b.binding.Context.BindSurface(s)
	if err != nil {
		return 0, fmt.Errorf("bind surface %d: %w", s.ID, err)
	}
	b.binding.Texture = &tex
	return tex, nil
}

// Blit copies the bound texture into the framebuffer.
func (b *Bridge) Blit(tex TextureID, src, dst image.Point) error {
	if err := b.check("blit"); err != nil {
		return err
	}
	if b.binding.Texture == nil || *b.binding.Texture != tex {
		return fmt.Errorf("%w: blit from unbound texture %d", ErrProtocol, tex)
	}
	if err := b.binding.Context.Blit(tex, src, dst); err != nil {
		return fmt.Errorf("%w: %v -> %v: %w", ErrBlit, src, dst, err)
	}
	return nil
}

// ReleaseTexture deletes the texture (if any) and returns the surface to
// the engine pool.
func (b *Bridge) ReleaseTexture(tex TextureID, s engine.Surface) error {
	if err := b.thread.check("release texture"); err != nil {
		return err
	}
	if b.binding.Texture != nil {
		if *b.binding.Texture != tex {
			return fmt.Errorf("%w: releasing texture %d, bound is %d", ErrProtocol, tex, *b.binding.Texture)
		}
		b.binding.Context.DeleteTexture(tex)
		b.binding.Texture = nil
	}
	if !b.binding.leased {
		return fmt.Errorf("%w: releasing surface %d without a lease", ErrProtocol, s.ID)
	}
	b.binding.Device.ReleaseSurface(s)
	b.binding.leased = false
	b.binding.surface = engine.Surface{}
	b.released++
	return nil
}

// PresentFrame runs acquire, bind, blit and release for one redraw. The
// release runs on every path once the surface has been acquired.
func (b *Bridge) PresentFrame(dst image.Point) (err error) {
	s, err := b.AcquireFrontSurface()
	if err != nil {
		return err
	}

	var tex TextureID
	defer func() {
		if rerr := b.ReleaseTexture(tex, s); rerr != nil {
			err = errors.Join(err, rerr)
		}
	}()

	tex, err = b.BindAsTexture(s)
	if err != nil {
		return err
	}
	return b.Blit(tex, s.Size, dst)
}

// BindingOpen reports whether a surface is leased or a texture is bound.
func (b *Bridge) BindingOpen() bool {
	return b.binding.leased || b.binding.Texture != nil
}

// Leases returns the acquire and release counts.
func (b *Bridge) Leases() (acquired, released int) {
	return b.acquired, b.released
}

// Close releases the context's framebuffer resources. It fails if a binding
// is still open.
func (b *Bridge) Close() error {
	if b.closed {
		return nil
	}
	if err := b.thread.check("close bridge"); err != nil {
		return err
	}
	if b.BindingOpen() {
		return fmt.Errorf("%w: closing with surface %d still leased", ErrProtocol, b.binding.surface.ID)
	}
	if b.binding.Context != nil {
		b.binding.Context.Release()
	}
	b.closed = true
	b.logger.Debug("surface bridge closed", "acquired", b.acquired, "released", b.released)
	return nil
}
