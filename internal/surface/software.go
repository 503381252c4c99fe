package surface

import (
	"fmt"
	"image"
	"image/color"

	"github.com/1broseidon/webshim/internal/engine"
	"golang.org/x/image/draw"
)

// Target supplies the framebuffer a SoftwareContext blits into, sized to
// the blit destination.
type Target interface {
	Framebuffer(size image.Point) draw.Image
}

// SoftwareContext is a CPU Context: textures are views over the surface
// pixels and blits are image copies.
type SoftwareContext struct {
	target   Target
	next     TextureID
	textures map[TextureID]image.Image
	released bool
}

var _ Context = (*SoftwareContext)(nil)

// NewSoftwareContext returns a context drawing into target.
func NewSoftwareContext(target Target) *SoftwareContext {
	return &SoftwareContext{target: target, textures: make(map[TextureID]image.Image)}
}

func (c *SoftwareContext) BindSurface(s engine.Surface) (TextureID, error) {
	if c.released {
		return 0, ErrClosed
	}
	if s.Pixels == nil {
		return 0, fmt.Errorf("surface %d has no pixels", s.ID)
	}
	c.next++
	c.textures[c.next] = s.Pixels
	return c.next, nil
}

func (c *SoftwareContext) Blit(tex TextureID, src, dst image.Point) error {
	img, ok := c.textures[tex]
	if !ok {
		return fmt.Errorf("unknown texture %d", tex)
	}
	if dst.X <= 0 || dst.Y <= 0 {
		return fmt.Errorf("empty destination %v", dst)
	}
	fb := c.target.Framebuffer(dst)
	if fb == nil {
		return fmt.Errorf("no framebuffer for %v", dst)
	}
	r := image.Rectangle{Max: dst}
	draw.Draw(fb, fb.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	sub := img
	if b := img.Bounds(); src.X > 0 && src.Y > 0 && (b.Dx() > src.X || b.Dy() > src.Y) {
		if si, ok := img.(interface {
			SubImage(image.Rectangle) image.Image
		}); ok {
			sub = si.SubImage(image.Rectangle{Min: b.Min, Max: b.Min.Add(src)})
		}
	}
	ScaleInto(fb, r, sub)
	return nil
}

func (c *SoftwareContext) DeleteTexture(tex TextureID) {
	delete(c.textures, tex)
}

func (c *SoftwareContext) Release() {
	c.released = true
	clear(c.textures)
}

// Live returns the number of textures not yet deleted.
func (c *SoftwareContext) Live() int {
	return len(c.textures)
}

// RGBATarget is an in-memory Target backed by *image.RGBA.
type RGBATarget struct {
	img *image.RGBA
}

func (t *RGBATarget) Framebuffer(size image.Point) draw.Image {
	if t.img == nil || t.img.Bounds().Size() != size {
		t.img = image.NewRGBA(image.Rectangle{Max: size})
	}
	return t.img
}

// Image returns the last framebuffer, or nil before the first blit.
func (t *RGBATarget) Image() *image.RGBA {
	return t.img
}
