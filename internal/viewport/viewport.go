// Package viewport converts window-manager geometry into the device-pixel
// rectangle the engine renders into.
package viewport

import (
	"fmt"
	"image"
	"math"
)

// Unit describes how a toolkit reports window sizes.
type Unit int

const (
	// Physical sizes are already device pixels (X11, headless).
	Physical Unit = iota
	// Logical sizes must be multiplied by the hidpi scale.
	Logical
)

func (u Unit) String() string {
	switch u {
	case Physical:
		return "physical"
	case Logical:
		return "logical"
	default:
		return fmt.Sprintf("unit(%d)", int(u))
	}
}

// Viewport is the device-pixel rectangle handed to the engine.
type Viewport struct {
	Origin          image.Point `json:"origin"`
	Size            image.Point `json:"size"`
	HiDPIScale      float32     `json:"hidpi_scale"`
	Screen          image.Point `json:"screen_size"`
	AvailableScreen image.Point `json:"available_screen_size"`
}

// ToDeviceRect converts a window size into a Viewport. It reports false for
// degenerate input (width or height <= 0); callers must skip the update.
func ToDeviceRect(windowSize image.Point, scale float32, unit Unit) (Viewport, bool) {
	if windowSize.X <= 0 || windowSize.Y <= 0 {
		return Viewport{}, false
	}
	if scale <= 0 {
		scale = 1
	}

	size := windowSize
	if unit == Logical {
		size = image.Pt(scaleDim(windowSize.X, scale), scaleDim(windowSize.Y, scale))
		if size.X <= 0 || size.Y <= 0 {
			return Viewport{}, false
		}
	}

	return Viewport{
		Size:       size,
		HiDPIScale: scale,
	}, true
}

func scaleDim(v int, scale float32) int {
	return int(math.Floor(float64(v)*float64(scale) + 0.5))
}

// Rect returns the viewport as an image.Rectangle.
func (v Viewport) Rect() image.Rectangle {
	return image.Rectangle{Min: v.Origin, Max: v.Origin.Add(v.Size)}
}

// Empty reports whether the viewport has no renderable area.
func (v Viewport) Empty() bool {
	return v.Size.X <= 0 || v.Size.Y <= 0
}

// WithScreens returns a copy carrying the given screen metrics.
func (v Viewport) WithScreens(screen, available image.Point) Viewport {
	v.Screen = screen
	v.AvailableScreen = available
	return v
}

func (v Viewport) String() string {
	return fmt.Sprintf("%dx%d@%v+%d+%d", v.Size.X, v.Size.Y, v.HiDPIScale, v.Origin.X, v.Origin.Y)
}
