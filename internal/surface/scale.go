package surface

import (
	"image"

	"golang.org/x/image/draw"
)

// ScaleInto copies src into r of dst. Equal sizes use a straight copy;
// anything else is resampled bilinearly.
func ScaleInto(dst draw.Image, r image.Rectangle, src image.Image) {
	if src == nil || r.Empty() {
		return
	}
	sb := src.Bounds()
	if sb.Dx() == r.Dx() && sb.Dy() == r.Dy() {
		draw.Draw(dst, r, src, sb.Min, draw.Src)
		return
	}
	draw.ApproxBiLinear.Scale(dst, r, src, sb, draw.Src, nil)
}
