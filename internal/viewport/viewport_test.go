package viewport

import (
	"image"
	"testing"
)

func TestToDeviceRect(t *testing.T) {
	tests := []struct {
		name   string
		size   image.Point
		scale  float32
		unit   Unit
		want   image.Point
		wantOK bool
	}{
		{"physical passes through", image.Pt(800, 600), 2, Physical, image.Pt(800, 600), true},
		{"logical is scaled", image.Pt(400, 300), 2, Logical, image.Pt(800, 600), true},
		{"fractional scale rounds", image.Pt(101, 51), 1.5, Logical, image.Pt(152, 77), true},
		{"zero scale treated as 1", image.Pt(640, 480), 0, Logical, image.Pt(640, 480), true},
		{"zero width rejected", image.Pt(0, 600), 1, Physical, image.Point{}, false},
		{"zero height rejected", image.Pt(800, 0), 1, Physical, image.Point{}, false},
		{"negative rejected", image.Pt(-5, 10), 1, Logical, image.Point{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vp, ok := ToDeviceRect(tt.size, tt.scale, tt.unit)
			if ok != tt.wantOK {
				t.Fatalf("ToDeviceRect(%v, %v, %v) ok = %v, want %v", tt.size, tt.scale, tt.unit, ok, tt.wantOK)
			}
			if !ok {
				if vp != (Viewport{}) {
					t.Fatalf("rejected input returned non-zero viewport %+v", vp)
				}
				return
			}
			if vp.Size != tt.want {
				t.Fatalf("size = %v, want %v", vp.Size, tt.want)
			}
		})
	}
}

func TestToDeviceRect_KeepsScale(t *testing.T) {
	vp, ok := ToDeviceRect(image.Pt(800, 600), 2, Physical)
	if !ok {
		t.Fatal("expected ok")
	}
	if vp.HiDPIScale != 2 {
		t.Fatalf("HiDPIScale = %v, want 2", vp.HiDPIScale)
	}
	if vp.Rect() != image.Rect(0, 0, 800, 600) {
		t.Fatalf("Rect() = %v", vp.Rect())
	}
}

func TestWithScreens(t *testing.T) {
	vp, _ := ToDeviceRect(image.Pt(10, 10), 1, Physical)
	got := vp.WithScreens(image.Pt(1920, 1080), image.Pt(1920, 1040))
	if got.Screen != image.Pt(1920, 1080) || got.AvailableScreen != image.Pt(1920, 1040) {
		t.Fatalf("WithScreens = %+v", got)
	}
	if vp.Screen != (image.Point{}) {
		t.Fatal("WithScreens mutated the receiver")
	}
}
