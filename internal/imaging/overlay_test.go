package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestOverlay(t *testing.T) {
	src := solidImage(100, 60, color.White)
	red := color.RGBA{255, 0, 0, 255}

	out := Overlay(src, []Box{
		{Rect: image.Rect(50, 10, 70, 30), Color: red, Label: "7"},
		{Rect: image.Rect(10, 40, 30, 55), Color: red, Fill: true},
		{Rect: image.Rect(200, 200, 210, 210), Color: red},
	})

	if out.Bounds() != src.Bounds() {
		t.Fatalf("bounds: got %v", out.Bounds())
	}
	if c := out.NRGBAAt(50, 20); c.R != 255 || c.G != 0 {
		t.Errorf("outline pixel: got %v, want red", c)
	}
	if c := out.NRGBAAt(60, 20); c.G != 255 {
		t.Errorf("unfilled interior: got %v, want white", c)
	}
	if c := out.NRGBAAt(20, 47); c.G == 255 || c.G == 0 {
		t.Errorf("filled interior: got %v, want translucent red", c)
	}
	if src.RGBAAt(50, 20) != (color.RGBA{255, 255, 255, 255}) {
		t.Error("Overlay modified its input")
	}

	// The label lands left of the first box.
	dark := false
	for x := 30; x < 50 && !dark; x++ {
		for y := 10; y < 30; y++ {
			if c := out.NRGBAAt(x, y); c.G < 128 {
				dark = true
				break
			}
		}
	}
	if !dark {
		t.Error("label not drawn")
	}
}
