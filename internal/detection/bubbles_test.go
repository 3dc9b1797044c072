package detection

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/ironsheep/omr-scorer/internal/imaging"
)

// circleContour is the contour of an ideal circle of radius r at (x, y).
func circleContour(x, y int, r float64) Contour {
	d := int(2 * r)
	return Contour{
		Bounds:    image.Rect(x, y, x+d, y+d),
		Area:      math.Pi * r * r,
		Perimeter: 2 * math.Pi * r,
	}
}

func TestShapeFilter_Admits(t *testing.T) {
	tests := []struct {
		name    string
		c       Contour
		bubble  bool
		locator bool
	}{
		{"ideal bubble", circleContour(0, 0, 9), true, true},
		{"too small", circleContour(0, 0, 3.5), false, false},
		{"too large for a bubble", circleContour(0, 0, 16), false, true},
		{"width on the bound", Contour{Bounds: image.Rect(0, 0, 13, 14), Area: 140, Perimeter: 43}, false, true},
		{"elongated", Contour{Bounds: image.Rect(0, 0, 40, 10), Area: 400, Perimeter: 100}, false, false},
		{"ragged", Contour{Bounds: image.Rect(0, 0, 18, 18), Area: 250, Perimeter: 120}, false, true},
		{"zero height", Contour{Bounds: image.Rect(0, 0, 18, 0), Area: 250, Perimeter: 60}, false, false},
	}
	bubble, locator := BubbleFilter(), LocatorFilter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := bubble.Admits(tt.c); got != tt.bubble {
				t.Errorf("BubbleFilter: got %v, want %v", got, tt.bubble)
			}
			if got := locator.Admits(tt.c); got != tt.locator {
				t.Errorf("LocatorFilter: got %v, want %v", got, tt.locator)
			}
		})
	}
}

func TestDetectBubbles(t *testing.T) {
	img := createTestImage(200, 100, color.White)
	drawBubble(img, 30, 50, 10, 2.5, false)
	drawBubble(img, 70, 50, 10, 2.5, true)
	// A rule line and a speck must both be rejected.
	fillRect(img, image.Rect(100, 45, 180, 51))
	fillRect(img, image.Rect(185, 20, 188, 23))

	got := DetectBubbles(imaging.Grayscale(img), BubbleFilter(), DefaultBinarization())
	if len(got) != 2 {
		t.Fatalf("got %d bubbles, want 2: %+v", len(got), got)
	}
	for _, b := range got {
		if b.Width <= 13 || b.Height <= 12 {
			t.Errorf("bubble too small: %+v", b)
		}
		if b.Circularity < 0.7 {
			t.Errorf("circularity: got %v", b.Circularity)
		}
		cx := b.CenterX()
		if math.Abs(cx-30.5) > 2 && math.Abs(cx-70.5) > 2 {
			t.Errorf("unexpected bubble centre %v", cx)
		}
	}
}

func TestBubble_Geometry(t *testing.T) {
	b := Bubble{X: 10, Y: 20, Width: 20, Height: 10}
	if b.Rect() != image.Rect(10, 20, 30, 30) {
		t.Errorf("Rect: got %v", b.Rect())
	}
	if b.CenterX() != 20 {
		t.Errorf("CenterX: got %v", b.CenterX())
	}
	if got := b.Inner(0.2); got != image.Rect(14, 22, 26, 28) {
		t.Errorf("Inner: got %v", got)
	}
}
