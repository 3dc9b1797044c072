package imaging

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func TestMeasureRegion(t *testing.T) {
	g := grayImage(20, 20, 255)
	// Left half of the region (5,5)-(15,15) is black.
	for y := 5; y < 15; y++ {
		for x := 5; x < 10; x++ {
			g.SetGray(x, y, color.Gray{Y: 0})
		}
	}

	st := MeasureRegion(g, image.Rect(5, 5, 15, 15), 100)
	if st.Pixels != 100 {
		t.Errorf("Pixels: got %d, want 100", st.Pixels)
	}
	if math.Abs(st.Mean-127.5) > 1e-9 {
		t.Errorf("Mean: got %v, want 127.5", st.Mean)
	}
	if st.DarkFraction != 0.5 {
		t.Errorf("DarkFraction: got %v, want 0.5", st.DarkFraction)
	}
}

func TestMeasureRegion_DarkLevelIsStrict(t *testing.T) {
	g := grayImage(4, 4, 100)
	if st := MeasureRegion(g, g.Bounds(), 100); st.DarkFraction != 0 {
		t.Errorf("pixels equal to the dark level counted dark: %v", st.DarkFraction)
	}
	if st := MeasureRegion(g, g.Bounds(), 101); st.DarkFraction != 1 {
		t.Errorf("pixels below the dark level not counted: %v", st.DarkFraction)
	}
}

func TestMeasureRegion_Clipped(t *testing.T) {
	g := grayImage(10, 10, 50)

	st := MeasureRegion(g, image.Rect(5, 5, 20, 20), 100)
	if st.Pixels != 25 {
		t.Errorf("Pixels: got %d, want 25", st.Pixels)
	}

	empty := MeasureRegion(g, image.Rect(20, 20, 30, 30), 100)
	if empty.Pixels != 0 || empty.Mean != 0 {
		t.Errorf("outside region: got %+v, want zero", empty)
	}
}
