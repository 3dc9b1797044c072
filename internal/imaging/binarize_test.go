package imaging

import (
	"image"
	"image/color"
	"image/draw"
	"testing"
)

func grayImage(width, height int, v uint8) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, width, height))
	draw.Draw(g, g.Bounds(), image.NewUniform(color.Gray{Y: v}), image.Point{}, draw.Src)
	return g
}

func TestGrayscale(t *testing.T) {
	src := solidImage(8, 6, color.RGBA{255, 255, 255, 255})
	src.Set(2, 3, color.Black)

	g := Grayscale(src)
	if g.Bounds() != image.Rect(0, 0, 8, 6) {
		t.Fatalf("bounds: got %v", g.Bounds())
	}
	if v := g.GrayAt(0, 0).Y; v != 255 {
		t.Errorf("white pixel: got %d", v)
	}
	if v := g.GrayAt(2, 3).Y; v != 0 {
		t.Errorf("black pixel: got %d", v)
	}
}

func TestGrayscale_LumaWeights(t *testing.T) {
	tests := []struct {
		name string
		c    color.Color
		want uint8
	}{
		{"red", color.RGBA{255, 0, 0, 255}, 76},
		{"green", color.RGBA{0, 255, 0, 255}, 150},
		{"blue", color.RGBA{0, 0, 255, 255}, 29},
		{"mid gray", color.RGBA{128, 128, 128, 255}, 128},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Grayscale(solidImage(3, 3, tt.c))
			if v := g.GrayAt(1, 1).Y; v < tt.want-1 || v > tt.want+1 {
				t.Errorf("got %d, want %d", v, tt.want)
			}
		})
	}
}

func TestGrayscale_Offset(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 10, 14, 13))
	draw.Draw(src, src.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	g := Grayscale(src)
	if g.Bounds() != image.Rect(0, 0, 4, 3) || g.GrayAt(0, 0).Y != 255 {
		t.Errorf("got bounds %v, pixel %d", g.Bounds(), g.GrayAt(0, 0).Y)
	}
}

func TestGrayscale_PassThrough(t *testing.T) {
	g := grayImage(4, 4, 77)
	if Grayscale(g) != g {
		t.Error("zero-origin gray input should be returned as-is")
	}
}

func TestGaussianBlur(t *testing.T) {
	g := grayImage(21, 21, 255)
	g.SetGray(10, 10, color.Gray{Y: 0})

	b := GaussianBlur(g, 1.1)
	centre := b.GrayAt(10, 10).Y
	neighbour := b.GrayAt(11, 10).Y
	far := b.GrayAt(0, 0).Y

	if centre == 0 || centre == 255 {
		t.Errorf("centre not smoothed: %d", centre)
	}
	if neighbour >= 255 {
		t.Errorf("neighbour untouched: %d", neighbour)
	}
	if far != 255 {
		t.Errorf("far pixel changed: %d", far)
	}
	if GaussianBlur(g, 0) != g {
		t.Error("zero sigma should return the input")
	}
}

func TestAdaptiveThresholdInv(t *testing.T) {
	g := grayImage(40, 40, 230)
	// Dark stroke on light paper.
	for x := 10; x < 30; x++ {
		g.SetGray(x, 20, color.Gray{Y: 40})
		g.SetGray(x, 21, color.Gray{Y: 40})
	}

	mask := AdaptiveThresholdInv(g, 13, 8)
	if len(mask) != 40 || len(mask[0]) != 40 {
		t.Fatalf("mask size: got %dx%d", len(mask[0]), len(mask))
	}
	if !mask[20][15] || !mask[21][25] {
		t.Error("stroke should be foreground")
	}
	if mask[5][5] || mask[20][5] {
		t.Error("flat paper should be background")
	}
}

func TestAdaptiveThresholdInv_FlatImage(t *testing.T) {
	for _, v := range []uint8{0, 128, 255} {
		mask := AdaptiveThresholdInv(grayImage(15, 15, v), 13, 8)
		for y := range mask {
			for x := range mask[y] {
				if mask[y][x] {
					t.Fatalf("flat %d image: foreground at (%d,%d)", v, x, y)
				}
			}
		}
	}
}
