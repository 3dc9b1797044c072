//go:build !gocv

package detection

import (
	"image"
	"testing"
)

// maskFrom builds a mask from rows of '#' (foreground) and '.'.
func maskFrom(rows ...string) [][]bool {
	mask := make([][]bool, len(rows))
	for y, row := range rows {
		mask[y] = make([]bool, len(row))
		for x, ch := range row {
			mask[y][x] = ch == '#'
		}
	}
	return mask
}

func TestFindExternalContours(t *testing.T) {
	tests := []struct {
		name  string
		mask  [][]bool
		want  []Contour
	}{
		{
			"2x2 block",
			maskFrom(
				"....",
				".##.",
				".##.",
				"....",
			),
			[]Contour{{Bounds: image.Rect(1, 1, 3, 3), Area: 1, Perimeter: 4}},
		},
		{
			"3x3 block",
			maskFrom(
				".....",
				".###.",
				".###.",
				".###.",
			),
			[]Contour{{Bounds: image.Rect(1, 1, 4, 4), Area: 4, Perimeter: 8}},
		},
		{
			"diagonal neighbours are one shape",
			maskFrom(
				"#...",
				".#..",
				"..#.",
			),
			[]Contour{{Bounds: image.Rect(0, 0, 3, 3)}},
		},
		{
			"two shapes",
			maskFrom(
				"##..##",
				"##..##",
			),
			[]Contour{
				{Bounds: image.Rect(0, 0, 2, 2), Area: 1, Perimeter: 4},
				{Bounds: image.Rect(4, 0, 6, 2), Area: 1, Perimeter: 4},
			},
		},
		{
			"shape inside a hole is not external",
			maskFrom(
				"#######",
				"#.....#",
				"#..#..#",
				"#.....#",
				"#######",
			),
			[]Contour{{Bounds: image.Rect(0, 0, 7, 5), Area: 24, Perimeter: 20}},
		},
		{
			"empty",
			maskFrom("...", "..."),
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := findExternalContours(tt.mask)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d contours, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i].Bounds != tt.want[i].Bounds {
					t.Errorf("contour %d bounds: got %v, want %v", i, got[i].Bounds, tt.want[i].Bounds)
				}
				if tt.want[i].Perimeter == 0 {
					continue
				}
				if got[i].Area != tt.want[i].Area || got[i].Perimeter != tt.want[i].Perimeter {
					t.Errorf("contour %d: got area %v perimeter %v, want %v and %v",
						i, got[i].Area, got[i].Perimeter, tt.want[i].Area, tt.want[i].Perimeter)
				}
			}
		})
	}
}

func TestFindExternalContours_LargeBlob(t *testing.T) {
	const n = 500
	mask := make([][]bool, n)
	for y := range mask {
		mask[y] = make([]bool, n)
		for x := range mask[y] {
			mask[y][x] = true
		}
	}
	got := findExternalContours(mask)
	if len(got) != 1 {
		t.Fatalf("got %d contours, want 1", len(got))
	}
	if got[0].Area != (n-1)*(n-1) || got[0].Perimeter != 4*(n-1) {
		t.Errorf("got area %v perimeter %v", got[0].Area, got[0].Perimeter)
	}
}

func TestTraceBoundary_SinglePixel(t *testing.T) {
	labels := [][]int{
		{0, 0, 0},
		{0, 1, 0},
		{0, 0, 0},
	}
	pts := traceBoundary(labels, 1, 1, 3, 3, 1, 1)
	if len(pts) != 1 || pts[0] != image.Pt(1, 1) {
		t.Errorf("got %v, want the single pixel", pts)
	}
}
