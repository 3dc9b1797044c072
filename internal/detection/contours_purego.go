//go:build !gocv

package detection

import (
	"image"

	"github.com/ironsheep/omr-scorer/internal/imaging"
)

func extractContours(gray *image.Gray, b Binarization) []Contour {
	blurred := imaging.GaussianBlur(gray, b.BlurSigma)
	mask := imaging.AdaptiveThresholdInv(blurred, b.BlockSize, b.C)
	return findExternalContours(mask)
}

// mooreDirs lists the 8 neighbours clockwise starting from west.
var mooreDirs = [8]image.Point{
	{X: -1, Y: 0}, {X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1},
	{X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}, {X: -1, Y: 1},
}

// findExternalContours labels 8-connected foreground components and traces
// the outer boundary of every component that is not inside a hole of
// another component.
//
// The raster scan meets each component first at its topmost-leftmost pixel,
// which is where boundary tracing starts. A component is nested exactly when
// the background pixel above that start pixel cannot reach the image border.
func findExternalContours(mask [][]bool) []Contour {
	height := len(mask)
	if height == 0 {
		return nil
	}
	width := len(mask[0])

	outside := markOutside(mask, width, height)
	labels := make([][]int, height)
	for y := range labels {
		labels[y] = make([]int, width)
	}

	contours := make([]Contour, 0)
	label := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !mask[y][x] || labels[y][x] != 0 {
				continue
			}
			label++
			bounds, size := floodLabel(mask, labels, x, y, width, height, label)
			if y > 0 && !outside[y-1][x] {
				continue
			}
			pts := traceBoundary(labels, x, y, width, height, label, size)
			area, perimeter := polygonMetrics(pts)
			contours = append(contours, Contour{
				Bounds:    bounds,
				Area:      area,
				Perimeter: perimeter,
			})
		}
	}
	return contours
}

// markOutside flags background pixels 4-connected to the image border.
func markOutside(mask [][]bool, width, height int) [][]bool {
	outside := make([][]bool, height)
	for y := range outside {
		outside[y] = make([]bool, width)
	}

	stack := make([]image.Point, 0, 2*(width+height))
	push := func(x, y int) {
		if x < 0 || x >= width || y < 0 || y >= height {
			return
		}
		if mask[y][x] || outside[y][x] {
			return
		}
		outside[y][x] = true
		stack = append(stack, image.Point{X: x, Y: y})
	}

	for x := 0; x < width; x++ {
		push(x, 0)
		push(x, height-1)
	}
	for y := 0; y < height; y++ {
		push(0, y)
		push(width-1, y)
	}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		push(p.X+1, p.Y)
		push(p.X-1, p.Y)
		push(p.X, p.Y+1)
		push(p.X, p.Y-1)
	}
	return outside
}

// floodLabel assigns label to the 8-connected component containing
// (startX, startY) and returns its bounding box and pixel count.
//
// Uses an explicit stack rather than recursion so large blobs (a shadow
// across the page) cannot overflow the goroutine stack.
func floodLabel(mask [][]bool, labels [][]int, startX, startY, width, height, label int) (image.Rectangle, int) {
	minX, minY := startX, startY
	maxX, maxY := startX, startY
	size := 0

	stack := []image.Point{{X: startX, Y: startY}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			continue
		}
		if !mask[p.Y][p.X] || labels[p.Y][p.X] != 0 {
			continue
		}

		labels[p.Y][p.X] = label
		size++
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)

		for _, d := range mooreDirs {
			stack = append(stack, p.Add(d))
		}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), size
}

// traceBoundary walks the outer boundary of a labelled component with Moore
// neighbour tracing, starting at its topmost-leftmost pixel.
//
// Tracing stops when the walk is back at the start pixel and about to leave
// it in the same direction as the first step. Thin parts are visited once per
// side, as a polygon around them must be.
func traceBoundary(labels [][]int, sx, sy, width, height, label, size int) []image.Point {
	inside := func(p image.Point) bool {
		return p.X >= 0 && p.X < width && p.Y >= 0 && p.Y < height && labels[p.Y][p.X] == label
	}

	start := image.Point{X: sx, Y: sy}
	points := []image.Point{start}
	p := start
	back := 0 // west of the start pixel is background
	firstDir := -1

	for steps := 0; steps < 4*size+8; steps++ {
		d := -1
		for i := 1; i <= 8; i++ {
			k := (back + i) % 8
			if inside(p.Add(mooreDirs[k])) {
				d = k
				break
			}
		}
		if d < 0 {
			break
		}
		if p == start && d == firstDir {
			points = points[:len(points)-1]
			break
		}
		if firstDir < 0 {
			firstDir = d
		}

		prev := p.Add(mooreDirs[(d+7)%8])
		p = p.Add(mooreDirs[d])
		back = dirIndex(prev.Sub(p))
		points = append(points, p)
	}
	return points
}

func dirIndex(delta image.Point) int {
	for i, d := range mooreDirs {
		if d == delta {
			return i
		}
	}
	return 0
}
