package detection

import (
	"image"
	"image/color"
	"math"
)

// createTestImage creates a solid color test image
func createTestImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// drawBubble draws a printed answer bubble: a ring of the given outer radius
// and stroke, or a solid disc when filled.
func drawBubble(img *image.RGBA, cx, cy int, radius, stroke float64, filled bool) {
	r := int(radius) + 1
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			d := math.Hypot(float64(x-cx), float64(y-cy))
			if d <= radius && (filled || d >= radius-stroke) {
				img.Set(x, y, color.Black)
			}
		}
	}
}

// fillRect paints a solid black rectangle.
func fillRect(img *image.RGBA, r image.Rectangle) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.Set(x, y, color.Black)
		}
	}
}

// bubbleGrid draws cols×rows ring bubbles at the given pitch.
func bubbleGrid(width, height, originX, originY, cols, rows, pitch int) *image.RGBA {
	img := createTestImage(width, height, color.White)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			drawBubble(img, originX+c*pitch, originY+r*pitch, 10, 2.5, false)
		}
	}
	return img
}
