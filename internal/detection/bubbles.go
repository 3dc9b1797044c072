package detection

import (
	"image"
)

// ShapeFilter admits contours by size and shape.
//
// Area, aspect and size bounds are exclusive; MinCircularity is inclusive
// and a zero value disables the circularity check.
type ShapeFilter struct {
	MinArea, MaxArea     float64
	MinAspect, MaxAspect float64
	MinWidth, MinHeight  int
	MinCircularity       float64
}

// LocatorFilter is the loose filter used to find the bubble field in a raw
// photo. It tolerates blobs that are not quite round so long as there are
// enough of them to outline the grid.
func LocatorFilter() ShapeFilter {
	return ShapeFilter{
		MinArea: 100, MaxArea: 3000,
		MinAspect: 0.3, MaxAspect: 3.0,
		MinWidth: 5, MinHeight: 5,
	}
}

// BubbleFilter is the strict filter used on the canonical image, where a
// bubble is 13-25 px across.
func BubbleFilter() ShapeFilter {
	return ShapeFilter{
		MinArea: 50, MaxArea: 650,
		MinAspect: 0.65, MaxAspect: 1.45,
		MinWidth: 13, MinHeight: 12,
		MinCircularity: 0.7,
	}
}

// Admits reports whether c passes every bound of the filter.
func (f ShapeFilter) Admits(c Contour) bool {
	w, h := c.Bounds.Dx(), c.Bounds.Dy()
	if h == 0 {
		return false
	}
	if c.Area <= f.MinArea || c.Area >= f.MaxArea {
		return false
	}
	aspect := c.AspectRatio()
	if aspect <= f.MinAspect || aspect >= f.MaxAspect {
		return false
	}
	if w <= f.MinWidth || h <= f.MinHeight {
		return false
	}
	if f.MinCircularity > 0 && c.Circularity() < f.MinCircularity {
		return false
	}
	return true
}

// Bubble is one candidate answer bubble found on the canonical image.
type Bubble struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`

	Area        float64 `json:"area"`
	Circularity float64 `json:"circularity"`
}

// Rect returns the bubble's bounding box.
func (b Bubble) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height)
}

// CenterX returns the horizontal centre of the bounding box.
func (b Bubble) CenterX() float64 {
	return float64(b.X) + float64(b.Width)/2
}

// Inner returns the bounding box shrunk by margin (a fraction of width and
// height) on every side, truncated to whole pixels.
func (b Bubble) Inner(margin float64) image.Rectangle {
	w, h := float64(b.Width), float64(b.Height)
	return image.Rect(
		int(float64(b.X)+margin*w), int(float64(b.Y)+margin*h),
		int(float64(b.X)+(1-margin)*w), int(float64(b.Y)+(1-margin)*h),
	)
}

// DetectBubbles finds bubble-shaped contours in a canonical grayscale image.
//
// The result is in contour order, which carries no meaning; the grid
// assigner sorts it.
func DetectBubbles(gray *image.Gray, filter ShapeFilter, b Binarization) []Bubble {
	bubbles := make([]Bubble, 0)
	for _, c := range ExtractContours(gray, b) {
		if !filter.Admits(c) {
			continue
		}
		bubbles = append(bubbles, Bubble{
			X:           c.Bounds.Min.X,
			Y:           c.Bounds.Min.Y,
			Width:       c.Bounds.Dx(),
			Height:      c.Bounds.Dy(),
			Area:        c.Area,
			Circularity: c.Circularity(),
		})
	}
	return bubbles
}
