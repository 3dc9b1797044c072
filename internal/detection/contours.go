package detection

import (
	"image"
	"math"
)

// Binarization configures the blur + adaptive threshold applied before
// contours are extracted.
type Binarization struct {
	// BlurSigma is the Gaussian sigma used to suppress sensor noise.
	BlurSigma float64

	// BlockSize is the side of the square window used for the local mean.
	// Must be odd.
	BlockSize int

	// C is subtracted from the local mean; pixels at or below the result
	// become foreground.
	C float64
}

// DefaultBinarization returns the 5x5 blur, block 13, C 8 recipe used for
// both the standardizer and the bubble detector.
func DefaultBinarization() Binarization {
	return Binarization{BlurSigma: 1.1, BlockSize: 13, C: 8}
}

// Contour describes the outer boundary of one connected foreground shape.
type Contour struct {
	// Bounds is the bounding box; Max is exclusive.
	Bounds image.Rectangle `json:"bounds"`

	// Area is the area enclosed by the boundary polygon in square pixels.
	// Holes do not reduce it, so an outlined ring and a filled disc of the
	// same size report the same area.
	Area float64 `json:"area"`

	// Perimeter is the closed arc length of the boundary polygon.
	Perimeter float64 `json:"perimeter"`
}

// Circularity returns 4π·area/perimeter², 1.0 for a perfect circle.
// A zero perimeter yields 0.
func (c Contour) Circularity() float64 {
	if c.Perimeter <= 0 {
		return 0
	}
	return 4 * math.Pi * c.Area / (c.Perimeter * c.Perimeter)
}

// AspectRatio returns bounding-box width over height.
func (c Contour) AspectRatio() float64 {
	h := c.Bounds.Dy()
	if h == 0 {
		return 0
	}
	return float64(c.Bounds.Dx()) / float64(h)
}

// ExtractContours binarizes a grayscale image and returns the external
// contours of its foreground, i.e. shapes not nested inside another shape.
//
// The default build uses a pure-Go implementation; building with the gocv
// tag switches to OpenCV's adaptiveThreshold and findContours.
func ExtractContours(gray *image.Gray, b Binarization) []Contour {
	return extractContours(gray, b)
}

// polygonMetrics returns the shoelace area and closed arc length of pts.
func polygonMetrics(pts []image.Point) (area, perimeter float64) {
	n := len(pts)
	if n < 2 {
		return 0, 0
	}
	var twice float64
	for i := 0; i < n; i++ {
		p := pts[i]
		q := pts[(i+1)%n]
		twice += float64(p.X*q.Y - q.X*p.Y)
		dx := float64(q.X - p.X)
		dy := float64(q.Y - p.Y)
		perimeter += math.Sqrt(dx*dx + dy*dy)
	}
	return math.Abs(twice) / 2, perimeter
}
