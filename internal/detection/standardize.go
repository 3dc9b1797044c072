package detection

import (
	"errors"
	"fmt"
	"image"
	"sort"

	"github.com/ironsheep/omr-scorer/internal/imaging"
)

// ErrGridNotFound is returned when a photo holds too few bubble-like shapes
// to locate the answer field.
var ErrGridNotFound = errors.New("bubble grid not found")

// StandardizeOptions configures Standardize.
type StandardizeOptions struct {
	// CanvasWidth and CanvasHeight give the canonical canvas size.
	CanvasWidth  int
	CanvasHeight int

	// Padding is added around the located field before cropping.
	Padding int

	// MinShapes is the fewest admitted shapes that still locate a grid.
	MinShapes int

	// LowPercentile and HighPercentile pick the robust field extent
	// (0.05 and 0.95 discard stray blobs at either tail).
	LowPercentile  float64
	HighPercentile float64

	Filter       ShapeFilter
	Binarization Binarization
}

// DefaultStandardizeOptions returns the 800x1000 canvas, 80 px padding and
// 50-shape minimum.
func DefaultStandardizeOptions() StandardizeOptions {
	return StandardizeOptions{
		CanvasWidth:    800,
		CanvasHeight:   1000,
		Padding:        80,
		MinShapes:      50,
		LowPercentile:  0.05,
		HighPercentile: 0.95,
		Filter:         LocatorFilter(),
		Binarization:   DefaultBinarization(),
	}
}

// Standardized is a photo re-projected onto the canonical canvas.
type Standardized struct {
	// Image is the canonical canvas.
	Image *image.NRGBA

	// Shapes is the number of loosely admitted shapes that located the field.
	Shapes int

	// Extent is the percentile bounding box of those shapes in the photo.
	Extent image.Rectangle

	// Placement describes the crop and scale onto the canvas.
	Placement imaging.Placement
}

// Standardize locates the bubble field in a raw photo and re-projects it
// onto a fixed-size canvas.
//
// # Algorithm
//
//  1. Grayscale, blur, adaptive threshold (inverted) and external contours
//  2. Keep contours passing opts.Filter; fewer than opts.MinShapes fails
//     with ErrGridNotFound
//  3. Extent: low percentile of left and top edges, high percentile of right
//     and bottom edges
//  4. Pad the extent, clamp to the photo and crop
//  5. Scale uniformly to fit the canvas and centre on white
//
// No rotation or perspective correction is attempted; the sheet must be
// roughly axis-aligned.
func Standardize(img image.Image, opts StandardizeOptions) (*Standardized, error) {
	base := imaging.Normalize(img)
	gray := imaging.Grayscale(base)

	boxes := make([]image.Rectangle, 0)
	for _, c := range ExtractContours(gray, opts.Binarization) {
		if opts.Filter.Admits(c) {
			boxes = append(boxes, c.Bounds)
		}
	}
	if len(boxes) < opts.MinShapes {
		return nil, fmt.Errorf("%w: found %d bubble-like shapes, need at least %d",
			ErrGridNotFound, len(boxes), opts.MinShapes)
	}

	extent := percentileExtent(boxes, opts.LowPercentile, opts.HighPercentile)
	crop := imaging.ExpandRect(extent, opts.Padding, base.Bounds())

	canvas, placement, err := imaging.Letterbox(base, crop, opts.CanvasWidth, opts.CanvasHeight)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGridNotFound, err)
	}

	return &Standardized{
		Image:     canvas,
		Shapes:    len(boxes),
		Extent:    extent,
		Placement: placement,
	}, nil
}

// percentileExtent bounds the boxes robustly: each edge is taken at a
// percentile of that edge across all boxes. The percentile p of n sorted
// values is the element at index floor(n*p), capped at n-1.
func percentileExtent(boxes []image.Rectangle, lo, hi float64) image.Rectangle {
	lefts := make([]int, len(boxes))
	tops := make([]int, len(boxes))
	rights := make([]int, len(boxes))
	bottoms := make([]int, len(boxes))
	for i, b := range boxes {
		lefts[i] = b.Min.X
		tops[i] = b.Min.Y
		rights[i] = b.Max.X
		bottoms[i] = b.Max.Y
	}

	percentile := func(p float64, xs []int) int {
		sort.Ints(xs)
		return xs[min(int(float64(len(xs))*p), len(xs)-1)]
	}

	return image.Rect(
		percentile(lo, lefts), percentile(lo, tops),
		percentile(hi, rights), percentile(hi, bottoms),
	)
}
