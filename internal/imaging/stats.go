package imaging

import (
	"image"

	"gonum.org/v1/gonum/stat"
)

// RegionStats summarises the intensity of a rectangular grayscale region.
type RegionStats struct {
	// Pixels is the number of pixels sampled after clipping to the image.
	Pixels int `json:"pixels"`

	// Mean is the average intensity (0 = black, 255 = white).
	Mean float64 `json:"mean"`

	// DarkFraction is the share of sampled pixels strictly darker than the
	// dark level passed to MeasureRegion (0.0 to 1.0).
	DarkFraction float64 `json:"dark_fraction"`
}

// MeasureRegion samples every pixel of r in a grayscale image.
//
// The region is clipped to the image bounds first, so a rectangle hanging
// off an edge samples only its visible part. A region with no visible pixels
// returns a zero RegionStats; callers check Pixels before trusting Mean.
func MeasureRegion(g *image.Gray, r image.Rectangle, darkLevel uint8) RegionStats {
	r = r.Intersect(g.Bounds())
	if r.Empty() {
		return RegionStats{}
	}

	values := make([]float64, 0, r.Dx()*r.Dy())
	dark := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			v := g.Pix[g.PixOffset(x, y)]
			if v < darkLevel {
				dark++
			}
			values = append(values, float64(v))
		}
	}

	return RegionStats{
		Pixels:       len(values),
		Mean:         stat.Mean(values, nil),
		DarkFraction: float64(dark) / float64(len(values)),
	}
}
