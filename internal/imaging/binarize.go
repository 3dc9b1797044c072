package imaging

import (
	"image"
	"image/draw"

	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/imaging"
)

// Grayscale converts an image to 8-bit luminance with the Rec. 601 weights
// 0.299, 0.587 and 0.114.
//
// The result always has its origin at (0,0), whatever the bounds of the
// source; every later stage indexes Pix directly.
func Grayscale(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok && g.Bounds().Min == (image.Point{}) {
		return g
	}
	return toGray(imaging.Grayscale(img))
}

// GaussianBlur smooths a grayscale image with a Gaussian of the given sigma.
//
// A sigma of 1.1 matches a 5x5 kernel with automatically derived sigma, the
// usual pre-threshold smoothing for phone photos. Non-positive sigma returns
// the input unchanged.
func GaussianBlur(g *image.Gray, sigma float64) *image.Gray {
	if sigma <= 0 {
		return g
	}
	return toGray(imaging.Blur(g, sigma))
}

// AdaptiveThresholdInv binarizes a grayscale image against its local mean.
//
// A pixel is foreground (true) when its value is at most the mean of the
// blockSize×blockSize window around it minus c. Dark ink on light paper
// therefore becomes foreground. Windows are clamped at the image border by
// replicating edge pixels.
//
// blockSize must be odd and at least 3; even values are rounded up.
func AdaptiveThresholdInv(g *image.Gray, blockSize int, c float64) [][]bool {
	if blockSize < 3 {
		blockSize = 3
	}
	if blockSize%2 == 0 {
		blockSize++
	}

	bounds := g.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	// A box blur of radius r averages a (2r+1)-wide square window.
	mean := blur.Box(g, float64(blockSize-1)/2)
	mb := mean.Bounds()

	mask := make([][]bool, height)
	for y := 0; y < height; y++ {
		mask[y] = make([]bool, width)
		row := g.Pix[y*g.Stride:]
		for x := 0; x < width; x++ {
			local := float64(mean.Pix[mean.PixOffset(x+mb.Min.X, y+mb.Min.Y)])
			mask[y][x] = float64(row[x]) <= local-c
		}
	}
	return mask
}

// toGray copies any image into a zero-origin *image.Gray.
func toGray(img image.Image) *image.Gray {
	b := img.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
