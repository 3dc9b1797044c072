//go:build gocv

package detection

import (
	"image"
	"log"

	"gocv.io/x/gocv"
)

// extractContours runs binarization and contour extraction through OpenCV.
// Requires OpenCV 4.x and cgo; see https://gocv.io/getting-started/.
func extractContours(gray *image.Gray, b Binarization) []Contour {
	src, err := gocv.ImageGrayToMatGray(gray)
	if err != nil {
		log.Printf("gocv: failed to convert image: %v", err)
		return nil
	}
	defer src.Close()

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(src, &blurred, image.Pt(5, 5), b.BlurSigma, b.BlurSigma, gocv.BorderDefault)

	blockSize := b.BlockSize
	if blockSize%2 == 0 {
		blockSize++
	}
	binary := gocv.NewMat()
	defer binary.Close()
	gocv.AdaptiveThreshold(blurred, &binary, 255,
		gocv.AdaptiveThresholdMean, gocv.ThresholdBinaryInv, blockSize, float32(b.C))

	found := gocv.FindContours(binary, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer found.Close()

	contours := make([]Contour, 0, found.Size())
	for i := 0; i < found.Size(); i++ {
		c := found.At(i)
		contours = append(contours, Contour{
			Bounds:    gocv.BoundingRect(c),
			Area:      gocv.ContourArea(c),
			Perimeter: gocv.ArcLength(c, true),
		})
	}
	return contours
}
