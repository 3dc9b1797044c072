package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/disintegration/imaging"
)

// EncodedImage contains a PNG-encoded image ready for a JSON response.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncodePNG encodes img as base64 PNG.
func EncodePNG(img image.Image) (*EncodedImage, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return &EncodedImage{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// Placement records where a cropped region landed on a letterboxed canvas.
type Placement struct {
	Source image.Rectangle `json:"source"` // Region cropped from the source image
	Scale  float64         `json:"scale"`  // Uniform scale factor applied
	Offset image.Point     `json:"offset"` // Top-left of the scaled region on the canvas
	Size   image.Point     `json:"size"`   // Scaled region size
}

// Letterbox crops rect out of img, scales it uniformly to fit inside a
// width×height canvas and centres it on a white background.
//
// The scale is the smaller of width/rect.Dx() and height/rect.Dy(), so the
// crop keeps its aspect ratio and one axis fills the canvas exactly. The
// scaled size is truncated to whole pixels, and the offset is floor-halved,
// so the letterbox bars may differ by one pixel.
//
// # Errors
//
//   - Returns error if rect does not overlap the image
//   - Returns error if width or height is not positive
func Letterbox(img image.Image, rect image.Rectangle, width, height int) (*image.NRGBA, Placement, error) {
	if width <= 0 || height <= 0 {
		return nil, Placement{}, fmt.Errorf("invalid canvas size %dx%d", width, height)
	}
	rect = rect.Intersect(img.Bounds())
	if rect.Empty() {
		return nil, Placement{}, fmt.Errorf("crop region %v outside image bounds %v", rect, img.Bounds())
	}

	cropped := imaging.Crop(img, rect)
	cw, ch := cropped.Bounds().Dx(), cropped.Bounds().Dy()

	scale := float64(width) / float64(cw)
	if sy := float64(height) / float64(ch); sy < scale {
		scale = sy
	}
	newWidth := max(1, int(float64(cw)*scale))
	newHeight := max(1, int(float64(ch)*scale))

	resized := imaging.Resize(cropped, newWidth, newHeight, imaging.Linear)
	offset := image.Pt((width-newWidth)/2, (height-newHeight)/2)

	canvas := imaging.New(width, height, color.White)
	canvas = imaging.Paste(canvas, resized, offset)

	return canvas, Placement{
		Source: rect,
		Scale:  scale,
		Offset: offset,
		Size:   image.Pt(newWidth, newHeight),
	}, nil
}

// Normalize copies img into a zero-origin NRGBA image.
func Normalize(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Bounds().Min == (image.Point{}) {
		return n
	}
	return imaging.Clone(img)
}

// ExpandRect grows r by padding on every side and clamps it to bounds.
func ExpandRect(r image.Rectangle, padding int, bounds image.Rectangle) image.Rectangle {
	return image.Rect(
		r.Min.X-padding, r.Min.Y-padding,
		r.Max.X+padding, r.Max.Y+padding,
	).Intersect(bounds)
}
