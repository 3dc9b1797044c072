package imaging

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Box is one rectangle to draw on a diagnostic overlay.
type Box struct {
	Rect  image.Rectangle
	Color color.Color
	// Fill shades the inside of the box as well as outlining it.
	Fill bool
	// Label is drawn just left of the box when non-empty.
	Label string
}

// Overlay draws boxes on a copy of img and returns it.
//
// Outlines are two pixels wide. Filled boxes are shaded with the box colour
// at roughly 40% opacity so the underlying mark stays visible. Labels use the
// 7x13 basic font in the box colour on a white backing.
func Overlay(img image.Image, boxes []Box) *image.NRGBA {
	out := imaging.Clone(img)
	bounds := out.Bounds()

	for _, b := range boxes {
		r := b.Rect.Intersect(bounds)
		if r.Empty() {
			continue
		}
		if b.Fill {
			mask := image.NewUniform(color.Alpha{A: 100})
			draw.DrawMask(out, r, image.NewUniform(b.Color), image.Point{}, mask, image.Point{}, draw.Over)
		}
		strokeRect(out, r, b.Color, 2)
		if b.Label != "" {
			drawText(out, r.Min.X-len(b.Label)*7-4, r.Min.Y+r.Dy()/2+5, b.Label, b.Color)
		}
	}
	return out
}

// strokeRect draws a rectangle outline of the given thickness inside r.
func strokeRect(img *image.NRGBA, r image.Rectangle, c color.Color, thickness int) {
	src := image.NewUniform(c)
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+thickness),
		image.Rect(r.Min.X, r.Max.Y-thickness, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+thickness, r.Max.Y),
		image.Rect(r.Max.X-thickness, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(img, e.Intersect(r), src, image.Point{}, draw.Src)
	}
}

// drawText renders text with its baseline at (x, y).
func drawText(img *image.NRGBA, x, y int, text string, c color.Color) {
	if x < 0 {
		x = 0
	}
	backing := image.Rect(x-1, y-11, x+len(text)*7+1, y+3).Intersect(img.Bounds())
	draw.Draw(img, backing, image.White, image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
