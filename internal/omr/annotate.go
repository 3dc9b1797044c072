package omr

import (
	"image"
	"image/color"
	"strconv"

	"github.com/ironsheep/omr-scorer/internal/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Annotate draws the detection onto a copy of the canonical canvas.
//
// Every placed bubble is outlined in its section's colour and shaded when
// judged filled. The first bubble of each row is labelled with the question
// number. Bubbles that were detected but not placed on the grid are outlined
// in grey.
func (d *Detection) Annotate() *image.NRGBA {
	l := d.layout
	hues := sectionColors(len(l.Sections))

	boxes := make([]imaging.Box, 0, len(d.bubbles))
	placed := make(map[image.Rectangle]bool, len(d.bubbles))
	for c := 0; c < l.Columns; c++ {
		for r := 0; r < l.RowsPerColumn; r++ {
			q := l.QuestionAt(c, r)
			clr := color.Color(color.Black)
			for i, s := range l.Sections {
				if s.Contains(q) {
					clr = hues[i]
					break
				}
			}
			labelled := false
			for o := range l.Options {
				b, ok := d.grid.At(c, r, o)
				if !ok {
					continue
				}
				box := imaging.Box{Rect: b.Rect(), Color: clr, Fill: d.marks.Filled(c, r, o)}
				if !labelled {
					box.Label = strconv.Itoa(q)
					labelled = true
				}
				boxes = append(boxes, box)
				placed[b.Rect()] = true
			}
		}
	}
	for _, b := range d.bubbles {
		if !placed[b.Rect()] {
			boxes = append(boxes, imaging.Box{Rect: b.Rect(), Color: color.Gray{Y: 128}})
		}
	}
	return imaging.Overlay(d.Canonical, boxes)
}

// sectionColors spreads n hues evenly around the HCL wheel at a fixed
// chroma and lightness so neighbouring sections stay distinguishable.
func sectionColors(n int) []color.Color {
	out := make([]color.Color, n)
	for i := range out {
		h := 360 * float64(i) / float64(max(n, 1))
		out[i] = colorful.Hcl(h, 0.7, 0.5).Clamped()
	}
	return out
}
