package omr

import (
	"image"
	"image/color"
	"math"

	"github.com/ironsheep/omr-scorer/internal/detection"
)

// Synthetic sheet geometry, in photo pixels. Column pitch is twice the
// option pitch so columns are separated by a visibly wider gap.
const (
	sheetSize    = 1000
	sheetOrigin  = 150
	columnPitch  = 150
	optionPitch  = 30
	rowPitch     = 36
	bubbleRadius = 10.0
	ringInner    = 7.5
)

// drawSheet renders a blank 5x20x4 bubble sheet with the given cells filled.
// marks maps question number to option indexes.
func drawSheet(marks map[int][]int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, sheetSize, sheetSize))
	for i := range img.Pix {
		img.Pix[i] = 255
	}

	filled := make(map[[3]int]bool)
	for q, opts := range marks {
		c, r := (q-1)/20, (q-1)%20
		for _, o := range opts {
			filled[[3]int{c, r, o}] = true
		}
	}

	for c := 0; c < 5; c++ {
		for r := 0; r < 20; r++ {
			for o := 0; o < 4; o++ {
				cx := sheetOrigin + c*columnPitch + o*optionPitch
				cy := sheetOrigin + r*rowPitch
				drawBubble(img, cx, cy, filled[[3]int{c, r, o}])
			}
		}
	}
	return img
}

func drawBubble(img *image.RGBA, cx, cy int, filled bool) {
	rr := int(bubbleRadius) + 1
	for y := cy - rr; y <= cy+rr; y++ {
		for x := cx - rr; x <= cx+rr; x++ {
			d := math.Hypot(float64(x-cx), float64(y-cy))
			if d > bubbleRadius {
				continue
			}
			if filled || d >= ringInner {
				img.Set(x, y, color.Black)
			}
		}
	}
}

// gridBubbles returns ideal bubbles laid out like a canonical sheet for l,
// skipping any cell listed in missing.
func gridBubbles(l Layout, missing ...[3]int) []detection.Bubble {
	skip := make(map[[3]int]bool, len(missing))
	for _, m := range missing {
		skip[m] = true
	}
	bubbles := make([]detection.Bubble, 0, l.ExpectedBubbles())
	for c := 0; c < l.Columns; c++ {
		for r := 0; r < l.RowsPerColumn; r++ {
			for o := range l.Options {
				if skip[[3]int{c, r, o}] {
					continue
				}
				bubbles = append(bubbles, detection.Bubble{
					X:      40 + c*150 + o*28,
					Y:      40 + r*34,
					Width:  18,
					Height: 18,
				})
			}
		}
	}
	return bubbles
}

// singleQuestionLayout is a one-question, four-option layout for unit tests.
func singleQuestionLayout() Layout {
	l := DefaultLayout()
	l.Columns = 1
	l.RowsPerColumn = 1
	l.Sections = []Section{{Name: "Only", First: 1, Last: 1}}
	return l
}
