package omr

import (
	"image"
	"strings"

	"github.com/ironsheep/omr-scorer/internal/imaging"
)

// Marks records the fill decision for every grid cell.
type Marks struct {
	grid   *Grid
	filled []bool
}

// Filled reports whether the bubble at a cell was judged filled. Empty cells
// are never filled.
func (m *Marks) Filled(col, row, opt int) bool {
	i, ok := m.grid.index(col, row, opt)
	return ok && m.filled[i]
}

// Count returns the number of filled bubbles.
func (m *Marks) Count() int {
	n := 0
	for _, f := range m.filled {
		if f {
			n++
		}
	}
	return n
}

// Mark samples the inner region of every placed bubble and applies the
// layout's fill policy. Cells whose inner region is empty after the margin
// trim are left unfilled.
func Mark(gray *image.Gray, g *Grid, l Layout) *Marks {
	m := &Marks{grid: g, filled: make([]bool, len(g.cells))}
	for i, b := range g.cells {
		if !g.present[i] {
			continue
		}
		st := imaging.MeasureRegion(gray, b.Inner(l.Fill.InnerMargin), l.Fill.DarkLevel)
		if st.Pixels == 0 {
			continue
		}
		m.filled[i] = l.Fill.Filled(st)
	}
	return m
}

// Answers turns marks into a detected AnswerSet. Every question gets an
// entry: the filled letters joined with "," in option order, or "" when
// nothing is marked.
func (m *Marks) Answers(l Layout) AnswerSet {
	detected := make(AnswerSet, len(l.Sections))
	for _, s := range l.Sections {
		detected[s.Name] = make(map[string]string, s.Len())
	}
	for c := 0; c < l.Columns; c++ {
		for r := 0; r < l.RowsPerColumn; r++ {
			q := l.QuestionAt(c, r)
			s, ok := l.SectionOf(q)
			if !ok {
				continue
			}
			letters := make([]string, 0, len(l.Options))
			for o, letter := range l.Options {
				if m.Filled(c, r, o) {
					letters = append(letters, letter)
				}
			}
			detected[s.Name][QuestionKey(q)] = strings.Join(letters, ",")
		}
	}
	return detected
}

// Classify is Mark followed by Answers.
func Classify(gray *image.Gray, g *Grid, l Layout) AnswerSet {
	return Mark(gray, g, l).Answers(l)
}
