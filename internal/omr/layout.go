package omr

import (
	"fmt"
	"slices"

	"github.com/ironsheep/omr-scorer/internal/detection"
	"github.com/ironsheep/omr-scorer/internal/imaging"
)

// Section is a named, contiguous range of question numbers (inclusive).
type Section struct {
	Name  string `json:"name"`
	First int    `json:"first"`
	Last  int    `json:"last"`
}

// Contains reports whether question q belongs to the section.
func (s Section) Contains(q int) bool {
	return q >= s.First && q <= s.Last
}

// Len returns the number of questions in the section.
func (s Section) Len() int {
	return s.Last - s.First + 1
}

// FillPolicy decides whether a sampled bubble interior is marked.
type FillPolicy struct {
	// InnerMargin is the fraction of width/height trimmed from each side of
	// a bubble before sampling, so the printed outline is not counted.
	InnerMargin float64

	// DarkLevel is the intensity below which a pixel counts as dark.
	DarkLevel uint8

	// DarkFraction is the share of dark pixels above which the bubble is
	// filled.
	DarkFraction float64

	// MeanLevel is the mean intensity below which the bubble is filled.
	MeanLevel float64
}

// Filled applies the policy: enough dark pixels OR a dark enough mean.
func (p FillPolicy) Filled(st imaging.RegionStats) bool {
	return st.DarkFraction > p.DarkFraction || st.Mean < p.MeanLevel
}

// Layout describes one bubble-sheet design: grid cardinality, option
// letters, the section partition and every detection threshold.
//
// A Layout is a value. NewPipeline takes its own copy, so changing a Layout
// after handing it over has no effect on running pipelines. Alternate sheet
// designs are supported by building a different Layout, not by editing
// constants.
type Layout struct {
	Columns       int
	RowsPerColumn int
	Options       []string
	Sections      []Section

	// RowThreshold is the vertical distance in canonical pixels at which a
	// bubble starts a new row.
	RowThreshold int

	Standardize  detection.StandardizeOptions
	Bubble       detection.ShapeFilter
	Binarization detection.Binarization
	Fill         FillPolicy
}

// DefaultLayout returns the 100-question sheet: 5 columns of 20 rows, options
// a-d, sections Python, EDA, SQL, Power BI and Statistics of 20 questions
// each.
func DefaultLayout() Layout {
	return Layout{
		Columns:       5,
		RowsPerColumn: 20,
		Options:       []string{"a", "b", "c", "d"},
		Sections: []Section{
			{Name: "Python", First: 1, Last: 20},
			{Name: "EDA", First: 21, Last: 40},
			{Name: "SQL", First: 41, Last: 60},
			{Name: "Power BI", First: 61, Last: 80},
			{Name: "Statistics", First: 81, Last: 100},
		},
		RowThreshold: 20,
		Standardize:  detection.DefaultStandardizeOptions(),
		Bubble:       detection.BubbleFilter(),
		Binarization: detection.DefaultBinarization(),
		Fill: FillPolicy{
			InnerMargin:  0.2,
			DarkLevel:    100,
			DarkFraction: 0.27,
			MeanLevel:    140,
		},
	}
}

// Questions returns the number of questions on the sheet.
func (l Layout) Questions() int {
	return l.Columns * l.RowsPerColumn
}

// ExpectedBubbles returns the number of bubbles a perfect detection finds.
func (l Layout) ExpectedBubbles() int {
	return l.Questions() * len(l.Options)
}

// QuestionAt maps a grid position to its 1-based question number. Numbering
// runs down each column first.
func (l Layout) QuestionAt(column, row int) int {
	return column*l.RowsPerColumn + row + 1
}

// SectionOf returns the section containing question q.
func (l Layout) SectionOf(q int) (Section, bool) {
	for _, s := range l.Sections {
		if s.Contains(q) {
			return s, true
		}
	}
	return Section{}, false
}

// SectionNames returns section names in sheet order.
func (l Layout) SectionNames() []string {
	names := make([]string, len(l.Sections))
	for i, s := range l.Sections {
		names[i] = s.Name
	}
	return names
}

// Validate checks that the layout is internally consistent: positive
// cardinality, unique option letters, sections that partition
// 1..Questions() in order without gaps, and detection thresholds inside
// their usable ranges.
func (l Layout) Validate() error {
	if l.Columns <= 0 || l.RowsPerColumn <= 0 {
		return fmt.Errorf("%w: grid must have positive columns and rows, got %dx%d",
			ErrInvalidLayout, l.Columns, l.RowsPerColumn)
	}
	if len(l.Options) == 0 {
		return fmt.Errorf("%w: no option letters", ErrInvalidLayout)
	}
	seen := make(map[string]bool, len(l.Options))
	for _, o := range l.Options {
		if o == "" || seen[o] {
			return fmt.Errorf("%w: option letters must be unique and non-empty", ErrInvalidLayout)
		}
		seen[o] = true
	}
	if len(l.Sections) == 0 {
		return fmt.Errorf("%w: no sections", ErrInvalidLayout)
	}
	next := 1
	names := make(map[string]bool, len(l.Sections))
	for _, s := range l.Sections {
		if s.Name == "" || names[s.Name] {
			return fmt.Errorf("%w: section names must be unique and non-empty", ErrInvalidLayout)
		}
		names[s.Name] = true
		if s.First != next || s.Last < s.First {
			return fmt.Errorf("%w: section %q covers %d-%d, expected to start at %d",
				ErrInvalidLayout, s.Name, s.First, s.Last, next)
		}
		next = s.Last + 1
	}
	if next-1 != l.Questions() {
		return fmt.Errorf("%w: sections cover %d questions, grid has %d",
			ErrInvalidLayout, next-1, l.Questions())
	}
	if l.RowThreshold <= 0 {
		return fmt.Errorf("%w: row threshold must be positive", ErrInvalidLayout)
	}
	return l.validateThresholds()
}

func (l Layout) validateThresholds() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: "+format, append([]any{ErrInvalidLayout}, args...)...)
	}

	st := l.Standardize
	if st.CanvasWidth <= 0 || st.CanvasHeight <= 0 {
		return invalid("canvas must be positive, got %dx%d", st.CanvasWidth, st.CanvasHeight)
	}
	if st.Padding < 0 {
		return invalid("padding %d is negative", st.Padding)
	}
	if st.MinShapes < 1 {
		return invalid("min shapes must be at least 1, got %d", st.MinShapes)
	}
	if st.LowPercentile < 0 || st.HighPercentile > 1 || st.LowPercentile >= st.HighPercentile {
		return invalid("percentiles must satisfy 0 <= low < high <= 1, got %v and %v",
			st.LowPercentile, st.HighPercentile)
	}

	for _, b := range []detection.Binarization{l.Binarization, st.Binarization} {
		if b.BlurSigma < 0 {
			return invalid("blur sigma %v is negative", b.BlurSigma)
		}
		if b.BlockSize < 3 {
			return invalid("threshold block size must be at least 3, got %d", b.BlockSize)
		}
		if b.C < 0 || b.C > 255 {
			return invalid("threshold constant %v outside 0-255", b.C)
		}
	}

	for _, f := range []detection.ShapeFilter{l.Bubble, st.Filter} {
		if f.MinArea < 0 || f.MaxArea <= f.MinArea {
			return invalid("area bounds %v-%v are empty", f.MinArea, f.MaxArea)
		}
		if f.MinAspect < 0 || f.MaxAspect <= f.MinAspect {
			return invalid("aspect bounds %v-%v are empty", f.MinAspect, f.MaxAspect)
		}
		if f.MinCircularity < 0 || f.MinCircularity > 1 {
			return invalid("min circularity %v outside 0-1", f.MinCircularity)
		}
	}

	fp := l.Fill
	if fp.InnerMargin < 0 || fp.InnerMargin >= 0.5 {
		return invalid("inner margin %v outside [0, 0.5)", fp.InnerMargin)
	}
	if fp.DarkFraction < 0 || fp.DarkFraction > 1 {
		return invalid("dark fraction %v outside 0-1", fp.DarkFraction)
	}
	if fp.MeanLevel < 0 || fp.MeanLevel > 255 {
		return invalid("mean level %v outside 0-255", fp.MeanLevel)
	}
	return nil
}

// clone returns a deep copy so the caller's slices are not shared.
func (l Layout) clone() Layout {
	l.Options = slices.Clone(l.Options)
	l.Sections = slices.Clone(l.Sections)
	return l
}
