package omr

import (
	"context"
	"fmt"
	"image"
	"os"

	"github.com/ironsheep/omr-scorer/internal/detection"
	"github.com/ironsheep/omr-scorer/internal/imaging"
)

// Pipeline runs the full sheet-scoring chain:
// standardize → detect bubbles → assign grid → classify fills → score.
//
// A Pipeline is immutable after construction and safe for concurrent use.
// Each call allocates its own buffers; nothing is shared between calls.
type Pipeline struct {
	layout    Layout
	partition Partition
	strict    bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithPartition selects the column partition strategy. PartitionByGap is the
// default.
func WithPartition(p Partition) Option {
	return func(pl *Pipeline) { pl.partition = p }
}

// WithStrict makes a bubble count that does not fill the grid exactly a
// hard ErrMisalignedGrid failure instead of a warning.
func WithStrict(strict bool) Option {
	return func(pl *Pipeline) { pl.strict = strict }
}

// NewPipeline validates l and returns a pipeline holding a private copy.
func NewPipeline(l Layout, opts ...Option) (*Pipeline, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	p := &Pipeline{layout: l.clone(), partition: PartitionByGap}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Layout returns a copy of the pipeline's layout.
func (p *Pipeline) Layout() Layout {
	return p.layout.clone()
}

// Diagnostics describes how a detection went, for logs and tool output.
type Diagnostics struct {
	// Shapes is the number of loosely admitted shapes that located the grid.
	Shapes int `json:"shapes"`
	// Bubbles is the number of strictly admitted bubbles on the canvas.
	Bubbles int `json:"bubbles"`
	// Expected is the bubble count of a perfect detection.
	Expected int `json:"expected"`
	// Placed is the number of grid cells that received a bubble.
	Placed int `json:"placed"`
	// Filled is the number of bubbles judged filled.
	Filled int `json:"filled"`
	// Rows is the number of row clusters across the whole sheet.
	Rows      int             `json:"rows"`
	Extent    image.Rectangle `json:"extent"`
	Scale     float64         `json:"scale"`
	Partition string          `json:"partition"`
	Warnings  []string        `json:"warnings,omitempty"`
}

// Misaligned reports whether the bubble count differed from the layout.
func (d Diagnostics) Misaligned() bool {
	return d.Bubbles != d.Expected
}

// Detection is the outcome of running every stage except scoring.
type Detection struct {
	Answers     AnswerSet   `json:"answers"`
	Diagnostics Diagnostics `json:"diagnostics"`

	// Canonical is the standardized canvas the bubbles were found on.
	Canonical *image.NRGBA `json:"-"`

	layout  Layout
	bubbles []detection.Bubble
	grid    *Grid
	marks   *Marks
}

// Result is a scored sheet.
type Result struct {
	Report    Report         `json:"report"`
	Scores    map[string]int `json:"scores"`
	Detection *Detection     `json:"detection"`
}

// Standardize runs only the first stage.
func (p *Pipeline) Standardize(img image.Image) (*detection.Standardized, error) {
	return detection.Standardize(img, p.layout.Standardize)
}

// Detect runs standardization, bubble detection, grid assignment and fill
// classification. ctx is checked between stages; a stage in progress is not
// interrupted.
//
// # Errors
//
//   - ErrGridNotFound when too few shapes locate the grid
//   - ErrMisalignedGrid in strict mode when the bubble count is off
//   - ctx.Err() when cancelled between stages
func (p *Pipeline) Detect(ctx context.Context, img image.Image) (*Detection, error) {
	l := p.layout

	std, err := p.Standardize(img)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	gray := imaging.Grayscale(std.Image)
	bubbles := detection.DetectBubbles(gray, l.Bubble, l.Binarization)
	if p.strict {
		if err := CheckCount(bubbles, l); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	grid := Assign(bubbles, l, p.partition)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	marks := Mark(gray, grid, l)

	return &Detection{
		Answers: marks.Answers(l),
		Diagnostics: Diagnostics{
			Shapes:    std.Shapes,
			Bubbles:   len(bubbles),
			Expected:  l.ExpectedBubbles(),
			Placed:    grid.Placed(),
			Filled:    marks.Count(),
			Rows:      grid.Rows,
			Extent:    std.Extent,
			Scale:     std.Placement.Scale,
			Partition: p.partition.String(),
			Warnings:  grid.Warnings,
		},
		Canonical: std.Image,
		layout:    l,
		bubbles:   bubbles,
		grid:      grid,
		marks:     marks,
	}, nil
}

// Score runs Detect and scores the detected answers against key.
func (p *Pipeline) Score(ctx context.Context, img image.Image, key AnswerSet) (*Result, error) {
	det, err := p.Detect(ctx, img)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	report := Score(det.Answers, key, p.layout)
	return &Result{Report: report, Scores: report.Map(), Detection: det}, nil
}

// ScoreBytes decodes an uploaded image and scores it.
func (p *Pipeline) ScoreBytes(ctx context.Context, data []byte, key AnswerSet) (*Result, error) {
	img, err := DecodeImage(data)
	if err != nil {
		return nil, err
	}
	return p.Score(ctx, img, key)
}

// ScoreFile reads and scores the image at path.
func (p *Pipeline) ScoreFile(ctx context.Context, path string, key AnswerSet) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return p.ScoreBytes(ctx, data, key)
}

// DecodeImage decodes image bytes, mapping any decode failure to
// ErrUnreadableImage.
func DecodeImage(data []byte) (image.Image, error) {
	img, _, err := imaging.DecodeBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableImage, err)
	}
	return img, nil
}
