package omr

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ironsheep/omr-scorer/internal/detection"
	"gonum.org/v1/gonum/stat"
)

// Partition selects how sorted bubbles are split into columns.
type Partition int

const (
	// PartitionByGap cuts at the widest horizontal gaps between consecutive
	// bubble centres. A missing or extra bubble only affects its own column.
	PartitionByGap Partition = iota

	// PartitionByCount gives every column len/Columns bubbles. A single
	// missing bubble shifts every later column.
	PartitionByCount
)

// String returns the config name of the partition.
func (p Partition) String() string {
	switch p {
	case PartitionByCount:
		return "count"
	default:
		return "gap"
	}
}

// ParsePartition parses "gap" or "count" (case-insensitive).
func ParsePartition(s string) (Partition, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "gap":
		return PartitionByGap, nil
	case "count":
		return PartitionByCount, nil
	default:
		return PartitionByGap, fmt.Errorf("unknown partition %q (want gap or count)", s)
	}
}

// Grid holds bubbles indexed by (column, row, option). Cells may be empty.
type Grid struct {
	columns, rows, options int
	cells                  []detection.Bubble
	present                []bool

	// Rows is the number of row clusters found before column splitting.
	Rows int

	// Warnings lists irregularities found while assigning.
	Warnings []string
}

func newGrid(l Layout) *Grid {
	n := l.Columns * l.RowsPerColumn * len(l.Options)
	return &Grid{
		columns: l.Columns,
		rows:    l.RowsPerColumn,
		options: len(l.Options),
		cells:   make([]detection.Bubble, n),
		present: make([]bool, n),
	}
}

func (g *Grid) index(col, row, opt int) (int, bool) {
	if col < 0 || col >= g.columns || row < 0 || row >= g.rows || opt < 0 || opt >= g.options {
		return 0, false
	}
	return (col*g.rows+row)*g.options + opt, true
}

// At returns the bubble at a cell, or false when the cell is empty or out
// of range.
func (g *Grid) At(col, row, opt int) (detection.Bubble, bool) {
	i, ok := g.index(col, row, opt)
	if !ok || !g.present[i] {
		return detection.Bubble{}, false
	}
	return g.cells[i], true
}

func (g *Grid) set(col, row, opt int, b detection.Bubble) bool {
	i, ok := g.index(col, row, opt)
	if !ok || g.present[i] {
		return false
	}
	g.cells[i] = b
	g.present[i] = true
	return true
}

// Placed returns the number of occupied cells.
func (g *Grid) Placed() int {
	n := 0
	for _, p := range g.present {
		if p {
			n++
		}
	}
	return n
}

func (g *Grid) warnf(format string, args ...any) {
	g.Warnings = append(g.Warnings, fmt.Sprintf(format, args...))
}

// CheckCount returns ErrMisalignedGrid when the bubble count does not fill
// the layout exactly.
func CheckCount(bubbles []detection.Bubble, l Layout) error {
	if len(bubbles) != l.ExpectedBubbles() {
		return fmt.Errorf("%w: detected %d bubbles, layout expects %d",
			ErrMisalignedGrid, len(bubbles), l.ExpectedBubbles())
	}
	return nil
}

// Assign maps unordered bubbles onto the layout's grid.
//
// # Algorithm
//
//  1. Sort by top edge; a bubble starts a new row when its top is at least
//     l.RowThreshold below the previous bubble's
//  2. Flatten rows in order and stable-sort by left edge
//  3. Split into l.Columns buckets using p
//  4. Within a column, sort by top edge and form rows, then order each row
//     left to right for option letters
//
// Assignment is best-effort: surplus bubbles are dropped and short rows leave
// empty cells. Irregularities are recorded in Grid.Warnings. Use CheckCount
// first when a misaligned sheet must be rejected.
func Assign(bubbles []detection.Bubble, l Layout, p Partition) *Grid {
	g := newGrid(l)
	if len(bubbles) == 0 {
		g.warnf("no bubbles detected")
		return g
	}
	if err := CheckCount(bubbles, l); err != nil {
		g.warnf("%v", err)
	}

	rows := clusterRows(bubbles, l.RowThreshold)
	g.Rows = len(rows)

	flat := make([]detection.Bubble, 0, len(bubbles))
	for _, r := range rows {
		flat = append(flat, r...)
	}
	sort.SliceStable(flat, func(i, j int) bool { return flat[i].X < flat[j].X })

	var columns [][]detection.Bubble
	switch p {
	case PartitionByCount:
		columns = partitionByCount(flat, l.Columns)
	default:
		columns = partitionByGap(flat, l.Columns)
	}

	for c, col := range columns {
		sort.SliceStable(col, func(i, j int) bool { return col[i].Y < col[j].Y })

		var groups [][]detection.Bubble
		if p == PartitionByGap {
			groups = clusterRows(col, l.RowThreshold)
			if len(groups) != l.RowsPerColumn {
				g.warnf("column %d: found %d rows, expected %d; grouping by %d",
					c+1, len(groups), l.RowsPerColumn, len(l.Options))
				groups = chunk(col, len(l.Options))
			}
		} else {
			groups = chunk(col, len(l.Options))
		}
		if len(groups) > l.RowsPerColumn {
			g.warnf("column %d: %d surplus rows dropped", c+1, len(groups)-l.RowsPerColumn)
			groups = groups[:l.RowsPerColumn]
		}
		placeRows(g, c, groups, len(l.Options))
	}
	return g
}

// clusterRows groups bubbles by vertical band. The input is not modified.
func clusterRows(bubbles []detection.Bubble, threshold int) [][]detection.Bubble {
	sorted := make([]detection.Bubble, len(bubbles))
	copy(sorted, bubbles)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Y < sorted[j].Y })

	var rows [][]detection.Bubble
	var current []detection.Bubble
	lastY := 0
	for _, b := range sorted {
		if len(current) > 0 && b.Y-lastY >= threshold {
			rows = append(rows, current)
			current = nil
		}
		current = append(current, b)
		lastY = b.Y
	}
	if len(current) > 0 {
		rows = append(rows, current)
	}
	return rows
}

func chunk(bubbles []detection.Bubble, size int) [][]detection.Bubble {
	var groups [][]detection.Bubble
	for i := 0; i < len(bubbles); i += size {
		end := min(i+size, len(bubbles))
		groups = append(groups, bubbles[i:end])
	}
	return groups
}

func partitionByCount(sorted []detection.Bubble, columns int) [][]detection.Bubble {
	per := len(sorted) / columns
	out := make([][]detection.Bubble, columns)
	for c := range out {
		out[c] = append([]detection.Bubble(nil), sorted[c*per:(c+1)*per]...)
	}
	return out
}

func partitionByGap(sorted []detection.Bubble, columns int) [][]detection.Bubble {
	if columns <= 1 || len(sorted) < columns {
		return partitionByCount(sorted, columns)
	}

	type gap struct {
		at    int
		width float64
	}
	gaps := make([]gap, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		gaps = append(gaps, gap{at: i, width: sorted[i].CenterX() - sorted[i-1].CenterX()})
	}
	sort.SliceStable(gaps, func(i, j int) bool { return gaps[i].width > gaps[j].width })

	cuts := make([]int, 0, columns-1)
	for _, g := range gaps[:columns-1] {
		cuts = append(cuts, g.at)
	}
	sort.Ints(cuts)

	out := make([][]detection.Bubble, 0, columns)
	start := 0
	for _, cut := range cuts {
		out = append(out, append([]detection.Bubble(nil), sorted[start:cut]...))
		start = cut
	}
	return append(out, append([]detection.Bubble(nil), sorted[start:]...))
}

// placeRows writes one column's row groups into the grid. Full rows take
// option letters in left-to-right order. Short rows snap each bubble to the
// nearest option centre learned from the column's full rows, so a missing
// bubble leaves its own cell empty rather than shifting its neighbours.
func placeRows(g *Grid, col int, groups [][]detection.Bubble, options int) {
	centres := optionCentres(groups, options)
	for r, row := range groups {
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })

		if len(row) >= options || centres == nil {
			for o := 0; o < len(row) && o < options; o++ {
				g.set(col, r, o, row[o])
			}
			if len(row) > options {
				g.warnf("column %d row %d: %d surplus bubbles dropped", col+1, r+1, len(row)-options)
			}
			continue
		}
		for _, b := range row {
			if !g.set(col, r, nearest(centres, b.CenterX()), b) {
				g.warnf("column %d row %d: two bubbles claim the same option", col+1, r+1)
			}
		}
	}
}

// optionCentres averages the x-centre of each option over the rows that
// hold exactly one bubble per option. Nil when there are none.
func optionCentres(groups [][]detection.Bubble, options int) []float64 {
	samples := make([][]float64, options)
	for _, row := range groups {
		if len(row) != options {
			continue
		}
		sorted := make([]detection.Bubble, len(row))
		copy(sorted, row)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })
		for o, b := range sorted {
			samples[o] = append(samples[o], b.CenterX())
		}
	}
	if len(samples[0]) == 0 {
		return nil
	}
	centres := make([]float64, options)
	for o, xs := range samples {
		centres[o] = stat.Mean(xs, nil)
	}
	return centres
}

func nearest(centres []float64, x float64) int {
	best, bestDist := 0, -1.0
	for i, c := range centres {
		d := c - x
		if d < 0 {
			d = -d
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
