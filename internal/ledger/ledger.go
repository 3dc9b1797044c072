// Package ledger records scored sheets.
//
// Two backends implement Ledger: a CSV file in the layout instructors open in a
// spreadsheet, and a Postgres table for shared deployments.
package ledger

import (
	"context"
	"errors"

	"github.com/ironsheep/omr-scorer/internal/omr"
)

// ErrExists is returned when creating a ledger file that already exists.
var ErrExists = errors.New("ledger already exists")

// Row is one scored sheet.
type Row struct {
	StudentName   string         `json:"student_name"`
	RollNumber    string         `json:"roll_number"`
	Scores        map[string]int `json:"section_scores"`
	MarksObtained int            `json:"marks_obtained"`
	TotalMarks    int            `json:"total_marks"`
	Percentage    float64        `json:"percentage"`
	SetName       string         `json:"set_name"`
}

// NewRow builds a row from a score report.
func NewRow(student, roll, set string, r omr.Report) Row {
	scores := make(map[string]int, len(r.Sections))
	for _, s := range r.Sections {
		scores[s.Name] = s.Correct
	}
	return Row{
		StudentName:   student,
		RollNumber:    roll,
		Scores:        scores,
		MarksObtained: r.Total,
		TotalMarks:    r.Possible,
		Percentage:    r.Percentage(),
		SetName:       set,
	}
}

// Ledger appends and lists scored rows. Implementations are safe for
// concurrent use.
type Ledger interface {
	Append(ctx context.Context, row Row) error
	List(ctx context.Context) ([]Row, error)
	Close() error
}
