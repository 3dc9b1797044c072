package ledger

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Fixed CSV columns around the per-section scores.
const (
	colStudent    = "Student Name"
	colRoll       = "Roll Number"
	colMarks      = "Marks Obtained"
	colTotal      = "Total Marks"
	colPercentage = "Percentage"
	colSet        = "Set Name"
)

// Header returns the CSV header for the given section names.
func Header(sections []string) []string {
	h := []string{colStudent, colRoll}
	h = append(h, sections...)
	return append(h, colMarks, colTotal, colPercentage, colSet)
}

// file locks are per path so two CSVLedgers on the same file still
// serialise their appends.
var (
	fileLocksMu sync.Mutex
	fileLocks   = make(map[string]*sync.Mutex)
)

func lockFor(path string) *sync.Mutex {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	fileLocksMu.Lock()
	defer fileLocksMu.Unlock()
	mu, ok := fileLocks[abs]
	if !ok {
		mu = &sync.Mutex{}
		fileLocks[abs] = mu
	}
	return mu
}

// CSVLedger appends rows to a CSV file. The header is written when the file
// is new or empty.
type CSVLedger struct {
	path     string
	sections []string
	mu       *sync.Mutex
}

// NewCSV returns a ledger writing to path. The file is created lazily on the
// first Append.
func NewCSV(path string, sections []string) *CSVLedger {
	return &CSVLedger{
		path:     path,
		sections: append([]string(nil), sections...),
		mu:       lockFor(path),
	}
}

// Append writes one row, preceded by the header when the file is new.
func (l *CSVLedger) Append(ctx context.Context, row Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if dir := filepath.Dir(l.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create ledger directory: %w", err)
		}
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat ledger: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(Header(l.sections)); err != nil {
			return fmt.Errorf("failed to write ledger header: %w", err)
		}
	}
	if err := w.Write(l.record(row)); err != nil {
		return fmt.Errorf("failed to write ledger row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write ledger row: %w", err)
	}
	return nil
}

func (l *CSVLedger) record(row Row) []string {
	rec := []string{row.StudentName, row.RollNumber}
	for _, s := range l.sections {
		rec = append(rec, strconv.Itoa(row.Scores[s]))
	}
	return append(rec,
		strconv.Itoa(row.MarksObtained),
		strconv.Itoa(row.TotalMarks),
		strconv.FormatFloat(row.Percentage, 'f', 2, 64),
		row.SetName,
	)
}

// List reads every row. A missing file yields no rows. Section columns are
// taken from the file's own header, so files written with a different
// section list still read back.
func (l *CSVLedger) List(ctx context.Context) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return []Row{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return []Row{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger header: %w", err)
	}

	rows := make([]Row, 0)
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read ledger: %w", err)
		}
		rows = append(rows, parseRecord(header, rec))
	}
	return rows, nil
}

func parseRecord(header, rec []string) Row {
	row := Row{Scores: make(map[string]int)}
	for i, col := range header {
		if i >= len(rec) {
			break
		}
		v := strings.TrimSpace(rec[i])
		switch col {
		case colStudent:
			row.StudentName = v
		case colRoll:
			row.RollNumber = v
		case colMarks:
			row.MarksObtained, _ = strconv.Atoi(v)
		case colTotal:
			row.TotalMarks, _ = strconv.Atoi(v)
		case colPercentage:
			row.Percentage, _ = strconv.ParseFloat(v, 64)
		case colSet:
			row.SetName = v
		default:
			row.Scores[col], _ = strconv.Atoi(v)
		}
	}
	return row
}

// Close is a no-op; files are opened per call.
func (l *CSVLedger) Close() error {
	return nil
}

// CreateCSV creates an empty ledger file holding only the header. ".csv" is
// appended when missing. It fails with ErrExists if the file is present.
func CreateCSV(dir, name string, sections []string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid ledger name %q", name)
	}
	if !strings.HasSuffix(name, ".csv") {
		name += ".csv"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create ledger directory: %w", err)
	}
	path := filepath.Join(dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if errors.Is(err, os.ErrExist) {
		return "", fmt.Errorf("%w: %s", ErrExists, name)
	}
	if err != nil {
		return "", fmt.Errorf("failed to create ledger: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Header(sections)); err != nil {
		return "", fmt.Errorf("failed to write ledger header: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to write ledger header: %w", err)
	}
	return name, nil
}

// ListCSV returns the names of the CSV files in dir, sorted. A missing
// directory yields no names.
func ListCSV(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list ledgers: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".csv") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
