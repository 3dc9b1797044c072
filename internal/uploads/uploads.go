// Package uploads files sheet photos by set and student so they can be
// scored later by name instead of by path.
package uploads

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ironsheep/omr-scorer/internal/answerkey"
)

var (
	// ErrNotFound is returned when no photo is filed for a student and set.
	ErrNotFound = errors.New("sheet image not found")

	// ErrUnsupportedType is returned when saving a file whose extension is
	// not one of Extensions.
	ErrUnsupportedType = errors.New("unsupported image type")
)

// Extensions lists the image types the store accepts, in the order Find
// looks for them. Every one of them can be decoded for scoring.
var Extensions = []string{".jpg", ".jpeg", ".png", ".webp", ".bmp", ".tif", ".tiff", ".gif"}

// Store lays photos out as <dir>/<SET>/<Student_Name>_<roll>_<SET><ext>.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the root directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) base(student, roll, set string) (string, string, error) {
	set, err := answerkey.CanonicalSet(set)
	if err != nil {
		return "", "", err
	}
	student = strings.ReplaceAll(strings.TrimSpace(student), " ", "_")
	roll = strings.TrimSpace(roll)
	if student == "" || roll == "" {
		return "", "", fmt.Errorf("student name and roll number are required")
	}
	for _, part := range []string{student, roll} {
		if strings.ContainsAny(part, `/\`) || part == "." || part == ".." {
			return "", "", fmt.Errorf("invalid path component %q", part)
		}
	}
	return filepath.Join(s.dir, set), fmt.Sprintf("%s_%s_%s", student, roll, set), nil
}

// Save copies r into the store and returns the written path. ext may omit
// the leading dot and must name one of Extensions; an existing file for the
// same student and set is replaced.
func (s *Store) Save(student, roll, set, ext string, r io.Reader) (string, error) {
	dir, base, err := s.base(student, roll, set)
	if err != nil {
		return "", err
	}
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if !slices.Contains(Extensions, ext) {
		return "", fmt.Errorf("%w: %q (want one of %s)", ErrUnsupportedType, ext, strings.Join(Extensions, ", "))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	path := filepath.Join(dir, base+ext)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// Find returns the filed photo for a student and set, trying Extensions in
// order.
func (s *Store) Find(student, roll, set string) (string, error) {
	dir, base, err := s.base(student, roll, set)
	if err != nil {
		return "", err
	}
	for _, ext := range Extensions {
		path := filepath.Join(dir, base+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s in %s", ErrNotFound, base, dir)
}
