package answerkey

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/ironsheep/omr-scorer/internal/omr"
)

var (
	// ErrKeyNotFound is returned when no key file exists for a set.
	ErrKeyNotFound = errors.New("answer key not found")

	// ErrEmptyKey is returned when a block or file holds no answers.
	ErrEmptyKey = errors.New("no answers parsed from block")

	// ErrInvalidSet is returned for set names that cannot be used as a
	// file name component.
	ErrInvalidSet = errors.New("invalid set name")
)

var setName = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

const (
	filePrefix = "answers_"
	fileSuffix = ".json"
)

// Store keeps one answer key per set as answers_<SET>.json in a directory.
//
// Set names are case-insensitive and stored upper-cased. Writes are
// serialised and land atomically via a temp file and rename; reads need no
// lock because a reader only ever sees a complete file.
type Store struct {
	dir string
	mu  sync.Mutex
}

// NewStore returns a store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create answer key directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory the store writes to.
func (s *Store) Dir() string {
	return s.dir
}

// CanonicalSet upper-cases and validates a set name.
func CanonicalSet(set string) (string, error) {
	set = strings.ToUpper(strings.TrimSpace(set))
	if !setName.MatchString(set) {
		return "", fmt.Errorf("%w: %q", ErrInvalidSet, set)
	}
	return set, nil
}

func (s *Store) path(set string) string {
	return filepath.Join(s.dir, filePrefix+set+fileSuffix)
}

// Save writes key for set, replacing any existing key. It returns the number
// of answers written.
func (s *Store) Save(set string, key omr.AnswerSet) (int, error) {
	set, err := CanonicalSet(set)
	if err != nil {
		return 0, err
	}
	key = key.Canonical()
	n := key.Len()
	if n == 0 {
		return 0, ErrEmptyKey
	}

	data, err := json.MarshalIndent(key, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("failed to encode answer key: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, filePrefix+set+"-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("failed to write answer key: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("failed to write answer key: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(set)); err != nil {
		return 0, fmt.Errorf("failed to store answer key: %w", err)
	}
	return n, nil
}

// Load reads the key for set. Keys are returned in canonical "Q<n>" form.
//
// # Errors
//
//   - ErrKeyNotFound (naming the set) when no key file exists
//   - ErrInvalidSet for unusable set names
//   - ErrEmptyKey when the file holds no answers
func (s *Store) Load(set string) (omr.AnswerSet, error) {
	set, err := CanonicalSet(set)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(set))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: set %s", ErrKeyNotFound, set)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read answer key %s: %w", set, err)
	}

	var key omr.AnswerSet
	if err := json.Unmarshal(data, &key); err != nil {
		return nil, fmt.Errorf("failed to decode answer key %s: %w", set, err)
	}
	key = key.Canonical()
	if key.Len() == 0 {
		return nil, fmt.Errorf("%w: set %s", ErrEmptyKey, set)
	}
	return key, nil
}

// Exists reports whether a key is stored for set.
func (s *Store) Exists(set string) bool {
	set, err := CanonicalSet(set)
	if err != nil {
		return false
	}
	_, err = os.Stat(s.path(set))
	return err == nil
}

// Sets lists stored set names in sorted order.
func (s *Store) Sets() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list answer keys: %w", err)
	}
	sets := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		sets = append(sets, strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix))
	}
	sort.Strings(sets)
	return sets, nil
}
