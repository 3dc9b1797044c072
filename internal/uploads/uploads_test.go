package uploads

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStore_SaveFind(t *testing.T) {
	s := NewStore(t.TempDir())

	path, err := s.Save("Ada Lovelace", "42", "a", "PNG", strings.NewReader("photo"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	want := filepath.Join(s.Dir(), "A", "Ada_Lovelace_42_A.png")
	if path != want {
		t.Errorf("Save path: got %s, want %s", path, want)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "photo" {
		t.Errorf("content: got %q", data)
	}

	found, err := s.Find("Ada Lovelace", "42", "A")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if found != want {
		t.Errorf("Find: got %s, want %s", found, want)
	}
}

func TestStore_FindPrefersJPEG(t *testing.T) {
	s := NewStore(t.TempDir())
	for _, ext := range []string{".png", ".jpg"} {
		if _, err := s.Save("Bo", "7", "B", ext, strings.NewReader("x")); err != nil {
			t.Fatal(err)
		}
	}
	got, err := s.Find("Bo", "7", "b")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Ext(got) != ".jpg" {
		t.Errorf("got %s, want the .jpg", got)
	}
}

func TestStore_Errors(t *testing.T) {
	s := NewStore(t.TempDir())

	if _, err := s.Find("Nobody", "1", "A"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Find: got %v, want ErrNotFound", err)
	}

	tests := []struct {
		name, student, roll, set string
	}{
		{"no student", "", "1", "A"},
		{"no roll", "Ada", " ", "A"},
		{"bad set", "Ada", "1", "../A"},
		{"path in name", "../../etc", "1", "A"},
		{"dot roll", "Ada", "..", "A"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Save(tt.student, tt.roll, tt.set, ".png", strings.NewReader("x")); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestStore_Extensions(t *testing.T) {
	s := NewStore(t.TempDir())

	for _, ext := range []string{".webp", "BMP", ".tiff"} {
		student := "Cy" + strings.Trim(ext, ".")
		if _, err := s.Save(student, "3", "C", ext, strings.NewReader("x")); err != nil {
			t.Fatalf("Save(%s): %v", ext, err)
		}
		got, err := s.Find(student, "3", "C")
		if err != nil {
			t.Errorf("Find after saving %s: %v", ext, err)
			continue
		}
		if want := strings.ToLower("." + strings.Trim(ext, ".")); filepath.Ext(got) != want {
			t.Errorf("Find: got %s, want extension %s", got, want)
		}
	}

	for _, ext := range []string{".pdf", "", ".txt"} {
		if _, err := s.Save("Cy", "3", "C", ext, strings.NewReader("x")); !errors.Is(err, ErrUnsupportedType) {
			t.Errorf("Save(%q): got %v, want ErrUnsupportedType", ext, err)
		}
	}
}
