package omr

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"a", "a"},
		{"B", "b"},
		{"a, B", "ab"},
		{"b,a", "ab"},
		{"c a", "ac"},
		{"d-c.b", "bcd"},
		{"", ""},
		{" , ", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
	if Normalize("a, B") != Normalize("b,a") {
		t.Error("equivalent multi-select answers normalise differently")
	}
}

func TestAnswerSet_Lookup(t *testing.T) {
	a := AnswerSet{
		"Python": {"Q1": "a", "2": "b"},
		"EDA":    {"q21": "c"},
	}
	tests := []struct {
		section string
		q       int
		want    string
		ok      bool
	}{
		{"Python", 1, "a", true},
		{"Python", 2, "b", true},
		{"EDA", 21, "c", true},
		{"Python", 3, "", false},
		{"SQL", 41, "", false},
	}
	for _, tt := range tests {
		got, ok := a.Lookup(tt.section, tt.q)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Lookup(%s, %d): got (%q, %v), want (%q, %v)",
				tt.section, tt.q, got, ok, tt.want, tt.ok)
		}
	}
}

func TestAnswerSet_Canonical(t *testing.T) {
	a := AnswerSet{"Python": {"1": " A ", "Q2": "b,C", "bogus": "d"}}
	c := a.Canonical()

	if got := c["Python"]["Q1"]; got != "a" {
		t.Errorf("Q1: got %q, want %q", got, "a")
	}
	if got := c["Python"]["Q2"]; got != "b,c" {
		t.Errorf("Q2: got %q, want %q", got, "b,c")
	}
	if _, ok := c["Python"]["bogus"]; ok {
		t.Error("non-numeric key should be dropped")
	}
	if c.Len() != 2 {
		t.Errorf("Len: got %d, want 2", c.Len())
	}
}
