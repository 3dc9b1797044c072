package omr

import "math"

// TotalKey is the report map key holding the overall score.
const TotalKey = "Total"

// SectionScore is the number of correct answers in one section.
type SectionScore struct {
	Name      string `json:"name"`
	Correct   int    `json:"correct"`
	Questions int    `json:"questions"`
}

// Report is the outcome of scoring one sheet. Sections are in layout order.
type Report struct {
	Sections []SectionScore `json:"sections"`
	Total    int            `json:"total"`
	Possible int            `json:"possible"`
}

// Map returns {section: correct, ..., "Total": total}.
func (r Report) Map() map[string]int {
	m := make(map[string]int, len(r.Sections)+1)
	for _, s := range r.Sections {
		m[s.Name] = s.Correct
	}
	m[TotalKey] = r.Total
	return m
}

// Percentage returns Total/Possible as a percentage rounded to 2 places.
func (r Report) Percentage() float64 {
	if r.Possible == 0 {
		return 0
	}
	return math.Round(float64(r.Total)/float64(r.Possible)*10000) / 100
}

// Score compares detected answers against key, section by section.
//
// Both sides are normalised before comparison. An empty answer on either
// side never matches, so unanswered questions and questions the key leaves
// out score nothing. Multi-select answers match only when the letter sets
// are identical.
func Score(detected, key AnswerSet, l Layout) Report {
	report := Report{
		Sections: make([]SectionScore, 0, len(l.Sections)),
		Possible: l.Questions(),
	}
	for _, s := range l.Sections {
		score := SectionScore{Name: s.Name, Questions: s.Len()}
		for q := s.First; q <= s.Last; q++ {
			got, _ := detected.Lookup(s.Name, q)
			want, _ := key.Lookup(s.Name, q)
			got, want = Normalize(got), Normalize(want)
			if got != "" && got == want {
				score.Correct++
			}
		}
		report.Sections = append(report.Sections, score)
		report.Total += score.Correct
	}
	return report
}
