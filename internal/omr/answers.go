package omr

import (
	"slices"
	"strconv"
	"strings"
	"unicode"
)

// AnswerSet maps section name → question key → answer string.
//
// Question keys are "Q<n>". Detected sets hold an entry for every question
// (empty when nothing is marked); keys hold only the questions they grade.
type AnswerSet map[string]map[string]string

// QuestionKey returns the canonical key for question q.
func QuestionKey(q int) string {
	return "Q" + strconv.Itoa(q)
}

// Normalize reduces an answer to sorted, lowercase letters with every
// separator removed, so "a, B" and "b,a" both become "ab".
func Normalize(answer string) string {
	letters := make([]rune, 0, len(answer))
	for _, r := range strings.ToLower(answer) {
		if unicode.IsLetter(r) {
			letters = append(letters, r)
		}
	}
	slices.Sort(letters)
	return string(letters)
}

// Lookup returns the answer for question q in section.
//
// "Q<n>" is the canonical key. Bare "<n>" and lowercase "q<n>" are accepted
// as well so key files written by other tools still grade.
func (a AnswerSet) Lookup(section string, q int) (string, bool) {
	answers, ok := a[section]
	if !ok {
		return "", false
	}
	n := strconv.Itoa(q)
	for _, k := range []string{"Q" + n, n, "q" + n} {
		if v, ok := answers[k]; ok {
			return v, true
		}
	}
	return "", false
}

// Set stores answer for question q in section under the canonical key.
func (a AnswerSet) Set(section string, q int, answer string) {
	answers, ok := a[section]
	if !ok {
		answers = make(map[string]string)
		a[section] = answers
	}
	answers[QuestionKey(q)] = answer
}

// Len returns the number of non-empty answers across all sections.
func (a AnswerSet) Len() int {
	n := 0
	for _, answers := range a {
		for _, v := range answers {
			if v != "" {
				n++
			}
		}
	}
	return n
}

// Canonical rewrites every question key to "Q<n>" and lowercases answers.
// Keys that are not question numbers are dropped.
func (a AnswerSet) Canonical() AnswerSet {
	out := make(AnswerSet, len(a))
	for section, answers := range a {
		for k, v := range answers {
			q, ok := parseQuestionKey(k)
			if !ok {
				continue
			}
			out.Set(section, q, strings.ToLower(strings.TrimSpace(v)))
		}
	}
	return out
}

func parseQuestionKey(k string) (int, bool) {
	k = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(k), "Q"), "q")
	q, err := strconv.Atoi(k)
	if err != nil || q <= 0 {
		return 0, false
	}
	return q, true
}
