package answerkey

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"

	"github.com/ironsheep/omr-scorer/internal/omr"
)

// answerLine matches "12. a", "12 - b,c", "12 a, d" and similar.
var answerLine = regexp.MustCompile(`^(\d+)[\s\-.]+([a-dA-D, ]+)`)

// Aliases maps alternative section headers to canonical section names of the
// default layout. Keys are compared case-insensitively.
var Aliases = map[string]string{
	"powerbi":    "Power BI",
	"power bi":   "Power BI",
	"adv stats":  "Statistics",
	"statastics": "Statistics",
}

// Parse reads a pasted answer-key block.
//
// The block is line oriented. A line that names a section of l (or one of
// Aliases) opens that section; answer lines such as "7. a" or "8 - b, c"
// add Q7 and Q8 to the open section. Answer lines before the first header
// and lines matching nothing are ignored. Answers are lowercased with spaces
// removed, so "B, C" is stored as "b,c".
//
// Sections that end up with no answers are dropped. When nothing at all is
// parsed, Parse returns ErrEmptyKey.
func Parse(text string, l omr.Layout) (omr.AnswerSet, error) {
	key := make(omr.AnswerSet)
	current := ""

	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if section, ok := sectionHeader(line, l); ok {
			current = section
			continue
		}
		m := answerLine.FindStringSubmatch(line)
		if m == nil || current == "" {
			continue
		}
		q, err := strconv.Atoi(m[1])
		if err != nil || q <= 0 {
			continue
		}
		answer := strings.ToLower(strings.ReplaceAll(m[2], " ", ""))
		answer = strings.Trim(answer, ",")
		if answer == "" {
			continue
		}
		key.Set(current, q, answer)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	if key.Len() == 0 {
		return nil, ErrEmptyKey
	}
	return key, nil
}

func sectionHeader(line string, l omr.Layout) (string, bool) {
	lower := strings.ToLower(line)
	for _, name := range l.SectionNames() {
		if lower == strings.ToLower(name) {
			return name, true
		}
	}
	if name, ok := Aliases[lower]; ok {
		return name, true
	}
	return "", false
}
