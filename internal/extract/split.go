package extract

import (
	"regexp"
	"strings"
)

// Delimiter separates sub-values inside a compound cell.
type Delimiter struct {
	Name    string
	pattern *regexp.Regexp
}

var (
	Slash     = Delimiter{Name: "slash", pattern: regexp.MustCompile(`/`)}
	Pipe      = Delimiter{Name: "pipe", pattern: regexp.MustCompile(`\|`)}
	Comma     = Delimiter{Name: "comma", pattern: regexp.MustCompile(`,`)}
	WideSpace = Delimiter{Name: "wide_space", pattern: regexp.MustCompile(`\s{2,}`)}
	Newline   = Delimiter{Name: "newline", pattern: regexp.MustCompile(`\n`)}
	Semicolon = Delimiter{Name: "semicolon", pattern: regexp.MustCompile(`;`)}
)

// DefaultDelimiters is the priority order used by DetectDelimited.
var DefaultDelimiters = []Delimiter{Slash, Pipe, Comma, WideSpace, Newline, Semicolon}

// Segment is one sub-value paired with the hint segment at the same position.
type Segment struct {
	Value string
	Hint  string
}

// Applicable reports whether d occurs in both the text and the hint. A
// delimiter in the hint documents a compound column such as "NPWP/NIK".
func (d Delimiter) Applicable(text, hint string) bool {
	return d.pattern.MatchString(text) && d.pattern.MatchString(strings.ToUpper(hint))
}

// Split cuts text and hint by d and pairs the pieces by position. Missing
// hint pieces are empty; empty value pieces are dropped.
func (d Delimiter) Split(text, hint string) []Segment {
	values := d.pattern.Split(text, -1)
	hints := d.pattern.Split(strings.ToUpper(hint), -1)

	n := max(len(values), len(hints))
	segs := make([]Segment, 0, len(values))
	for i := 0; i < n; i++ {
		var v, h string
		if i < len(values) {
			v = strings.TrimSpace(values[i])
		}
		if i < len(hints) {
			h = strings.TrimSpace(hints[i])
		}
		if v == "" {
			continue
		}
		segs = append(segs, Segment{Value: v, Hint: h})
	}
	return segs
}

// Split applies the first delimiter from priority that is applicable to
// both text and hint. It returns nil when none applies.
func Split(text, hint string, priority []Delimiter) []Segment {
	for _, d := range priority {
		if d.Applicable(text, hint) {
			return d.Split(text, hint)
		}
	}
	return nil
}
