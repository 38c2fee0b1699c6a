package mapping

import (
	"fmt"
	"strings"
)

// CombineHeaders merges a two-row header. The parent row is forward-filled
// across empty cells (merged ranges read as one value followed by blanks).
// A column is labeled "<parent> - <child>" only when its parent also
// covers an adjacent column; otherwise it takes the child label, then the
// parent label, then "Column_<i>".
func CombineHeaders(parent, child []string) []string {
	n := max(len(parent), len(child))

	filled := make([]string, n)
	last := ""
	for i := 0; i < n; i++ {
		if p := headerLabel(parent, i); p != "" {
			last = p
		}
		filled[i] = last
	}

	out := make([]string, n)
	for i := 0; i < n; i++ {
		p, c := filled[i], headerLabel(child, i)
		switch {
		case p != "" && c != "":
			spans := (i > 0 && filled[i-1] == p) || (i < n-1 && filled[i+1] == p)
			if spans {
				out[i] = p + " - " + c
			} else {
				out[i] = c
			}
		case c != "":
			out[i] = c
		case p != "":
			out[i] = p
		default:
			out[i] = fmt.Sprintf("Column_%d", i)
		}
	}
	return out
}

// SingleHeader trims a header row, naming empty cells "Unnamed_<i>".
func SingleHeader(row []string) []string {
	out := make([]string, len(row))
	for i := range row {
		if l := headerLabel(row, i); l != "" {
			out[i] = l
		} else {
			out[i] = fmt.Sprintf("Unnamed_%d", i)
		}
	}
	return out
}

func headerLabel(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	l := strings.TrimSpace(row[i])
	if l == "nan" {
		return ""
	}
	return l
}
