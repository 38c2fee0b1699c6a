package extract

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Extract returns every field recognized in text. hint is the name of
// the column the cell came from and is only used for disambiguation.
// Empty or whitespace-only text yields an empty result.
func Extract(text, hint string) Result {
	return Run(Detectors, text, hint)
}

// ExtractCell is Extract for a nullable cell; nil yields an empty result.
func ExtractCell(text *string, hint string) Result {
	if text == nil {
		return Result{}
	}
	return Extract(*text, hint)
}

// Run folds detectors over the prepared cell. The first non-empty value
// proposed for a kind is kept.
func Run(detectors []Detector, text, hint string) Result {
	res := Result{}
	in, ok := prepare(text, hint)
	if !ok {
		return res
	}
	for _, detect := range detectors {
		for _, m := range detect(in, res) {
			if m.Value == "" || res.has(m.Kind) {
				continue
			}
			res[m.Kind] = m.Value
		}
	}
	return res
}

func prepare(text, hint string) (Input, bool) {
	clean := strings.TrimSpace(norm.NFKC.String(text))
	if clean == "" {
		return Input{}, false
	}
	return Input{
		Raw:  text,
		Text: clean,
		Hint: strings.ToUpper(hint),
	}, true
}
