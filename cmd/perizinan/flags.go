package main

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/perizinan/internal/extract"
	"github.com/JonMunkholm/perizinan/internal/mapping"
)

// parseFieldMap turns Field=Column pairs into a field map. An empty column
// leaves the field unmapped.
func parseFieldMap(pairs []string) (mapping.FieldMap, error) {
	fm := mapping.FieldMap{}
	for _, p := range pairs {
		name, col, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --map %q: want Field=Column", p)
		}
		f, err := mapping.ParseField(name)
		if err != nil {
			return nil, err
		}
		fm[f] = strings.TrimSpace(col)
	}
	return fm, nil
}

// parseExtractions turns Column=opt,opt pairs into extraction requests.
// Repeating a column appends to its options.
func parseExtractions(pairs []string) ([]mapping.ExtractionRequest, error) {
	var reqs []mapping.ExtractionRequest
	index := map[string]int{}
	for _, p := range pairs {
		col, list, ok := strings.Cut(p, "=")
		col = strings.TrimSpace(col)
		if !ok || col == "" {
			return nil, fmt.Errorf("invalid --extract %q: want Column=option,option", p)
		}

		var opts []extract.Option
		for _, s := range strings.Split(list, ",") {
			if strings.TrimSpace(s) == "" {
				continue
			}
			o, err := extract.ParseOption(s)
			if err != nil {
				return nil, err
			}
			opts = append(opts, o)
		}

		if i, seen := index[col]; seen {
			reqs[i].Options = append(reqs[i].Options, opts...)
			continue
		}
		index[col] = len(reqs)
		reqs = append(reqs, mapping.ExtractionRequest{Column: col, Options: opts})
	}
	return reqs, nil
}

// parseOverrides turns field=HEADER pairs into import header overrides.
func parseOverrides(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		field, header, ok := strings.Cut(p, "=")
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			return nil, fmt.Errorf("invalid --override %q: want field=HEADER", p)
		}
		out[strings.ToLower(field)] = strings.TrimSpace(header)
	}
	return out, nil
}
