package mapping

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/perizinan/internal/extract"
)

// ExtractionRequest asks for derived columns to be extracted from Column.
type ExtractionRequest struct {
	Column  string           `json:"column"`
	Options []extract.Option `json:"options"`
}

// ExtractionStat reports how many rows yielded a value for one option.
type ExtractionStat struct {
	Column  string         `json:"column"`
	Option  extract.Option `json:"option"`
	Derived string         `json:"derived"`
	Hits    int            `json:"hits"`
	Total   int            `json:"total"`
}

// DerivedColumn names the column an option writes to.
func DerivedColumn(column string, o extract.Option) string {
	return column + "_" + string(o)
}

// ApplyExtractions returns a copy of t with one derived column per
// requested option. Cells are extracted in parallel by at most workers
// goroutines; row order is preserved. A request naming a missing column
// fails with *MappingError.
func ApplyExtractions(ctx context.Context, t Table, reqs []ExtractionRequest, workers int) (Table, []ExtractionStat, error) {
	for _, req := range reqs {
		if t.ColumnIndex(req.Column) < 0 {
			return Table{}, nil, &MappingError{Column: req.Column}
		}
	}
	if workers <= 0 {
		workers = 1
	}

	out := Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([][]string, len(t.Rows)),
	}
	for i, r := range t.Rows {
		row := make([]string, len(t.Columns), len(t.Columns)+4)
		copy(row, r)
		out.Rows[i] = row
	}

	var stats []ExtractionStat
	for _, req := range reqs {
		if len(req.Options) == 0 {
			continue
		}
		results, err := extractColumn(ctx, t, t.ColumnIndex(req.Column), req.Column, workers)
		if err != nil {
			return Table{}, nil, err
		}

		for _, opt := range req.Options {
			derived := DerivedColumn(req.Column, opt)
			out.Columns = append(out.Columns, derived)

			stat := ExtractionStat{Column: req.Column, Option: opt, Derived: derived, Total: len(results)}
			for i, res := range results {
				v, ok := res.Value(opt)
				if ok {
					stat.Hits++
				}
				out.Rows[i] = append(out.Rows[i], v)
			}
			stats = append(stats, stat)
		}
	}
	return out, stats, nil
}

func extractColumn(ctx context.Context, t Table, col int, hint string, workers int) ([]extract.Result, error) {
	results := make([]extract.Result, len(t.Rows))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range t.Rows {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = extract.Extract(t.Cell(i, col), hint)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("extract column %q: %w", hint, err)
	}
	return results, nil
}
